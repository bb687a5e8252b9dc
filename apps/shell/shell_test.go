// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/shell/shell_test.go
// Summary: Escape filtering, line assembly, scrollback windowing.

package shell

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/tilemux/tilemux/tile"
)

func testShell(scrollback int) *shellContent {
	return New("", nil, "sh", scrollback, uuid.New()).(*shellContent)
}

// feedString pushes child output through the filter the way the pty reader
// does, one rune at a time under the lock.
func feedString(a *shellContent, s string) bool {
	changed := false
	a.mu.Lock()
	for _, r := range s {
		if a.feed(r) {
			changed = true
		}
	}
	a.mu.Unlock()
	return changed
}

func renderedRow(buf [][]tile.Cell, row int) string {
	out := make([]rune, 0, len(buf[row]))
	for _, c := range buf[row] {
		out = append(out, c.Ch)
	}
	return strings.TrimRight(string(out), " ")
}

func TestFeedAssemblesLines(t *testing.T) {
	a := testShell(100)

	feedString(a, "one\r\ntwo\r\n")
	if len(a.lines) != 2 || a.lines[0] != "one" || a.lines[1] != "two" {
		t.Fatalf("lines = %q", a.lines)
	}

	feedString(a, "pending")
	if got := a.lineAt(2); got != "pending" {
		t.Fatalf("pending line = %q", got)
	}
}

func TestFeedStripsEscapeSequences(t *testing.T) {
	a := testShell(100)

	feedString(a, "\x1b[31mred\x1b[0m\r\n")
	if a.lines[0] != "red" {
		t.Fatalf("line = %q", a.lines[0])
	}

	feedString(a, "\x1b[2J\x1b[1;32m\x1b(Bok\x1bZ!\r\n")
	if a.lines[1] != "ok!" {
		t.Fatalf("line = %q", a.lines[1])
	}
}

func TestOscSequencesSetTitle(t *testing.T) {
	a := testShell(100)

	if !feedString(a, "\x1b]0;build@host\a") {
		t.Fatalf("BEL-terminated title should report a change")
	}
	if a.Title() != "build@host" {
		t.Fatalf("title = %q", a.Title())
	}

	if !feedString(a, "\x1b]2;vim\x1b\\") {
		t.Fatalf("ST-terminated title should report a change")
	}
	if a.Title() != "vim" {
		t.Fatalf("title = %q", a.Title())
	}

	if feedString(a, "\x1b]2;vim\a") {
		t.Fatalf("repeating the same title is not a change")
	}
	if feedString(a, "\x1b]52;clipboard-junk\a") {
		t.Fatalf("non-title OSC must be ignored")
	}
	if a.Title() != "vim" {
		t.Fatalf("title = %q after junk OSC", a.Title())
	}

	// None of it may leak into the scrollback.
	if len(a.lines) != 0 || len(a.cur) != 0 {
		t.Fatalf("OSC payload leaked into lines: %q %q", a.lines, string(a.cur))
	}
}

func TestCarriageReturnOverwritesInPlace(t *testing.T) {
	a := testShell(100)

	feedString(a, "12345\rab\n")
	if a.lines[0] != "ab345" {
		t.Fatalf("line = %q, want %q", a.lines[0], "ab345")
	}

	feedString(a, "50%\r60%\r100%\n")
	if a.lines[1] != "100%" {
		t.Fatalf("line = %q, want %q", a.lines[1], "100%")
	}
}

func TestBackspaceStepsBack(t *testing.T) {
	a := testShell(100)

	feedString(a, "abc\b\bX\n")
	if a.lines[0] != "aXc" {
		t.Fatalf("line = %q, want %q", a.lines[0], "aXc")
	}
}

func TestTabAdvancesToNextStop(t *testing.T) {
	a := testShell(100)

	feedString(a, "ab\tc\n")
	if a.lines[0] != "ab      c" {
		t.Fatalf("line = %q", a.lines[0])
	}
}

func TestScrollOffsetClampsToHistory(t *testing.T) {
	a := testShell(100)
	feedString(a, "one\ntwo\nthree\n")

	a.SetScrollOffset(99)
	if a.ScrollOffset() != 3 {
		t.Fatalf("offset = %d, want clamp at 3", a.ScrollOffset())
	}
	a.SetScrollOffset(-5)
	if a.ScrollOffset() != 0 {
		t.Fatalf("offset = %d, want 0", a.ScrollOffset())
	}
}

func TestScrollbackDropsOldestLines(t *testing.T) {
	a := testShell(3)
	feedString(a, "1\n2\n3\n4\n5\n")

	if len(a.lines) != 3 {
		t.Fatalf("retained %d lines, want 3", len(a.lines))
	}
	if a.lines[0] != "3" || a.lines[2] != "5" {
		t.Fatalf("lines = %q", a.lines)
	}
}

func TestRenderWindowsHistory(t *testing.T) {
	a := testShell(100)
	a.Resize(10, 3)
	feedString(a, "one\r\ntwo\r\nthree\r\nfour\r\n")

	// Live view shows the last rows, ending with the empty pending line.
	buf := a.Render()
	if renderedRow(buf, 0) != "three" || renderedRow(buf, 1) != "four" || renderedRow(buf, 2) != "" {
		t.Fatalf("live rows = %q %q %q", renderedRow(buf, 0), renderedRow(buf, 1), renderedRow(buf, 2))
	}

	a.SetScrollOffset(2)
	buf = a.Render()
	if renderedRow(buf, 0) != "one" || renderedRow(buf, 2) != "three" {
		t.Fatalf("scrolled rows = %q %q %q", renderedRow(buf, 0), renderedRow(buf, 1), renderedRow(buf, 2))
	}
}

func TestRenderShowsCursorOnlyLive(t *testing.T) {
	a := testShell(100)
	a.Resize(10, 3)
	a.SetFocused(true)
	feedString(a, "one\r\ntwo\r\n")

	buf := a.Render()
	// The pending line is empty, so the cursor block sits in column 0.
	if buf[2][0].Style != tcell.StyleDefault.Reverse(true) {
		t.Fatalf("expected a cursor cell on the live tail")
	}

	a.SetScrollOffset(1)
	buf = a.Render()
	for row := range buf {
		for col := range buf[row] {
			if buf[row][col].Style == tcell.StyleDefault.Reverse(true) {
				t.Fatalf("cursor must hide while scrolled back")
			}
		}
	}
}

func TestAnyKeySnapsToLiveTail(t *testing.T) {
	a := testShell(100)
	feedString(a, "one\ntwo\n")
	a.SetScrollOffset(2)

	a.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'x', 0))

	if a.ScrollOffset() != 0 {
		t.Fatalf("offset = %d, want 0 after a keystroke", a.ScrollOffset())
	}
}

func TestNewFillsDefaults(t *testing.T) {
	pid := uuid.New()
	a := New("", nil, "", 0, pid).(*shellContent)

	if a.maxLines != 2000 {
		t.Fatalf("scrollback = %d, want 2000", a.maxLines)
	}
	if a.Title() != "shell" {
		t.Fatalf("title = %q, want %q", a.Title(), "shell")
	}
	if a.ProfileID() != pid {
		t.Fatalf("profile identity lost")
	}
}

func TestStopUnblocksRunWithoutChild(t *testing.T) {
	a := testShell(100)

	// Stop before Run ever spawns: Run must notice the closed stop channel
	// when the child exits or fails to spawn. Exercised here only for the
	// signal plumbing on a shell that was never started.
	a.Stop()
	select {
	case <-a.stop:
	case <-time.After(time.Second):
		t.Fatalf("stop channel should be closed")
	}
	// A second Stop is a no-op.
	a.Stop()
}
