// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/fakes_test.go
// Summary: Shared test doubles: fake content, stub screen driver, tracking lifecycle.

package tile

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

// fakeContent is a minimal Content implementation. Run returns immediately,
// so tests drive state directly instead of through a goroutine.
type fakeContent struct {
	id      uuid.UUID
	title   string
	fill    rune
	cols    int
	rows    int
	stopped bool
	scroll  int
	notify  chan<- ContentEvent
	lastKey *tcell.EventKey
}

func newFakeContent(title string) *fakeContent {
	return &fakeContent{id: uuid.New(), title: title, fill: 'x'}
}

func (f *fakeContent) ID() uuid.UUID { return f.id }
func (f *fakeContent) Title() string { return f.title }
func (f *fakeContent) Run() error    { return nil }
func (f *fakeContent) Stop()         { f.stopped = true }

func (f *fakeContent) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	f.cols, f.rows = cols, rows
}

func (f *fakeContent) Render() [][]Cell {
	buf := make([][]Cell, f.rows)
	for y := range buf {
		buf[y] = make([]Cell, f.cols)
		for x := range buf[y] {
			buf[y][x] = Cell{Ch: f.fill, Style: tcell.StyleDefault}
		}
	}
	return buf
}

func (f *fakeContent) HandleKey(ev *tcell.EventKey) { f.lastKey = ev }

func (f *fakeContent) SetNotifier(ch chan<- ContentEvent) { f.notify = ch }

func (f *fakeContent) ScrollOffset() int { return f.scroll }

func (f *fakeContent) SetScrollOffset(lines int) {
	if lines < 0 {
		lines = 0
	}
	f.scroll = lines
}

// post sends a notifier event the way real content does, from outside the
// engine loop.
func (f *fakeContent) post(kind ContentEventKind) {
	if f.notify == nil {
		return
	}
	f.notify <- ContentEvent{Source: f.id, Kind: kind}
}

// fakeFocusContent additionally records SetFocused calls.
type fakeFocusContent struct {
	fakeContent
	focusLog []bool
}

func newFakeFocusContent(title string) *fakeFocusContent {
	return &fakeFocusContent{fakeContent: fakeContent{id: uuid.New(), title: title, fill: 'x'}}
}

func (f *fakeFocusContent) SetFocused(on bool) { f.focusLog = append(f.focusLog, on) }

// fakePasteContent additionally captures bracketed paste payloads.
type fakePasteContent struct {
	fakeContent
	pastes [][]byte
}

func newFakePasteContent(title string) *fakePasteContent {
	return &fakePasteContent{fakeContent: fakeContent{id: uuid.New(), title: title, fill: 'x'}}
}

func (f *fakePasteContent) Paste(data []byte) {
	f.pastes = append(f.pastes, append([]byte(nil), data...))
}

// fakeWheelContent consumes wheel input itself instead of scrollback.
type fakeWheelContent struct {
	fakeContent
	wheels [][2]int
}

func newFakeWheelContent(title string) *fakeWheelContent {
	return &fakeWheelContent{fakeContent: fakeContent{id: uuid.New(), title: title, fill: 'x'}}
}

func (f *fakeWheelContent) HandleMouseWheel(dx, dy int) {
	f.wheels = append(f.wheels, [2]int{dx, dy})
}

// fakeFactory mints fakeContent instances and remembers them so tests can
// reach content spawned deep inside the desktop.
type fakeFactory struct {
	made []*fakeContent
	err  error
}

func (f *fakeFactory) new() (Content, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := newFakeContent(fmt.Sprintf("fake-%d", len(f.made)))
	f.made = append(f.made, c)
	return c, nil
}

// trackingLifecycle records starts and stops and forwards Stop to the
// content so its stopped flag flips.
type trackingLifecycle struct {
	started []Content
	stopped []Content
}

func (l *trackingLifecycle) Start(c Content) { l.started = append(l.started, c) }

func (l *trackingLifecycle) Stop(c Content) {
	l.stopped = append(l.stopped, c)
	c.Stop()
}

// stubScreenDriver is an in-memory ScreenDriver. PollEvent returns nil so a
// desktop run loop would exit immediately; tests inject events directly.
type stubScreenDriver struct {
	width        int
	height       int
	initCalled   bool
	finiCalled   bool
	cursorHidden bool
	mouseEnabled bool
	pasteEnabled bool
	clearCount   int
	showCount    int
	style        tcell.Style
	cells        map[[2]int]Cell
}

func newStubScreenDriver(w, h int) *stubScreenDriver {
	return &stubScreenDriver{width: w, height: h, cells: make(map[[2]int]Cell)}
}

func (s *stubScreenDriver) Init() error {
	s.initCalled = true
	return nil
}

func (s *stubScreenDriver) Fini()            { s.finiCalled = true }
func (s *stubScreenDriver) Size() (int, int) { return s.width, s.height }

func (s *stubScreenDriver) SetStyle(style tcell.Style) { s.style = style }

func (s *stubScreenDriver) Clear() {
	s.clearCount++
	s.cells = make(map[[2]int]Cell)
}

func (s *stubScreenDriver) HideCursor()  { s.cursorHidden = true }
func (s *stubScreenDriver) EnableMouse() { s.mouseEnabled = true }
func (s *stubScreenDriver) EnablePaste() { s.pasteEnabled = true }
func (s *stubScreenDriver) Show()        { s.showCount++ }

func (s *stubScreenDriver) PollEvent() tcell.Event { return nil }

func (s *stubScreenDriver) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	s.cells[[2]int{x, y}] = Cell{Ch: mainc, Style: style}
}

func (s *stubScreenDriver) runeAt(x, y int) rune {
	return s.cells[[2]int{x, y}].Ch
}

func (s *stubScreenDriver) styleAt(x, y int) tcell.Style {
	return s.cells[[2]int{x, y}].Style
}

// rowString renders a horizontal slice of the stub screen as text, with
// unset cells as spaces.
func (s *stubScreenDriver) rowString(y, from, to int) string {
	out := make([]rune, 0, to-from)
	for x := from; x < to; x++ {
		ch := s.runeAt(x, y)
		if ch == 0 {
			ch = ' '
		}
		out = append(out, ch)
	}
	return string(out)
}

// recordingListener collects broadcast events for inspection.
type recordingListener struct {
	events []Event
}

func (l *recordingListener) OnEvent(ev Event) { l.events = append(l.events, ev) }

func (l *recordingListener) count(t EventType) int {
	n := 0
	for _, ev := range l.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (l *recordingListener) last(t EventType) (Event, bool) {
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Type == t {
			return l.events[i], true
		}
	}
	return Event{}, false
}

// assertSingleActive verifies the tree has exactly one active leaf and that
// it matches ActiveLeaf.
func assertSingleActive(t testingT, tree *Tree) {
	t.Helper()
	active := 0
	for _, leaf := range tree.Leaves() {
		if leaf.Active() {
			active++
			if leaf != tree.ActiveLeaf() {
				t.Fatalf("active flag on %v but ActiveLeaf is %v", leaf.ID(), tree.ActiveLeaf())
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active leaf, got %d", active)
	}
}

// testingT is the slice of *testing.T the helpers need.
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}
