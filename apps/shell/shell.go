// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/shell/shell.go
// Summary: Hosts a shell on a pty with a line-oriented scrollback. Escape
// sequences are filtered out rather than emulated; OSC titles are honored.

package shell

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/tilemux/tilemux/tile"
)

type escState int

const (
	escNone escState = iota
	escIntro
	escCSI
	escOSC
	escOSCEsc
	escCharset
)

type shellContent struct {
	id        uuid.UUID
	profile   uuid.UUID
	command   string
	args      []string
	baseTitle string
	maxLines  int

	mu            sync.RWMutex
	width, height int
	pty           *os.File
	cmd           *exec.Cmd
	lines         []string
	cur           []rune
	curPos        int
	scroll        int
	oscTitle      string
	focused       bool
	buf           [][]tile.Cell

	esc    escState
	escBuf []rune

	stop     chan struct{}
	stopOnce sync.Once
	notify   chan<- tile.ContentEvent
}

// New creates shell content. An empty command falls back to $SHELL, then
// /bin/sh. scrollback bounds the retained history in lines.
func New(command string, args []string, title string, scrollback int, profile uuid.UUID) tile.Content {
	if title == "" {
		title = "shell"
	}
	if scrollback <= 0 {
		scrollback = 2000
	}
	return &shellContent{
		id:        uuid.New(),
		profile:   profile,
		command:   command,
		args:      args,
		baseTitle: title,
		maxLines:  scrollback,
		stop:      make(chan struct{}),
	}
}

func (a *shellContent) ID() uuid.UUID { return a.id }

func (a *shellContent) ProfileID() uuid.UUID { return a.profile }

func (a *shellContent) Title() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.oscTitle != "" {
		return a.oscTitle
	}
	return a.baseTitle
}

func (a *shellContent) SetNotifier(ch chan<- tile.ContentEvent) {
	a.notify = ch
}

// Run starts the child on a pty and reads until it exits. The exit event is
// posted on every return path so the pane always closes with the child.
func (a *shellContent) Run() error {
	defer a.post(tile.ContentExited)

	a.mu.RLock()
	cols, rows := a.width, a.height
	a.mu.RUnlock()
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	command := a.command
	if command == "" {
		command = os.Getenv("SHELL")
	}
	if command == "" {
		command = "/bin/sh"
	}

	cmd := exec.Command(command, a.args...)
	cmd.Env = append(os.Environ(), "TERM=dumb")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		log.Printf("shell: start %s: %v", command, err)
		return fmt.Errorf("start %s: %w", command, err)
	}

	a.mu.Lock()
	a.pty = ptmx
	a.cmd = cmd
	a.mu.Unlock()

	go func() {
		defer ptmx.Close()
		reader := bufio.NewReader(ptmx)
		for {
			select {
			case <-a.stop:
				return
			default:
			}

			r, _, err := reader.ReadRune()
			if err != nil {
				if err != io.EOF {
					log.Printf("shell: read pty: %v", err)
				}
				return
			}

			a.mu.Lock()
			titleChanged := a.feed(r)
			a.mu.Unlock()

			if titleChanged {
				a.post(tile.ContentTitleChanged)
			}
			a.post(tile.ContentRefresh)
		}
	}()

	return cmd.Wait()
}

func (a *shellContent) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
		a.mu.RLock()
		ptmx, cmd := a.pty, a.cmd
		a.mu.RUnlock()
		if ptmx != nil {
			ptmx.Close()
		}
		if cmd != nil && cmd.Process != nil {
			cmd.Process.Signal(syscall.SIGTERM)
		}
	})
}

func (a *shellContent) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	a.mu.Lock()
	a.width, a.height = cols, rows
	ptmx := a.pty
	a.mu.Unlock()

	if ptmx != nil {
		pty.Setsize(ptmx, &pty.Winsize{
			Rows: uint16(rows),
			Cols: uint16(cols),
		})
	}
}

// HandleKey translates the key into bytes for the child. Any keystroke snaps
// the view back to the live tail.
func (a *shellContent) HandleKey(ev *tcell.EventKey) {
	a.mu.Lock()
	a.scroll = 0
	ptmx := a.pty
	a.mu.Unlock()
	if ptmx == nil {
		return
	}

	var keyBytes []byte
	switch ev.Key() {
	case tcell.KeyUp:
		keyBytes = []byte("\x1b[A")
	case tcell.KeyDown:
		keyBytes = []byte("\x1b[B")
	case tcell.KeyRight:
		keyBytes = []byte("\x1b[C")
	case tcell.KeyLeft:
		keyBytes = []byte("\x1b[D")
	case tcell.KeyHome:
		keyBytes = []byte("\x1b[H")
	case tcell.KeyEnd:
		keyBytes = []byte("\x1b[F")
	case tcell.KeyInsert:
		keyBytes = []byte("\x1b[2~")
	case tcell.KeyDelete:
		keyBytes = []byte("\x1b[3~")
	case tcell.KeyPgUp:
		keyBytes = []byte("\x1b[5~")
	case tcell.KeyPgDn:
		keyBytes = []byte("\x1b[6~")
	case tcell.KeyF1:
		keyBytes = []byte("\x1bOP")
	case tcell.KeyF2:
		keyBytes = []byte("\x1bOQ")
	case tcell.KeyF3:
		keyBytes = []byte("\x1bOR")
	case tcell.KeyF4:
		keyBytes = []byte("\x1bOS")
	case tcell.KeyEnter:
		keyBytes = []byte("\r")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		keyBytes = []byte{'\b'}
	case tcell.KeyTab:
		keyBytes = []byte("\t")
	case tcell.KeyEsc:
		keyBytes = []byte("\x1b")
	default:
		if r := ev.Rune(); r != 0 {
			keyBytes = []byte(string(r))
		}
	}

	if keyBytes != nil {
		ptmx.Write(keyBytes)
	}
}

// Paste writes pasted bytes straight to the child.
func (a *shellContent) Paste(data []byte) {
	a.mu.RLock()
	ptmx := a.pty
	a.mu.RUnlock()
	if ptmx != nil {
		ptmx.Write(data)
	}
}

func (a *shellContent) SetFocused(on bool) {
	a.mu.Lock()
	a.focused = on
	a.mu.Unlock()
	a.post(tile.ContentRefresh)
}

// ScrollOffset counts lines back from the live tail, 0 meaning live.
func (a *shellContent) ScrollOffset() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.scroll
}

func (a *shellContent) SetScrollOffset(off int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if off < 0 {
		off = 0
	}
	if off > len(a.lines) {
		off = len(a.lines)
	}
	a.scroll = off
}

func (a *shellContent) Render() [][]tile.Cell {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.width <= 0 || a.height <= 0 {
		return [][]tile.Cell{}
	}
	if len(a.buf) != a.height || (len(a.buf) > 0 && len(a.buf[0]) != a.width) {
		a.buf = tile.NewBuffer(a.width, a.height, tcell.StyleDefault)
	}
	for i := range a.buf {
		for j := range a.buf[i] {
			a.buf[i][j] = tile.Cell{Ch: ' ', Style: tcell.StyleDefault}
		}
	}

	total := len(a.lines) + 1
	end := total - a.scroll
	if end < 0 {
		end = 0
	}
	start := end - a.height
	if start < 0 {
		start = 0
	}

	style := tcell.StyleDefault
	for row, i := 0, start; i < end && row < a.height; i, row = i+1, row+1 {
		line := a.lineAt(i)
		col := 0
		for _, ch := range line {
			cw := runewidth.RuneWidth(ch)
			if col+cw > a.width {
				break
			}
			a.buf[row][col] = tile.Cell{Ch: ch, Style: style}
			col += cw
		}
		if a.focused && a.scroll == 0 && i == total-1 && col < a.width {
			a.buf[row][col] = tile.Cell{Ch: ' ', Style: style.Reverse(true)}
		}
	}
	return a.buf
}

func (a *shellContent) lineAt(i int) string {
	if i < len(a.lines) {
		return a.lines[i]
	}
	return string(a.cur)
}

// feed consumes one rune of child output, filtering escape sequences and
// assembling lines. Reports whether the OSC title changed.
func (a *shellContent) feed(r rune) bool {
	switch a.esc {
	case escIntro:
		switch r {
		case '[':
			a.esc = escCSI
		case ']':
			a.esc = escOSC
			a.escBuf = a.escBuf[:0]
		case '(', ')':
			a.esc = escCharset
		default:
			a.esc = escNone
		}
		return false
	case escCSI:
		if r >= 0x40 && r <= 0x7e {
			a.esc = escNone
		}
		return false
	case escOSC:
		switch r {
		case '\a':
			a.esc = escNone
			return a.finishOSC()
		case 0x1b:
			a.esc = escOSCEsc
		default:
			a.escBuf = append(a.escBuf, r)
		}
		return false
	case escOSCEsc:
		a.esc = escNone
		if r == '\\' {
			return a.finishOSC()
		}
		return false
	case escCharset:
		a.esc = escNone
		return false
	}

	switch {
	case r == 0x1b:
		a.esc = escIntro
	case r == '\n':
		a.commitLine()
	case r == '\r':
		// Carriage return moves the write position; the pending line is
		// overwritten in place, which is what progress bars rely on.
		a.curPos = 0
	case r == '\b':
		if a.curPos > 0 {
			a.curPos--
		}
	case r == '\t':
		a.curPos += 8 - a.curPos%8
		for len(a.cur) < a.curPos {
			a.cur = append(a.cur, ' ')
		}
	case r >= ' ':
		if a.curPos < len(a.cur) {
			a.cur[a.curPos] = r
		} else {
			a.cur = append(a.cur, r)
		}
		a.curPos++
	}
	return false
}

func (a *shellContent) commitLine() {
	a.lines = append(a.lines, string(a.cur))
	a.cur = a.cur[:0]
	a.curPos = 0
	if len(a.lines) > a.maxLines {
		a.lines = a.lines[len(a.lines)-a.maxLines:]
	}
	if a.scroll > len(a.lines) {
		a.scroll = len(a.lines)
	}
}

func (a *shellContent) finishOSC() bool {
	s := string(a.escBuf)
	a.escBuf = a.escBuf[:0]
	if len(s) > 2 && (s[0] == '0' || s[0] == '2') && s[1] == ';' {
		title := s[2:]
		if title != a.oscTitle {
			a.oscTitle = title
			return true
		}
	}
	return false
}

func (a *shellContent) post(kind tile.ContentEventKind) {
	if a.notify == nil {
		return
	}
	select {
	case a.notify <- tile.ContentEvent{Source: a.id, Kind: kind}:
	default:
	}
}
