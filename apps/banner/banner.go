// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/banner/banner.go
// Summary: Static welcome banner listing the desktop key bindings.

package banner

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/tilemux/tilemux/tile"
)

var helpLines = []string{
	"tilemux",
	"",
	"Ctrl+A        command mode",
	"  |           split left/right",
	"  -           split top/bottom",
	"  x           close pane",
	"  w + arrow   swap pane",
	"  arrows      resize pane",
	"  c           new tab",
	"  n / p       next / previous tab",
	"  1-9         switch tab",
	"  q           quit",
	"Shift+arrows  move focus",
	"Shift+PgUp/Dn scroll",
}

type bannerContent struct {
	id      uuid.UUID
	profile uuid.UUID
	title   string

	mu            sync.RWMutex
	width, height int
	buf           [][]tile.Cell

	stop     chan struct{}
	stopOnce sync.Once
	notify   chan<- tile.ContentEvent
}

// New creates the banner content.
func New(title string, profile uuid.UUID) tile.Content {
	if title == "" {
		title = "welcome"
	}
	return &bannerContent{
		id:      uuid.New(),
		profile: profile,
		title:   title,
		stop:    make(chan struct{}),
	}
}

func (a *bannerContent) ID() uuid.UUID { return a.id }

func (a *bannerContent) ProfileID() uuid.UUID { return a.profile }

func (a *bannerContent) Title() string { return a.title }

func (a *bannerContent) SetNotifier(ch chan<- tile.ContentEvent) {
	a.notify = ch
}

// Run blocks until stopped; the banner never changes.
func (a *bannerContent) Run() error {
	<-a.stop
	return nil
}

func (a *bannerContent) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
}

func (a *bannerContent) Resize(cols, rows int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.width, a.height = cols, rows
}

func (a *bannerContent) HandleKey(ev *tcell.EventKey) {}

func (a *bannerContent) ScrollOffset() int { return 0 }

func (a *bannerContent) SetScrollOffset(int) {}

func (a *bannerContent) Render() [][]tile.Cell {
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

	headStyle := tcell.StyleDefault.Bold(true)
	bodyStyle := tcell.StyleDefault

	top := (a.height - len(helpLines)) / 2
	if top < 0 {
		top = 0
	}
	for i, line := range helpLines {
		y := top + i
		if y >= a.height {
			break
		}
		style := bodyStyle
		if i == 0 {
			style = headStyle
		}
		x := (a.width - runewidth.StringWidth(line)) / 2
		if x < 0 {
			x = 0
		}
		col := x
		for _, ch := range line {
			cw := runewidth.RuneWidth(ch)
			if col+cw > a.width {
				break
			}
			a.buf[y][col] = tile.Cell{Ch: ch, Style: style}
			col += cw
		}
	}
	return a.buf
}
