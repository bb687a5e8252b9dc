// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/clock/clock.go
// Summary: Clock content, ticks once a second and keeps its title current.

package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/tilemux/tilemux/tile"
)

type clockContent struct {
	id      uuid.UUID
	profile uuid.UUID

	mu            sync.RWMutex
	width, height int
	now           time.Time
	buf           [][]tile.Cell

	stop     chan struct{}
	stopOnce sync.Once
	notify   chan<- tile.ContentEvent
}

// New creates clock content tagged with the given profile identity.
func New(profile uuid.UUID) tile.Content {
	return &clockContent{
		id:      uuid.New(),
		profile: profile,
		now:     time.Now(),
		stop:    make(chan struct{}),
	}
}

func (a *clockContent) ID() uuid.UUID { return a.id }

func (a *clockContent) ProfileID() uuid.UUID { return a.profile }

func (a *clockContent) Title() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return fmt.Sprintf("clock %s", a.now.Format("15:04"))
}

func (a *clockContent) SetNotifier(ch chan<- tile.ContentEvent) {
	a.notify = ch
}

// Run ticks once a second until stopped. Minute rollovers also update the
// title.
func (a *clockContent) Run() error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.mu.Lock()
			prev := a.now.Format("15:04")
			a.now = time.Now()
			changed := a.now.Format("15:04") != prev
			a.mu.Unlock()

			if changed {
				a.post(tile.ContentTitleChanged)
			}
			a.post(tile.ContentRefresh)
		case <-a.stop:
			return nil
		}
	}
}

func (a *clockContent) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
}

func (a *clockContent) Resize(cols, rows int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.width, a.height = cols, rows
}

func (a *clockContent) HandleKey(ev *tcell.EventKey) {}

func (a *clockContent) ScrollOffset() int { return 0 }

func (a *clockContent) SetScrollOffset(int) {}

func (a *clockContent) Render() [][]tile.Cell {
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

	style := tcell.StyleDefault.Foreground(tcell.PaletteColor(6))
	str := a.now.Format("15:04:05")
	y := a.height / 2
	x := (a.width - len(str)) / 2

	if y < a.height && x >= 0 {
		for i, ch := range str {
			if x+i < a.width {
				a.buf[y][x+i] = tile.Cell{Ch: ch, Style: style}
			}
		}
	}
	return a.buf
}

func (a *clockContent) post(kind tile.ContentEventKind) {
	if a.notify == nil {
		return
	}
	select {
	case a.notify <- tile.ContentEvent{Source: a.id, Kind: kind}:
	default:
	}
}
