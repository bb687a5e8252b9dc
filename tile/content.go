// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/content.go
// Summary: Contract between the layout engine and whatever lives inside a pane.

package tile

import (
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

// Content is implemented by anything that can be hosted in a leaf pane.
//
// The engine owns all tree state on its loop goroutine; a content's Run loop
// executes on its own goroutine and must never call back into the engine.
// Everything content wants the engine to know travels through the notifier
// channel set via SetNotifier.
type Content interface {
	// ID is stable for the lifetime of the content instance.
	ID() uuid.UUID
	Title() string

	// Run blocks until the content is done or Stop is called. Static
	// content may return immediately.
	Run() error
	Stop()

	// Resize announces the usable cell area inside the pane border.
	Resize(cols, rows int)
	// Render returns the current cell grid, at most the last resized
	// dimensions. Rows may be short or missing; the compositor blanks
	// whatever is absent.
	Render() [][]Cell

	HandleKey(ev *tcell.EventKey)

	// SetNotifier hands the content the engine's event channel. It is
	// called once, before Run starts.
	SetNotifier(ch chan<- ContentEvent)

	// ScrollOffset is the number of lines the view is scrolled back from
	// the live tail; zero means pinned to the bottom. Content without
	// scrollback reports zero and ignores SetScrollOffset.
	ScrollOffset() int
	SetScrollOffset(lines int)
}

// ContentEventKind discriminates notifier messages.
type ContentEventKind int

const (
	// ContentRefresh asks for a repaint, nothing else.
	ContentRefresh ContentEventKind = iota
	// ContentTitleChanged reports a new Title value.
	ContentTitleChanged
	// ContentFocusRequested asks that the owning pane become active.
	ContentFocusRequested
	// ContentExited reports that the content is finished and its pane
	// should close.
	ContentExited
)

func (k ContentEventKind) String() string {
	switch k {
	case ContentRefresh:
		return "refresh"
	case ContentTitleChanged:
		return "title-changed"
	case ContentFocusRequested:
		return "focus-requested"
	case ContentExited:
		return "exited"
	}
	return "unknown"
}

// ContentEvent is the one message type content may send to the engine.
// Sends must be non-blocking; a dropped refresh is repainted on the next
// event anyway.
type ContentEvent struct {
	Source uuid.UUID
	Kind   ContentEventKind
}

// Optional capabilities, discovered by type assertion.

// FocusAware content is told when its pane gains or loses input focus,
// typically to show or hide a cursor.
type FocusAware interface {
	SetFocused(on bool)
}

// PasteHandler receives bracketed paste payloads instead of key events.
type PasteHandler interface {
	Paste(data []byte)
}

// MouseWheelHandler consumes wheel input itself; otherwise the engine
// translates the wheel into scroll-offset changes.
type MouseWheelHandler interface {
	HandleMouseWheel(dx, dy int)
}

// ProfileTagged content was built from a profile definition and exposes the
// profile's stable identity.
type ProfileTagged interface {
	ProfileID() uuid.UUID
}
