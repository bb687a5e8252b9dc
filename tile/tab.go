// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/tab.go
// Summary: Tab owns one layout tree and mediates content events into tree state.

package tile

import (
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

// Tab owns exactly one layout tree plus the bookkeeping around it: a cached
// title, the dispatcher it broadcasts through, and the lifecycle manager
// that runs its content. Content events reach the tab already marshaled
// onto the desktop loop; nothing here is called from content goroutines.
type Tab struct {
	id         uuid.UUID
	tree       *Tree
	rect       Rect
	title      string
	dispatcher *EventDispatcher
	lifecycle  ContentLifecycle
	events     chan<- ContentEvent
	focused    bool

	lastState TabState
	hasState  bool
}

// NewTab builds a tab around an initial content instance. The content is
// wired to the event channel before its run loop starts so no notification
// is lost.
func NewTab(c Content, events chan<- ContentEvent, dispatcher *EventDispatcher, lifecycle ContentLifecycle, lim Limits) *Tab {
	t := &Tab{
		id:         uuid.New(),
		dispatcher: dispatcher,
		lifecycle:  lifecycle,
		events:     events,
		focused:    true,
	}
	t.tree = NewTree(c, lim)
	t.adopt(c)
	t.title = c.Title()
	t.broadcastState()
	return t
}

// adopt wires a content into the tab: event channel first, then the run loop.
func (t *Tab) adopt(c Content) {
	c.SetNotifier(t.events)
	t.lifecycle.Start(c)
}

// ID identifies the tab.
func (t *Tab) ID() uuid.UUID { return t.id }

// Title is the cached title of the active content. It refreshes on
// activation changes and on title events from the active content only.
func (t *Tab) Title() string { return t.title }

// Empty reports whether the last pane has closed.
func (t *Tab) Empty() bool { return t.tree.Empty() }

// Leaves exposes the tree's leaves for the compositor.
func (t *Tab) Leaves() []*Pane { return t.tree.Leaves() }

// ActiveLeaf returns the active pane, nil when the tab is empty.
func (t *Tab) ActiveLeaf() *Pane { return t.tree.ActiveLeaf() }

// ActiveContent returns the active pane's content, nil when the tab is empty.
func (t *Tab) ActiveContent() Content {
	leaf := t.tree.ActiveLeaf()
	if leaf == nil {
		return nil
	}
	return leaf.Content()
}

// FocusedProfile reports the profile identity of the active content, the
// zero UUID when the content carries none.
func (t *Tab) FocusedProfile() uuid.UUID {
	if tagged, ok := t.ActiveContent().(ProfileTagged); ok {
		return tagged.ProfileID()
	}
	return uuid.Nil
}

// ownsContent reports whether a pane of this tab hosts the content.
func (t *Tab) ownsContent(id uuid.UUID) bool {
	return t.tree.FindByContent(id) != nil
}

// Resize lays the tab's tree out into r and remembers it for later splits.
func (t *Tab) Resize(r Rect) {
	t.rect = r
	t.tree.Resize(r)
}

// CanSplit reports whether the active pane has room to split.
func (t *Tab) CanSplit(d Direction) bool { return t.tree.CanSplit(d) }

// Split splits the active pane, placing nc on the direction side. The new
// pane becomes active. Returns false, leaving everything untouched, when the
// active pane is too small.
func (t *Tab) Split(d Direction, nc Content) bool {
	prev := t.ActiveContent()
	first, second := t.tree.SplitActive(d, nc)
	if first == nil {
		log.Printf("tab %s: split %v rejected, pane too small", t.id, d)
		return false
	}
	t.adopt(nc)
	if fa, ok := prev.(FocusAware); ok {
		fa.SetFocused(false)
	}
	if fa, ok := nc.(FocusAware); ok {
		fa.SetFocused(t.focused)
	}
	log.Printf("tab %s: split %v -> %s | %s", t.id, d, first.ID(), second.ID())
	t.refreshTitle()
	t.dispatcher.Broadcast(Event{Type: EventActivePaneChanged, Payload: t.tree.ActiveLeaf().ID()})
	t.dispatcher.Broadcast(Event{Type: EventLayoutChanged, Payload: t.id})
	t.broadcastState()
	return true
}

// ClosePane closes the active pane. Closing the last pane empties the tab
// and broadcasts EventTabClosed; the owner removes the tab.
func (t *Tab) ClosePane() CloseResult {
	return t.closeLeaf(t.tree.ActiveLeaf())
}

func (t *Tab) closeLeaf(leaf *Pane) CloseResult {
	if leaf == nil {
		return CloseNoop
	}
	paneID := leaf.ID()
	wasActive := leaf.Active()
	closed, res := t.tree.CloseLeaf(leaf)
	if res == CloseNoop {
		return res
	}
	if closed != nil {
		t.lifecycle.Stop(closed)
	}
	t.dispatcher.Broadcast(Event{Type: EventPaneClosed, Payload: paneID})
	if res == TreeEmptied {
		log.Printf("tab %s: last pane closed", t.id)
		t.dispatcher.Broadcast(Event{Type: EventTabClosed, Payload: t.id})
		return res
	}
	if wasActive {
		if fa, ok := t.ActiveContent().(FocusAware); ok {
			fa.SetFocused(t.focused)
		}
		t.refreshTitle()
		t.dispatcher.Broadcast(Event{Type: EventActivePaneChanged, Payload: t.tree.ActiveLeaf().ID()})
	}
	t.dispatcher.Broadcast(Event{Type: EventLayoutChanged, Payload: t.id})
	t.broadcastState()
	return res
}

// FocusPane routes a focus change through the tree's activation routine.
// Redundant focus (already-active pane) changes nothing and broadcasts
// nothing. Returns whether the active pane changed.
func (t *Tab) FocusPane(p *Pane) bool {
	prev := t.tree.ActiveLeaf()
	if !t.tree.Activate(p) {
		return false
	}
	if prev != nil && prev.Content() != nil {
		if fa, ok := prev.Content().(FocusAware); ok {
			fa.SetFocused(false)
		}
	}
	if fa, ok := p.Content().(FocusAware); ok {
		fa.SetFocused(t.focused)
	}
	t.refreshTitle()
	t.dispatcher.Broadcast(Event{Type: EventActivePaneChanged, Payload: p.ID()})
	t.broadcastState()
	return true
}

// FocusContent focuses the pane hosting the content with the given identity.
func (t *Tab) FocusContent(id uuid.UUID) bool {
	return t.FocusPane(t.tree.FindByContent(id))
}

// FocusAt focuses the pane under the screen point, used by mouse clicks.
func (t *Tab) FocusAt(x, y int) bool {
	return t.FocusPane(t.tree.LeafAt(x, y))
}

// NavigateFocus moves the focus to the adjacent pane in the direction.
// Returns false at the edge; focus never wraps.
func (t *Tab) NavigateFocus(d Direction) bool {
	n := t.tree.NeighborOfActive(d)
	if n == nil {
		return false
	}
	return t.FocusPane(n)
}

// ResizePane nudges the separator nearest the active pane by one step.
func (t *Tab) ResizePane(d Direction) bool {
	if !t.tree.ResizeActive(d) {
		return false
	}
	t.dispatcher.Broadcast(Event{Type: EventLayoutChanged, Payload: t.id})
	return true
}

// SwapPane exchanges the active pane's content with its neighbor; the focus
// follows the content.
func (t *Tab) SwapPane(d Direction) bool {
	if !t.tree.SwapActive(d) {
		return false
	}
	t.dispatcher.Broadcast(Event{Type: EventActivePaneChanged, Payload: t.tree.ActiveLeaf().ID()})
	t.dispatcher.Broadcast(Event{Type: EventLayoutChanged, Payload: t.id})
	t.broadcastState()
	return true
}

// Scroll adjusts the active content's scrollback offset. Positive deltas go
// back into history. Content without scrollback ignores it.
func (t *Tab) Scroll(delta int) {
	c := t.ActiveContent()
	if c == nil {
		return
	}
	c.SetScrollOffset(c.ScrollOffset() + delta)
}

// ScrollPage scrolls the active content by one paneful, positive for back
// through history.
func (t *Tab) ScrollPage(sign int) {
	leaf := t.tree.ActiveLeaf()
	if leaf == nil {
		return
	}
	page := leaf.Rect().Inner().H
	if page < 1 {
		page = 1
	}
	t.Scroll(sign * page)
}

// SetFocused tells the tab it gained or lost UI focus; the active content is
// informed when it cares.
func (t *Tab) SetFocused(on bool) {
	t.focused = on
	if fa, ok := t.ActiveContent().(FocusAware); ok {
		fa.SetFocused(on)
	}
}

// HandleKey forwards a key event to the active content.
func (t *Tab) HandleKey(ev *tcell.EventKey) {
	if c := t.ActiveContent(); c != nil {
		c.HandleKey(ev)
	}
}

// HandlePaste delivers a bracketed paste to the active content when it
// accepts pastes. Returns whether it was consumed.
func (t *Tab) HandlePaste(data []byte) bool {
	if ph, ok := t.ActiveContent().(PasteHandler); ok {
		ph.Paste(data)
		return true
	}
	return false
}

// HandleWheel delivers wheel input to the pane under the pointer without
// changing focus. Content that handles wheel events gets them raw; anything
// else scrolls its scrollback.
func (t *Tab) HandleWheel(x, y, dx, dy int) {
	leaf := t.tree.LeafAt(x, y)
	if leaf == nil || leaf.Content() == nil {
		return
	}
	c := leaf.Content()
	if mw, ok := c.(MouseWheelHandler); ok {
		mw.HandleMouseWheel(dx, dy)
		return
	}
	// wheel up means back into history
	c.SetScrollOffset(c.ScrollOffset() - dy)
}

// HandleContentEvent applies one marshaled content notification. Refresh
// events carry no state and are handled by the caller's repaint.
func (t *Tab) HandleContentEvent(ev ContentEvent) {
	switch ev.Kind {
	case ContentTitleChanged:
		active := t.ActiveContent()
		if active == nil || active.ID() != ev.Source {
			return
		}
		if t.refreshTitle() {
			t.broadcastState()
		}
	case ContentFocusRequested:
		t.FocusContent(ev.Source)
	case ContentExited:
		t.closeLeaf(t.tree.FindByContent(ev.Source))
	}
}

// Close stops every remaining content. The tab is unusable afterwards.
func (t *Tab) Close() {
	for _, leaf := range t.tree.Leaves() {
		if c := leaf.Content(); c != nil {
			t.lifecycle.Stop(c)
		}
	}
	t.tree.ClearActive()
}

// refreshTitle re-reads the active content's title into the cache and
// reports whether it changed.
func (t *Tab) refreshTitle() bool {
	c := t.ActiveContent()
	if c == nil {
		return false
	}
	if title := c.Title(); title != t.title {
		t.title = title
		return true
	}
	return false
}

func (t *Tab) broadcastState() {
	s := TabState{TabID: t.id, ActiveTitle: t.title, PaneCount: len(t.tree.Leaves())}
	if t.hasState && s.equal(t.lastState) {
		return
	}
	t.lastState = s
	t.hasState = true
	t.dispatcher.Broadcast(Event{Type: EventStateUpdate, Payload: s})
}
