// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/dispatcher.go
// Summary: Event types and the listener dispatcher tabs broadcast through.

package tile

import (
	"sync"

	"github.com/google/uuid"
)

// EventType defines the type of an event.
type EventType int

const (
	// Control events
	EventControlOn EventType = iota
	EventControlOff
	// Pane events
	EventActivePaneChanged
	EventPaneClosed
	// Tab events
	EventTabClosed
	EventStateUpdate
	EventLayoutChanged
)

// Event is a message passed to listeners. It has a type and can carry an
// arbitrary payload; pane and tab events carry the relevant UUID, state
// updates carry a TabState.
type Event struct {
	Type    EventType
	Payload interface{}
}

// TabState is the payload of EventStateUpdate, a summary for status
// consumers such as a future status bar.
type TabState struct {
	TabID       uuid.UUID
	ActiveTitle string
	PaneCount   int
}

func (s TabState) equal(other TabState) bool {
	return s.TabID == other.TabID &&
		s.ActiveTitle == other.ActiveTitle &&
		s.PaneCount == other.PaneCount
}

// Listener is implemented by any component that wants to receive events.
type Listener interface {
	OnEvent(event Event)
}

// EventDispatcher manages a list of listeners and broadcasts events to them.
type EventDispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewEventDispatcher creates a new dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		listeners: make([]Listener, 0),
	}
}

// Subscribe adds a new listener to receive events.
func (d *EventDispatcher) Subscribe(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, listener)
}

// Unsubscribe removes a listener.
func (d *EventDispatcher) Unsubscribe(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.listeners {
		if l == listener {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			break
		}
	}
}

// Broadcast sends an event to all subscribed listeners.
func (d *EventDispatcher) Broadcast(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, l := range d.listeners {
		l.OnEvent(event)
	}
}
