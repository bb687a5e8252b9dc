// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/desktop.go
// Summary: Desktop owns the tab collection and the single event loop that
// mutates layout state.

package tile

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

// keyControlMode is the prefix that flips the desktop into command mode.
const keyControlMode = tcell.KeyCtrlA

// ContentFactory spawns the content hosted by new panes and tabs.
type ContentFactory func() (Content, error)

// Desktop manages a collection of tabs and runs the event loop. All tree
// mutation happens on the loop goroutine; content goroutines only talk to it
// through the content event channel.
type Desktop struct {
	driver     ScreenDriver
	factory    ContentFactory
	lifecycle  ContentLifecycle
	dispatcher *EventDispatcher
	limits     Limits
	styles     Styles

	tabs   []*Tab
	active int

	events      chan ContentEvent
	quit        chan struct{}
	closeOnce   sync.Once
	needsDraw   bool
	inControl   bool
	subControl  rune
	lastButtons tcell.ButtonMask
	pasting     bool
	pasteBuf    []byte
}

// NewDesktop initializes the screen and opens the first tab from the factory.
func NewDesktop(driver ScreenDriver, factory ContentFactory, lifecycle ContentLifecycle, lim Limits) (*Desktop, error) {
	if factory == nil {
		return nil, errors.New("tile: nil content factory")
	}
	if lifecycle == nil {
		lifecycle = &LocalContentLifecycle{}
	}
	if err := driver.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	styles := DefaultStyles()
	driver.SetStyle(styles.Default)
	driver.HideCursor()
	driver.EnableMouse()
	driver.EnablePaste()

	d := &Desktop{
		driver:     driver,
		factory:    factory,
		lifecycle:  lifecycle,
		dispatcher: NewEventDispatcher(),
		limits:     lim.sane(),
		styles:     styles,
		active:     -1,
		events:     make(chan ContentEvent, 32),
		quit:       make(chan struct{}),
	}

	c, err := factory()
	if err != nil {
		driver.Fini()
		return nil, fmt.Errorf("spawn initial content: %w", err)
	}
	d.addTab(c)
	return d, nil
}

// Subscribe registers a listener for desktop events.
func (d *Desktop) Subscribe(l Listener) { d.dispatcher.Subscribe(l) }

// Unsubscribe removes a previously registered listener.
func (d *Desktop) Unsubscribe(l Listener) { d.dispatcher.Unsubscribe(l) }

// ActiveTab returns the tab currently on screen, nil when all tabs closed.
func (d *Desktop) ActiveTab() *Tab {
	if d.active < 0 || d.active >= len(d.tabs) {
		return nil
	}
	return d.tabs[d.active]
}

// TabCount reports how many tabs are open.
func (d *Desktop) TabCount() int { return len(d.tabs) }

// Run drives the event loop until the desktop closes. It owns all layout
// state; never call it from more than one goroutine.
func (d *Desktop) Run() error {
	events := make(chan tcell.Event, 10)
	go func() {
		for {
			select {
			case <-d.quit:
				return
			default:
				ev := d.driver.PollEvent()
				if ev == nil {
					return
				}
				events <- ev
			}
		}
	}()

	d.layoutActive()
	d.needsDraw = true

	for {
		if d.needsDraw && !d.closing() {
			d.draw()
			d.needsDraw = false
		}
		select {
		case ev := <-events:
			d.handleEvent(ev)
		case ce := <-d.events:
			d.handleContentEvent(ce)
		case <-d.quit:
			return nil
		}
	}
}

// Close tears the desktop down exactly once: stops all content, releases the
// terminal. Run returns after the quit channel closes.
func (d *Desktop) Close() {
	d.closeOnce.Do(func() {
		close(d.quit)
		for _, t := range d.tabs {
			t.Close()
		}
		d.driver.Fini()
	})
}

func (d *Desktop) closing() bool {
	select {
	case <-d.quit:
		return true
	default:
		return false
	}
}

// InjectKeyEvent feeds a synthetic key press through the normal handling
// path.
func (d *Desktop) InjectKeyEvent(key tcell.Key, ch rune, modifiers tcell.ModMask) {
	d.handleEvent(tcell.NewEventKey(key, ch, modifiers))
}

// InjectMouseEvent feeds a synthetic mouse event through the normal handling
// path.
func (d *Desktop) InjectMouseEvent(x, y int, buttons tcell.ButtonMask, modifiers tcell.ModMask) {
	d.handleMouse(tcell.NewEventMouse(x, y, buttons, modifiers))
}

func (d *Desktop) handleEvent(ev tcell.Event) {
	switch tev := ev.(type) {
	case *tcell.EventResize:
		d.driver.Clear()
		d.layoutActive()
		d.needsDraw = true
	case *tcell.EventMouse:
		d.handleMouse(tev)
	case *tcell.EventPaste:
		d.handlePasteEvent(tev)
	case *tcell.EventKey:
		d.handleKey(tev)
	}
}

func (d *Desktop) handleKey(ev *tcell.EventKey) {
	if d.pasting {
		d.consumePasteKey(ev)
		return
	}
	if ev.Key() == keyControlMode {
		d.toggleControlMode()
		return
	}
	if d.inControl {
		d.handleControlMode(ev)
		return
	}
	if ev.Key() == tcell.KeyCtrlQ {
		d.Close()
		return
	}

	t := d.ActiveTab()
	if t == nil {
		return
	}

	if ev.Modifiers()&tcell.ModShift != 0 {
		switch ev.Key() {
		case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
			if t.NavigateFocus(keyToDirection(ev)) {
				d.needsDraw = true
			}
			return
		case tcell.KeyPgUp:
			t.ScrollPage(1)
			d.needsDraw = true
			return
		case tcell.KeyPgDn:
			t.ScrollPage(-1)
			d.needsDraw = true
			return
		}
	}

	t.HandleKey(ev)
	d.needsDraw = true
}

// toggleControlMode flips command mode and broadcasts the change.
func (d *Desktop) toggleControlMode() {
	d.inControl = !d.inControl
	d.subControl = 0

	eventType := EventControlOff
	if d.inControl {
		eventType = EventControlOn
	}
	d.dispatcher.Broadcast(Event{Type: eventType})
	d.needsDraw = true
}

// handleControlMode processes one command-mode key. Arrow keys resize and
// keep the mode active so repeated nudges work; everything else is a single
// command.
func (d *Desktop) handleControlMode(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEsc {
		d.toggleControlMode()
		return
	}

	t := d.ActiveTab()
	if t == nil {
		d.toggleControlMode()
		return
	}

	if d.subControl != 0 {
		switch d.subControl {
		case 'w':
			if dir := keyToDirection(ev); dir >= 0 {
				t.SwapPane(dir)
			}
		}
		d.toggleControlMode()
		return
	}

	if dir := keyToDirection(ev); dir >= 0 {
		t.ResizePane(dir)
		d.needsDraw = true
		return
	}

	r := ev.Rune()
	if r >= '1' && r <= '9' {
		d.switchTo(int(r - '1'))
		d.toggleControlMode()
		return
	}

	exitControlMode := true
	switch r {
	case 'x':
		t.ClosePane()
		d.reapEmptyTabs()
	case '|', 'v':
		d.splitActive(DirRight)
	case '-', 's':
		d.splitActive(DirDown)
	case 'w':
		d.subControl = 'w'
		exitControlMode = false
	case 'c':
		d.newTab()
	case 'n':
		d.switchTo((d.active + 1) % len(d.tabs))
	case 'p':
		d.switchTo((d.active - 1 + len(d.tabs)) % len(d.tabs))
	case 'q':
		d.Close()
		return
	}

	if exitControlMode {
		d.toggleControlMode()
	}
	d.needsDraw = true
}

func (d *Desktop) handleMouse(ev *tcell.EventMouse) {
	if ev == nil {
		return
	}
	x, y := ev.Position()
	buttons := ev.Buttons()

	if dx, dy := wheelDeltaFromMask(buttons); dx != 0 || dy != 0 {
		if t := d.ActiveTab(); t != nil {
			t.HandleWheel(x, y, dx, dy)
			d.needsDraw = true
		}
		return
	}

	pressed := buttons&tcell.Button1 != 0 && d.lastButtons&tcell.Button1 == 0
	d.lastButtons = buttons
	if !pressed {
		return
	}

	if y == 0 {
		if i := tabStripIndexAt(d.tabs, x); i >= 0 {
			d.switchTo(i)
		}
		return
	}
	if d.inControl {
		return
	}
	if t := d.ActiveTab(); t != nil && t.FocusAt(x, y) {
		d.needsDraw = true
	}
}

func wheelDeltaFromMask(mask tcell.ButtonMask) (int, int) {
	dx, dy := 0, 0
	if mask&tcell.WheelUp != 0 {
		dy--
	}
	if mask&tcell.WheelDown != 0 {
		dy++
	}
	if mask&tcell.WheelLeft != 0 {
		dx--
	}
	if mask&tcell.WheelRight != 0 {
		dx++
	}
	return dx, dy
}

func (d *Desktop) handlePasteEvent(ev *tcell.EventPaste) {
	if ev.Start() {
		d.pasting = true
		d.pasteBuf = d.pasteBuf[:0]
		return
	}
	d.pasting = false
	if len(d.pasteBuf) == 0 {
		return
	}
	data := append([]byte(nil), d.pasteBuf...)
	d.pasteBuf = d.pasteBuf[:0]
	if t := d.ActiveTab(); t != nil {
		t.HandlePaste(data)
		d.needsDraw = true
	}
}

func (d *Desktop) consumePasteKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		r := ev.Rune()
		if r == '\n' {
			d.pasteBuf = append(d.pasteBuf, '\r')
		} else {
			d.pasteBuf = utf8.AppendRune(d.pasteBuf, r)
		}
	case tcell.KeyEnter:
		d.pasteBuf = append(d.pasteBuf, '\r')
	case tcell.KeyTab:
		d.pasteBuf = append(d.pasteBuf, '\t')
	default:
		if r := ev.Rune(); r != 0 {
			d.pasteBuf = utf8.AppendRune(d.pasteBuf, r)
		}
	}
}

// handleContentEvent applies one marshaled notification from a content
// goroutine.
func (d *Desktop) handleContentEvent(ev ContentEvent) {
	if ev.Kind == ContentRefresh {
		d.needsDraw = true
		return
	}
	idx := d.tabIndexOwning(ev.Source)
	if idx < 0 {
		return
	}
	if ev.Kind == ContentFocusRequested && idx != d.active {
		d.switchTo(idx)
	}
	d.tabs[idx].HandleContentEvent(ev)
	d.reapEmptyTabs()
	d.needsDraw = true
}

func (d *Desktop) tabIndexOwning(id uuid.UUID) int {
	for i, t := range d.tabs {
		if t.ownsContent(id) {
			return i
		}
	}
	return -1
}

func (d *Desktop) splitActive(dir Direction) {
	t := d.ActiveTab()
	if t == nil {
		return
	}
	if !t.CanSplit(dir) {
		log.Printf("desktop: split %v rejected, active pane too small", dir)
		return
	}
	c, err := d.factory()
	if err != nil {
		log.Printf("desktop: spawn content: %v", err)
		return
	}
	if !t.Split(dir, c) {
		c.Stop()
		return
	}
	d.needsDraw = true
}

func (d *Desktop) newTab() {
	c, err := d.factory()
	if err != nil {
		log.Printf("desktop: spawn content: %v", err)
		return
	}
	d.addTab(c)
}

func (d *Desktop) addTab(c Content) {
	t := NewTab(c, d.events, d.dispatcher, d.lifecycle, d.limits)
	d.tabs = append(d.tabs, t)
	prev := d.active
	d.active = len(d.tabs) - 1
	if prev >= 0 && prev < len(d.tabs)-1 {
		d.tabs[prev].SetFocused(false)
	}
	t.SetFocused(true)
	d.driver.Clear()
	d.layoutActive()
	d.needsDraw = true
}

func (d *Desktop) switchTo(i int) {
	if i < 0 || i >= len(d.tabs) || i == d.active {
		return
	}
	if prev := d.ActiveTab(); prev != nil {
		prev.SetFocused(false)
	}
	d.active = i
	t := d.tabs[i]
	t.SetFocused(true)
	d.driver.Clear()
	d.layoutActive()
	d.dispatcher.Broadcast(Event{Type: EventLayoutChanged, Payload: t.ID()})
	d.needsDraw = true
}

// reapEmptyTabs removes tabs whose last pane closed. Closing the final tab
// shuts the desktop down.
func (d *Desktop) reapEmptyTabs() {
	removed := false
	for i := len(d.tabs) - 1; i >= 0; i-- {
		if !d.tabs[i].Empty() {
			continue
		}
		d.tabs[i].Close()
		d.tabs = append(d.tabs[:i], d.tabs[i+1:]...)
		if d.active >= i && d.active > 0 {
			d.active--
		}
		removed = true
	}
	if !removed {
		return
	}
	if len(d.tabs) == 0 {
		log.Printf("desktop: last tab closed, shutting down")
		d.Close()
		return
	}
	d.ActiveTab().SetFocused(true)
	d.driver.Clear()
	d.layoutActive()
	d.needsDraw = true
}

func (d *Desktop) layoutActive() {
	t := d.ActiveTab()
	if t == nil {
		return
	}
	w, h := d.driver.Size()
	if w <= 0 || h <= 1 {
		return
	}
	t.Resize(Rect{X: 0, Y: 1, W: w, H: h - 1})
}

func (d *Desktop) draw() {
	t := d.ActiveTab()
	if t == nil {
		return
	}
	w, _ := d.driver.Size()
	renderTabStrip(d.driver, d.tabs, d.active, w, d.styles)
	if d.inControl {
		drawControlMarker(d.driver, w, d.styles)
	}
	renderTab(d.driver, t, d.styles)
	d.driver.Show()
}

func keyToDirection(ev *tcell.EventKey) Direction {
	switch ev.Key() {
	case tcell.KeyUp:
		return DirUp
	case tcell.KeyDown:
		return DirDown
	case tcell.KeyLeft:
		return DirLeft
	case tcell.KeyRight:
		return DirRight
	}
	return -1
}
