// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/driver_tcell.go
// Summary: ScreenDriver abstraction over tcell plus the production adapter.

package tile

import "github.com/gdamore/tcell/v2"

// ScreenDriver is the slice of terminal behaviour the desktop needs. Tests
// substitute an in-memory implementation.
type ScreenDriver interface {
	Init() error
	Fini()
	Size() (int, int)
	SetStyle(style tcell.Style)
	Clear()
	HideCursor()
	EnableMouse()
	EnablePaste()
	Show()
	PollEvent() tcell.Event
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
}

// TcellScreenDriver adapts a tcell.Screen to the ScreenDriver interface.
type TcellScreenDriver struct {
	screen tcell.Screen
}

// NewTcellScreenDriver wraps the provided screen.
func NewTcellScreenDriver(screen tcell.Screen) *TcellScreenDriver {
	return &TcellScreenDriver{screen: screen}
}

func (d *TcellScreenDriver) Init() error {
	return d.screen.Init()
}

func (d *TcellScreenDriver) Fini() {
	d.screen.Fini()
}

func (d *TcellScreenDriver) Size() (int, int) {
	return d.screen.Size()
}

func (d *TcellScreenDriver) SetStyle(style tcell.Style) {
	d.screen.SetStyle(style)
}

func (d *TcellScreenDriver) Clear() {
	d.screen.Clear()
}

func (d *TcellScreenDriver) HideCursor() {
	d.screen.HideCursor()
}

func (d *TcellScreenDriver) EnableMouse() {
	d.screen.EnableMouse()
}

func (d *TcellScreenDriver) EnablePaste() {
	d.screen.EnablePaste()
}

func (d *TcellScreenDriver) Show() {
	d.screen.Show()
}

func (d *TcellScreenDriver) PollEvent() tcell.Event {
	return d.screen.PollEvent()
}

func (d *TcellScreenDriver) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	d.screen.SetContent(x, y, mainc, combc, style)
}
