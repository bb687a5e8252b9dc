// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/direction.go
// Summary: Direction and split-orientation types shared by the layout engine.

package tile

// Direction identifies where the user wants to go or where a new pane
// should appear, always from the user's point of view.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "unknown"
}

// SplitType names the separator orientation. A Vertical split has a vertical
// separator and arranges its children left and right; a Horizontal split
// stacks them top and bottom.
type SplitType int

const (
	Horizontal SplitType = iota
	Vertical
)

func (s SplitType) String() string {
	if s == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// axisOf maps a direction onto the split orientation it operates on:
// left/right movement crosses vertical separators, up/down crosses
// horizontal ones.
func axisOf(d Direction) SplitType {
	if d == DirLeft || d == DirRight {
		return Vertical
	}
	return Horizontal
}

// towardSecond reports whether the direction points at the second child of a
// split on its axis (right and down are "second"; left and up are "first").
func towardSecond(d Direction) bool {
	return d == DirRight || d == DirDown
}

// Rect is a cell rectangle on the screen grid. W and H are in cells; a pane
// narrower than its border frame renders nothing.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Inner returns the content area inside a one-cell border frame.
func (r Rect) Inner() Rect {
	in := Rect{X: r.X + 1, Y: r.Y + 1, W: r.W - 2, H: r.H - 2}
	if in.W < 0 {
		in.W = 0
	}
	if in.H < 0 {
		in.H = 0
	}
	return in
}
