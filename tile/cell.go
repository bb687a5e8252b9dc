// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/cell.go
// Summary: Screen cell type produced by content renderers and the compositor.

package tile

import "github.com/gdamore/tcell/v2"

// Cell is a single character cell with its style.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// NewBuffer allocates a rows×cols grid filled with blanks in the given style.
func NewBuffer(cols, rows int, style tcell.Style) [][]Cell {
	if cols <= 0 || rows <= 0 {
		return [][]Cell{}
	}
	buf := make([][]Cell, rows)
	for y := range buf {
		buf[y] = make([]Cell, cols)
		for x := range buf[y] {
			buf[y][x] = Cell{Ch: ' ', Style: style}
		}
	}
	return buf
}
