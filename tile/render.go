// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/render.go
// Summary: Composites pane borders, titles and content buffers onto the screen.

package tile

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Styles collects the handful of styles the compositor draws with.
type Styles struct {
	Default      tcell.Style
	Border       tcell.Style
	ActiveBorder tcell.Style
	TabBar       tcell.Style
	TabActive    tcell.Style
}

// DefaultStyles returns the stock look: dim borders, highlighted active pane,
// reversed tab strip entry for the current tab.
func DefaultStyles() Styles {
	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset)
	return Styles{
		Default:      base,
		Border:       base.Foreground(tcell.ColorGray),
		ActiveBorder: base.Foreground(tcell.ColorAqua),
		TabBar:       base.Reverse(true).Dim(true),
		TabActive:    base.Reverse(true).Bold(true),
	}
}

// renderTab draws every pane of the tab.
func renderTab(dr ScreenDriver, t *Tab, st Styles) {
	for _, leaf := range t.Leaves() {
		renderPane(dr, leaf, st)
	}
}

// renderPane draws one pane: border, title in the top edge, then the
// content buffer clipped into the interior.
func renderPane(dr ScreenDriver, p *Pane, st Styles) {
	r := p.Rect()
	if r.W < 2 || r.H < 2 {
		return
	}

	style := st.Border
	if p.Active() {
		style = st.ActiveBorder
	}

	for x := r.X; x < r.X+r.W; x++ {
		dr.SetContent(x, r.Y, tcell.RuneHLine, nil, style)
		dr.SetContent(x, r.Y+r.H-1, tcell.RuneHLine, nil, style)
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		dr.SetContent(r.X, y, tcell.RuneVLine, nil, style)
		dr.SetContent(r.X+r.W-1, y, tcell.RuneVLine, nil, style)
	}
	dr.SetContent(r.X, r.Y, tcell.RuneULCorner, nil, style)
	dr.SetContent(r.X+r.W-1, r.Y, tcell.RuneURCorner, nil, style)
	dr.SetContent(r.X, r.Y+r.H-1, tcell.RuneLLCorner, nil, style)
	dr.SetContent(r.X+r.W-1, r.Y+r.H-1, tcell.RuneLRCorner, nil, style)

	c := p.Content()

	if c != nil && r.W > 4 {
		if title := c.Title(); title != "" {
			label := " " + runewidth.Truncate(title, r.W-4, "…") + " "
			col := r.X + 1
			for _, ch := range label {
				cw := runewidth.RuneWidth(ch)
				if col+cw > r.X+r.W-1 {
					break
				}
				dr.SetContent(col, r.Y, ch, nil, style)
				col += cw
			}
		}
	}

	if c == nil {
		return
	}
	inner := r.Inner()
	buf := c.Render()
	for y := 0; y < inner.H; y++ {
		var row []Cell
		if y < len(buf) {
			row = buf[y]
		}
		for x := 0; x < inner.W; x++ {
			cell := Cell{Ch: ' ', Style: st.Default}
			if x < len(row) {
				cell = row[x]
			}
			if cell.Ch == 0 {
				cell.Ch = ' '
			}
			dr.SetContent(inner.X+x, inner.Y+y, cell.Ch, nil, cell.Style)
		}
	}
}

// drawControlMarker flags command mode at the right end of the tab strip.
func drawControlMarker(dr ScreenDriver, width int, st Styles) {
	const marker = " CTRL "
	col := width - runewidth.StringWidth(marker)
	if col < 0 {
		return
	}
	for _, ch := range marker {
		dr.SetContent(col, 0, ch, nil, st.TabActive)
		col += runewidth.RuneWidth(ch)
	}
}

// renderTabStrip draws the one-row tab list along the top of the screen.
func renderTabStrip(dr ScreenDriver, tabs []*Tab, active int, width int, st Styles) {
	for x := 0; x < width; x++ {
		dr.SetContent(x, 0, ' ', nil, st.TabBar)
	}
	col := 0
	for i, t := range tabs {
		label := tabLabel(i, t)
		style := st.TabBar
		if i == active {
			style = st.TabActive
		}
		for _, ch := range label {
			cw := runewidth.RuneWidth(ch)
			if col+cw > width {
				return
			}
			dr.SetContent(col, 0, ch, nil, style)
			col += cw
		}
	}
}

func tabLabel(i int, t *Tab) string {
	return fmt.Sprintf(" %d:%s ", i+1, runewidth.Truncate(t.Title(), 20, "…"))
}

// tabStripIndexAt maps a strip column back to the tab drawn there, -1 when
// the click landed past the last label.
func tabStripIndexAt(tabs []*Tab, x int) int {
	col := 0
	for i, t := range tabs {
		col += runewidth.StringWidth(tabLabel(i, t))
		if x < col {
			return i
		}
	}
	return -1
}
