// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/pane.go
// Summary: Pane node of the layout tree: leaf with content or split with two children.

package tile

import (
	"github.com/google/uuid"
)

// Pane is one node of a tab's layout tree. A pane is either a leaf hosting
// exactly one Content, or a split holding exactly two ordered children and a
// ratio; never both. Only leaves can be active.
//
// The parent pointer is maintained transactionally by the split and close
// operations below; nothing else writes it and nothing ever derives a parent
// by searching.
type Pane struct {
	id     uuid.UUID
	parent *Pane

	// split fields, meaningful when first/second are set
	split  SplitType
	ratio  float64
	first  *Pane
	second *Pane

	// leaf fields
	content Content
	active  bool
	stamp   uint64

	// last allocated rectangle, border frame included
	rect Rect
}

func newLeaf(c Content) *Pane {
	return &Pane{
		id:      uuid.New(),
		ratio:   0.5,
		content: c,
	}
}

// IsLeaf reports whether the pane hosts content directly.
func (p *Pane) IsLeaf() bool { return p.content != nil }

// ID is the pane's own identity, distinct from its content's.
func (p *Pane) ID() uuid.UUID { return p.id }

// Content returns the hosted content, nil for split panes.
func (p *Pane) Content() Content { return p.content }

// Rect is the last allocated rectangle, border frame included.
func (p *Pane) Rect() Rect { return p.rect }

// Active reports whether this leaf holds the input focus.
func (p *Pane) Active() bool { return p.active }

// Ratio is the fraction of the split axis given to the first child.
func (p *Pane) Ratio() float64 { return p.ratio }

// canSplit reports whether halving the allocated span along the direction's
// axis keeps both halves at or above the minimum usable size. Only the leaf
// itself is consulted; siblings are unaffected.
func (p *Pane) canSplit(d Direction, minW, minH int) bool {
	if !p.IsLeaf() {
		return false
	}
	if axisOf(d) == Vertical {
		return p.rect.W/2 >= minW
	}
	return p.rect.H/2 >= minH
}

// splitLeaf converts the leaf in place into a split node, preserving its
// slot in the parent (and the root slot when it has no parent). It returns
// the two children in tree order plus the leaf created for the new content.
// Activation is left to the tree's activation routine; the existing content
// keeps its stamp so close-time policy still favors it.
func (p *Pane) splitLeaf(d Direction, nc Content) (first, second, fresh *Pane) {
	existing := newLeaf(p.content)
	existing.parent = p
	existing.active = p.active
	existing.stamp = p.stamp

	fresh = newLeaf(nc)
	fresh.parent = p

	p.content = nil
	p.active = false
	p.stamp = 0
	p.split = axisOf(d)
	p.ratio = 0.5
	if towardSecond(d) {
		p.first, p.second = existing, fresh
	} else {
		p.first, p.second = fresh, existing
	}
	return p.first, p.second, fresh
}

// layout assigns r to the subtree rooted at p, carving split rectangles by
// ratio. The walk is iterative with an explicit stack; leaves forward their
// inner area to the content.
func layout(p *Pane, r Rect) {
	if p == nil {
		return
	}
	type frame struct {
		node *Pane
		r    Rect
	}
	stack := []frame{{p, r}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.node
		n.rect = f.r
		if n.IsLeaf() {
			in := f.r.Inner()
			n.content.Resize(in.W, in.H)
			continue
		}
		a, b := carve(f.r, n.split, n.ratio)
		// push second first so the first child is laid out first
		stack = append(stack, frame{n.second, b}, frame{n.first, a})
	}
}

// carve divides r between the two children of a split: the first child gets
// the ratio share rounded down, the second the remainder, so the children
// tile r exactly.
func carve(r Rect, split SplitType, ratio float64) (Rect, Rect) {
	if split == Vertical {
		firstW := int(float64(r.W) * ratio)
		a := Rect{X: r.X, Y: r.Y, W: firstW, H: r.H}
		b := Rect{X: r.X + firstW, Y: r.Y, W: r.W - firstW, H: r.H}
		return a, b
	}
	firstH := int(float64(r.H) * ratio)
	a := Rect{X: r.X, Y: r.Y, W: r.W, H: firstH}
	b := Rect{X: r.X, Y: r.Y + firstH, W: r.W, H: r.H - firstH}
	return a, b
}

// appendLeaves collects the subtree's leaves in geometric order
// (first child before second), iteratively.
func appendLeaves(dst []*Pane, p *Pane) []*Pane {
	if p == nil {
		return dst
	}
	stack := []*Pane{p}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsLeaf() {
			dst = append(dst, n)
			continue
		}
		stack = append(stack, n.second, n.first)
	}
	return dst
}

// firstLeaf descends to the leftmost/topmost leaf of the subtree.
func firstLeaf(p *Pane) *Pane {
	for p != nil && !p.IsLeaf() {
		p = p.first
	}
	return p
}

// mostRecentLeaf returns the leaf with the highest activation stamp, or the
// first leaf when the subtree has no activation history.
func mostRecentLeaf(p *Pane) *Pane {
	if p == nil {
		return nil
	}
	var best *Pane
	stack := []*Pane{p}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsLeaf() {
			if n.stamp > 0 && (best == nil || n.stamp > best.stamp) {
				best = n
			}
			continue
		}
		stack = append(stack, n.second, n.first)
	}
	if best == nil {
		return firstLeaf(p)
	}
	return best
}

// maxStamp is the highest activation stamp in the subtree, zero when the
// subtree was never active.
func maxStamp(p *Pane) uint64 {
	var max uint64
	stack := []*Pane{p}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if n.IsLeaf() {
			if n.stamp > max {
				max = n.stamp
			}
			continue
		}
		stack = append(stack, n.second, n.first)
	}
	return max
}

// leafAt finds the leaf whose rectangle contains the point, descending by
// containment. Returns nil when the point is outside the subtree.
func leafAt(p *Pane, x, y int) *Pane {
	if p == nil || !p.rect.Contains(x, y) {
		return nil
	}
	for !p.IsLeaf() {
		if p.first.rect.Contains(x, y) {
			p = p.first
		} else if p.second.rect.Contains(x, y) {
			p = p.second
		} else {
			return nil
		}
	}
	return p
}
