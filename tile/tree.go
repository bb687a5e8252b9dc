// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/tree.go
// Summary: Layout tree of one tab: split, close, resize, focus and swap operations.

package tile

import (
	"github.com/google/uuid"
)

// Default geometry limits, overridable through configuration.
const (
	MinPaneWidth  = 20
	MinPaneHeight = 8
	ResizeStep    = 0.05
	MinRatio      = 0.1
)

// Limits bounds the geometry operations of one tree.
type Limits struct {
	MinWidth   int
	MinHeight  int
	ResizeStep float64
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{MinWidth: MinPaneWidth, MinHeight: MinPaneHeight, ResizeStep: ResizeStep}
}

// sane fills unset fields with the defaults so a partial configuration
// cannot produce a degenerate tree.
func (l Limits) sane() Limits {
	if l.MinWidth <= 0 {
		l.MinWidth = MinPaneWidth
	}
	if l.MinHeight <= 0 {
		l.MinHeight = MinPaneHeight
	}
	if l.ResizeStep <= 0 || l.ResizeStep >= 1 {
		l.ResizeStep = ResizeStep
	}
	return l
}

// CloseResult reports what closing a leaf did to the tree.
type CloseResult int

const (
	// CloseNoop means nothing was closed (no such leaf).
	CloseNoop CloseResult = iota
	// StillHasLeaves means the sibling was promoted and the tree lives on.
	StillHasLeaves
	// TreeEmptied means the root leaf was closed and the tree is gone.
	TreeEmptied
)

// Tree owns the pane hierarchy of one tab. All mutation happens on the
// desktop loop goroutine; the tree itself carries no locks.
type Tree struct {
	root   *Pane
	active *Pane
	seq    uint64
	limits Limits
}

// NewTree builds a tree with a single leaf hosting c, already active.
func NewTree(c Content, lim Limits) *Tree {
	t := &Tree{limits: lim.sane()}
	leaf := newLeaf(c)
	t.root = leaf
	t.Activate(leaf)
	return t
}

// Root returns the root pane, nil after the tree emptied.
func (t *Tree) Root() *Pane { return t.root }

// ActiveLeaf returns the single active leaf, nil when the tree is empty.
func (t *Tree) ActiveLeaf() *Pane { return t.active }

// Empty reports whether the last leaf has been closed.
func (t *Tree) Empty() bool { return t.root == nil }

// Leaves returns all leaves in geometric order (first child before second).
func (t *Tree) Leaves() []*Pane {
	return appendLeaves(nil, t.root)
}

// Activate makes leaf the single active leaf and stamps it. This is the only
// code that mutates activation state; every focus path funnels through it.
// Returns whether the active leaf actually changed.
func (t *Tree) Activate(leaf *Pane) bool {
	if leaf == nil || !leaf.IsLeaf() || leaf == t.active {
		return false
	}
	if t.active != nil {
		t.active.active = false
	}
	t.active = leaf
	leaf.active = true
	t.seq++
	leaf.stamp = t.seq
	return true
}

// ClearActive drops the active flag entirely, used during tab teardown.
func (t *Tree) ClearActive() {
	if t.active != nil {
		t.active.active = false
		t.active = nil
	}
}

// CanSplit reports whether the active leaf can be split in the direction
// without pushing either half below the minimum usable size. Infeasibility
// is an answer, not an error.
func (t *Tree) CanSplit(d Direction) bool {
	if t.active == nil {
		return false
	}
	return t.active.canSplit(d, t.limits.MinWidth, t.limits.MinHeight)
}

// SplitActive splits the active leaf, placing the new content on the
// direction side. Returns the two children in tree order; (nil, nil) when
// the split is not feasible, leaving the tree untouched. The new leaf
// becomes active and both children are laid out before returning.
func (t *Tree) SplitActive(d Direction, nc Content) (*Pane, *Pane) {
	if nc == nil || !t.CanSplit(d) {
		return nil, nil
	}
	node := t.active
	first, second, fresh := node.splitLeaf(d, nc)
	// the split node handed its active flag to the existing leaf
	if existing := first; existing != fresh {
		t.active = existing
	} else {
		t.active = second
	}
	layout(node, node.rect)
	t.Activate(fresh)
	return first, second
}

// CloseActive closes the active leaf. See CloseLeaf.
func (t *Tree) CloseActive() (Content, CloseResult) {
	return t.CloseLeaf(t.active)
}

// CloseLeaf removes a leaf from the tree. The sibling subtree is promoted
// into the parent's slot with its parent pointer re-targeted, and takes over
// the vacated rectangle. When the closed leaf was active, the promoted
// subtree's most recently active leaf inherits the focus. Closing the root
// leaf empties the tree. The removed content is returned so the caller can
// stop it; the tree never manages content lifecycles itself.
func (t *Tree) CloseLeaf(leaf *Pane) (Content, CloseResult) {
	if leaf == nil || !leaf.IsLeaf() {
		return nil, CloseNoop
	}
	closed := leaf.content
	if leaf == t.root {
		t.root = nil
		t.active = nil
		leaf.active = false
		leaf.content = nil
		return closed, TreeEmptied
	}

	parent := leaf.parent
	sibling := parent.first
	if sibling == leaf {
		sibling = parent.second
	}
	grand := parent.parent

	sibling.parent = grand
	switch {
	case grand == nil:
		t.root = sibling
	case grand.first == parent:
		grand.first = sibling
	default:
		grand.second = sibling
	}

	wasActive := leaf == t.active
	leaf.parent = nil
	leaf.active = false
	leaf.content = nil
	parent.first = nil
	parent.second = nil
	parent.parent = nil

	if wasActive {
		t.active = nil
		t.Activate(mostRecentLeaf(sibling))
	}
	layout(sibling, parent.rect)
	return closed, StillHasLeaves
}

// Resize lays the whole tree out into r. Equal input yields identical
// geometry, so redundant resizes are harmless.
func (t *Tree) Resize(r Rect) {
	layout(t.root, r)
}

// NeighborOfActive locates the leaf adjacent to the active leaf in the given
// direction, nil at the tree edge. The walk climbs parent pointers to the
// nearest split on the direction's axis where the sibling lies on the
// direction side, then descends: along the travel axis it hugs the
// coming-from edge, at perpendicular splits it prefers the most recently
// active branch.
func (t *Tree) NeighborOfActive(d Direction) *Pane {
	if t.active == nil {
		return nil
	}
	return neighborOf(t.active, d)
}

func neighborOf(from *Pane, d Direction) *Pane {
	axis := axisOf(d)
	node := from
	for node.parent != nil {
		p := node.parent
		if p.split == axis {
			if towardSecond(d) && p.first == node {
				return descendToward(p.second, d)
			}
			if !towardSecond(d) && p.second == node {
				return descendToward(p.first, d)
			}
		}
		node = p
	}
	return nil
}

func descendToward(p *Pane, d Direction) *Pane {
	axis := axisOf(d)
	for !p.IsLeaf() {
		switch {
		case p.split == axis && towardSecond(d):
			p = p.first
		case p.split == axis:
			p = p.second
		case maxStamp(p.second) > maxStamp(p.first):
			p = p.second
		default:
			p = p.first
		}
	}
	return p
}

// ResizeActive moves the separator nearest to the active leaf on the
// direction's axis by one step, clamped so both sides keep the minimum
// usable size, then re-lays-out from that split down. Returns false when no
// separator lies on the direction side.
func (t *Tree) ResizeActive(d Direction) bool {
	leaf := t.active
	if leaf == nil {
		return false
	}
	axis := axisOf(d)
	node := leaf
	var target *Pane
	for node.parent != nil {
		p := node.parent
		if p.split == axis {
			if towardSecond(d) == (p.first == node) {
				target = p
				break
			}
		}
		node = p
	}
	if target == nil {
		return false
	}

	delta := t.limits.ResizeStep
	if !towardSecond(d) {
		delta = -delta
	}
	next := clampRatio(target.ratio+delta, target, t.limits.MinWidth, t.limits.MinHeight)
	if next == target.ratio {
		return false
	}
	target.ratio = next
	layout(target, target.rect)
	return true
}

// clampRatio keeps both children of the split at or above the minimum
// usable size, with a plain ratio floor as backstop when the split has no
// allocated span yet.
func clampRatio(ratio float64, p *Pane, minW, minH int) float64 {
	span := p.rect.W
	min := minW
	if p.split == Horizontal {
		span = p.rect.H
		min = minH
	}
	lo := MinRatio
	if span > 0 {
		if byPixels := float64(min) / float64(span); byPixels > lo {
			lo = byPixels
		}
	}
	hi := 1.0 - lo
	if lo > hi {
		// the span cannot honor the minimum on both sides; hold position
		return p.ratio
	}
	if ratio < lo {
		return lo
	}
	if ratio > hi {
		return hi
	}
	return ratio
}

// SwapActive exchanges the active leaf's content with its neighbor in the
// given direction. The focus follows the moved content; both contents are
// re-sized to their new inner areas. Returns false at the tree edge.
func (t *Tree) SwapActive(d Direction) bool {
	cur := t.active
	if cur == nil {
		return false
	}
	other := neighborOf(cur, d)
	if other == nil {
		return false
	}
	cur.content, other.content = other.content, cur.content
	t.Activate(other)
	layout(cur, cur.rect)
	layout(other, other.rect)
	return true
}

// FindByContent resolves the leaf hosting the content with the given
// identity, nil when no leaf hosts it.
func (t *Tree) FindByContent(id uuid.UUID) *Pane {
	for _, leaf := range t.Leaves() {
		if leaf.content != nil && leaf.content.ID() == id {
			return leaf
		}
	}
	return nil
}

// LeafAt returns the leaf whose rectangle contains the screen point, nil
// when the point falls outside the tree.
func (t *Tree) LeafAt(x, y int) *Pane {
	return leafAt(t.root, x, y)
}
