// Package duplicates implements the duplicate-flag management mode: once
// the matcher reports repeated flags, this package groups them, tracks
// selection/cursor state, and rebuilds the buffer when entries are
// deleted.
package duplicates

import (
	"sort"
	"strings"

	"github.com/mprompt/promptline/internal/match"
	"github.com/mprompt/promptline/internal/token"
)

// Group is one category's set of duplicate token indices.
type Group struct {
	Category     string
	Indices      []int
	Selected     bool
	CurrentIndex int // index within Indices, not a token index
}

// CurrentResultIndex is the token/result index the group's cursor points
// at, or -1 if the group is empty.
func (g *Group) CurrentResultIndex() int {
	if len(g.Indices) == 0 {
		return -1
	}
	return g.Indices[g.CurrentIndex]
}

// Mode is the duplicate-flags state machine. It holds no buffer of its
// own; BufferOps is the narrow capability it needs from whatever owns the
// text (the editor), mirroring the teacher's habit of injecting a small
// interface rather than holding a back-reference to a concrete type.
type Mode struct {
	groups            []*Group
	currentGroupIndex int
}

// BufferOps is the editing surface Mode needs: reading the current token
// stream, rewriting the buffer text after a deletion, moving the cursor,
// and recomputing match results/duplicates against the new text.
type BufferOps interface {
	Tokens() []token.Token
	SetText(text string)
	SetCursorPosition(pos int)
	MatchResults() []match.MatchResult
	FindDuplicates(results []match.MatchResult) map[string][]int
}

// New builds a Mode from a duplicates map (category -> token indices),
// sorting groups by first occurrence.
func New(duplicates map[string][]int) *Mode {
	m := &Mode{}
	for category, indices := range duplicates {
		m.groups = append(m.groups, &Group{Category: category, Indices: append([]int(nil), indices...)})
	}
	m.sortGroups()
	return m
}

func (m *Mode) sortGroups() {
	sort.Slice(m.groups, func(i, j int) bool {
		fi, fj := 0, 0
		if len(m.groups[i].Indices) > 0 {
			fi = m.groups[i].Indices[0]
		}
		if len(m.groups[j].Indices) > 0 {
			fj = m.groups[j].Indices[0]
		}
		return fi < fj
	})
}

// CurrentGroup returns the group the cursor is on, or nil.
func (m *Mode) CurrentGroup() *Group {
	if m.currentGroupIndex < 0 || m.currentGroupIndex >= len(m.groups) {
		return nil
	}
	return m.groups[m.currentGroupIndex]
}

// Groups returns every duplicate group.
func (m *Mode) Groups() []*Group {
	return m.groups
}

// SelectedGroups returns the groups currently marked selected.
func (m *Mode) SelectedGroups() []*Group {
	var out []*Group
	for _, g := range m.groups {
		if g.Selected {
			out = append(out, g)
		}
	}
	return out
}

// Next moves to the next duplicate within the current group.
func (m *Mode) Next(ops BufferOps) {
	g := m.CurrentGroup()
	if g == nil || len(g.Indices) == 0 {
		return
	}
	g.CurrentIndex = (g.CurrentIndex + 1) % len(g.Indices)
	m.moveCursorToCurrent(ops)
}

// Prev moves to the previous duplicate within the current group.
func (m *Mode) Prev(ops BufferOps) {
	g := m.CurrentGroup()
	if g == nil || len(g.Indices) == 0 {
		return
	}
	g.CurrentIndex = ((g.CurrentIndex-1)%len(g.Indices) + len(g.Indices)) % len(g.Indices)
	m.moveCursorToCurrent(ops)
}

// NextGroup moves the cursor to the next duplicate group.
func (m *Mode) NextGroup(ops BufferOps) {
	if len(m.groups) == 0 {
		return
	}
	m.currentGroupIndex = (m.currentGroupIndex + 1) % len(m.groups)
	m.moveCursorToCurrent(ops)
}

// PrevGroup moves the cursor to the previous duplicate group.
func (m *Mode) PrevGroup(ops BufferOps) {
	if len(m.groups) == 0 {
		return
	}
	m.currentGroupIndex = ((m.currentGroupIndex-1)%len(m.groups) + len(m.groups)) % len(m.groups)
	m.moveCursorToCurrent(ops)
}

// Select marks the current group selected.
func (m *Mode) Select() {
	if g := m.CurrentGroup(); g != nil {
		g.Selected = true
	}
}

// Deselect clears the current group's selection.
func (m *Mode) Deselect() {
	if g := m.CurrentGroup(); g != nil {
		g.Selected = false
	}
}

// SelectAll marks every group selected.
func (m *Mode) SelectAll() {
	for _, g := range m.groups {
		g.Selected = true
	}
}

// DeselectAll clears every group's selection.
func (m *Mode) DeselectAll() {
	for _, g := range m.groups {
		g.Selected = false
	}
}

func (m *Mode) groupsToProcess() []*Group {
	if selected := m.SelectedGroups(); len(selected) > 0 {
		return selected
	}
	if g := m.CurrentGroup(); g != nil {
		return []*Group{g}
	}
	return nil
}

// KeepCurrent deletes every duplicate in the groups-to-process set except
// the one the cursor currently points at.
func (m *Mode) KeepCurrent(ops BufferOps) {
	toDelete := map[int]bool{}
	for _, g := range m.groupsToProcess() {
		current := g.CurrentResultIndex()
		for _, idx := range g.Indices {
			if idx != current {
				toDelete[idx] = true
			}
		}
	}
	m.deleteIndices(ops, toDelete)
}

// KeepFirst deletes every duplicate in the groups-to-process set except the
// first occurrence.
func (m *Mode) KeepFirst(ops BufferOps) {
	toDelete := map[int]bool{}
	for _, g := range m.groupsToProcess() {
		for _, idx := range g.Indices[1:] {
			toDelete[idx] = true
		}
	}
	m.deleteIndices(ops, toDelete)
}

// DeleteCurrent removes just the current duplicate from its group,
// refusing when the group has only one member left.
func (m *Mode) DeleteCurrent(ops BufferOps) {
	g := m.CurrentGroup()
	if g == nil || len(g.Indices) <= 1 {
		return
	}

	idxToDelete := g.CurrentResultIndex()
	g.Indices = removeValue(g.Indices, idxToDelete)
	if g.CurrentIndex >= len(g.Indices) {
		g.CurrentIndex = len(g.Indices) - 1
	}

	m.deleteIndices(ops, map[int]bool{idxToDelete: true})
}

func removeValue(values []int, target int) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}

func (m *Mode) deleteIndices(ops BufferOps, indices map[int]bool) {
	if len(indices) == 0 {
		return
	}

	tokens := ops.Tokens()
	var parts []string
	for i, t := range tokens {
		if !indices[i] {
			parts = append(parts, t.Raw)
		}
	}
	ops.SetText(strings.Join(parts, " "))

	m.refreshDuplicates(ops)
}

func (m *Mode) refreshDuplicates(ops BufferOps) {
	results := ops.MatchResults()
	duplicates := ops.FindDuplicates(results)

	oldSelected := map[string]bool{}
	for _, g := range m.groups {
		if g.Selected {
			oldSelected[g.Category] = true
		}
	}

	m.groups = nil
	for category, indices := range duplicates {
		g := &Group{Category: category, Indices: indices, Selected: oldSelected[category]}
		m.groups = append(m.groups, g)
	}
	m.sortGroups()

	if m.currentGroupIndex >= len(m.groups) {
		m.currentGroupIndex = len(m.groups) - 1
		if m.currentGroupIndex < 0 {
			m.currentGroupIndex = 0
		}
	}
}

func (m *Mode) moveCursorToCurrent(ops BufferOps) {
	g := m.CurrentGroup()
	if g == nil {
		return
	}
	resultIndex := g.CurrentResultIndex()
	if resultIndex < 0 {
		return
	}
	tokens := ops.Tokens()
	if resultIndex < len(tokens) {
		ops.SetCursorPosition(tokens[resultIndex].Start)
	}
}

// HighlightedIndices is the union of every group's token indices.
func (m *Mode) HighlightedIndices() map[int]bool {
	out := map[int]bool{}
	for _, g := range m.groups {
		for _, idx := range g.Indices {
			out[idx] = true
		}
	}
	return out
}

// CurrentIndex is the token index the cursor's current duplicate points
// at, or -1 if there is no current group.
func (m *Mode) CurrentIndex() int {
	g := m.CurrentGroup()
	if g == nil {
		return -1
	}
	return g.CurrentResultIndex()
}

// SelectedIndices is the union of every selected group's token indices.
func (m *Mode) SelectedIndices() map[int]bool {
	out := map[int]bool{}
	for _, g := range m.groups {
		if g.Selected {
			for _, idx := range g.Indices {
				out[idx] = true
			}
		}
	}
	return out
}
