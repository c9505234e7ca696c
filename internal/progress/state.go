package progress

import (
	"maps"
	"slices"

	"github.com/abhisek/skilltree/internal/skillgraph"
)

// State is a snapshot of one user's progress. Completion and ignores are
// tracked per skill, so they apply to every node backed by that skill in
// every tree.
type State struct {
	Completed map[int]bool // skill IDs
	Ignored   map[int]bool // skill IDs
	LastNode  *int         // node ID, nil when absent
}

// NewState returns an empty progress state.
func NewState() State {
	return State{
		Completed: make(map[int]bool),
		Ignored:   make(map[int]bool),
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := NewState()
	maps.Copy(c.Completed, s.Completed)
	maps.Copy(c.Ignored, s.Ignored)
	if s.LastNode != nil {
		id := *s.LastNode
		c.LastNode = &id
	}
	return c
}

// IsDone reports whether the skill is completed.
func (s State) IsDone(skillID int) bool { return s.Completed[skillID] }

// IsIgnored reports whether the skill is ignored.
func (s State) IsIgnored(skillID int) bool { return s.Ignored[skillID] }

// CompletedIDs returns the completed skill IDs in ascending order.
func (s State) CompletedIDs() []int {
	return slices.Sorted(maps.Keys(s.Completed))
}

// IgnoredIDs returns the ignored skill IDs in ascending order.
func (s State) IgnoredIDs() []int {
	return slices.Sorted(maps.Keys(s.Ignored))
}

// ToggleDone flips the completion of node's skill and returns the new state
// with the resulting flag. Marking done records node as the last visited
// node; unmarking clears it.
func ToggleDone(s State, node skillgraph.Node) (State, bool) {
	next := s.Clone()
	if next.Completed[node.SkillID] {
		delete(next.Completed, node.SkillID)
		next.LastNode = nil
		return next, false
	}
	next.Completed[node.SkillID] = true
	id := node.ID
	next.LastNode = &id
	return next, true
}

// ToggleIgnore flips the ignore flag of node's skill and returns the new
// state with the resulting flag. Ignoring a skill also drops its completion.
func ToggleIgnore(s State, node skillgraph.Node) (State, bool) {
	next := s.Clone()
	if next.Ignored[node.SkillID] {
		delete(next.Ignored, node.SkillID)
		return next, false
	}
	next.Ignored[node.SkillID] = true
	delete(next.Completed, node.SkillID)
	return next, true
}
