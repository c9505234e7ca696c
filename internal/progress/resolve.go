package progress

import (
	"github.com/abhisek/skilltree/internal/skillgraph"
)

// BeforeStart is the position of a user who has not started a sequence.
const BeforeStart = -1

// Item is one sequence entry with the user's status flags.
type Item struct {
	Node    skillgraph.Node
	Index   int
	Done    bool
	Ignored bool
	Next    bool
	Skipped bool
}

// Result is the resolved view of a sequence for one user.
type Result struct {
	Items    []Item
	Position int
	Next     *skillgraph.Node
}

// Summary counts the statuses in a result.
type Summary struct {
	Total   int
	Done    int
	Ignored int
	Skipped int
	Percent int
}

// Resolve derives the user's position, the next node to present and the
// per-node flags. It has no side effects and does not modify its inputs.
func Resolve(seq []skillgraph.Node, st State) Result {
	res := Result{
		Items:    make([]Item, len(seq)),
		Position: position(seq, st),
	}

	next := -1
	for i := res.Position + 1; i < len(seq); i++ {
		if !st.Completed[seq[i].SkillID] {
			next = i
			break
		}
	}
	if next >= 0 {
		n := seq[next]
		res.Next = &n
	}

	for i, n := range seq {
		it := Item{
			Node:    n,
			Index:   i,
			Done:    st.Completed[n.SkillID],
			Ignored: st.Ignored[n.SkillID],
			Next:    i == next,
		}
		it.Skipped = !it.Done && !it.Ignored && !it.Next && i <= res.Position
		res.Items[i] = it
	}
	return res
}

// position is the index of the last visited node when it is part of seq,
// otherwise the index of the last completed node, otherwise BeforeStart.
func position(seq []skillgraph.Node, st State) int {
	if st.LastNode != nil {
		if i := skillgraph.IndexOf(seq, *st.LastNode); i >= 0 {
			return i
		}
	}
	for i := len(seq) - 1; i >= 0; i-- {
		if st.Completed[seq[i].SkillID] {
			return i
		}
	}
	return BeforeStart
}

// Finished reports whether nothing is left to recommend.
func (r Result) Finished() bool {
	return r.Next == nil
}

// Summary counts done, ignored and skipped items. Percent is the share of
// non-ignored items that are done.
func (r Result) Summary() Summary {
	s := Summary{Total: len(r.Items)}
	for _, it := range r.Items {
		switch {
		case it.Ignored:
			s.Ignored++
		case it.Done:
			s.Done++
		case it.Skipped:
			s.Skipped++
		}
	}
	if active := s.Total - s.Ignored; active > 0 {
		s.Percent = s.Done * 100 / active
	}
	return s
}
