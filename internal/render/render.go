// Package render turns resolved roadmaps into the records handed to
// presentation layers: a sequence view with status flags and a payload for
// drawing the tree as a directed graph.
package render

import (
	"fmt"

	"github.com/abhisek/skilltree/internal/progress"
	"github.com/abhisek/skilltree/internal/skillgraph"
)

// Status is the single display status of a sequence row.
type Status string

const (
	StatusDone    Status = "done"
	StatusIgnored Status = "ignored"
	StatusNext    Status = "next"
	StatusSkipped Status = "skipped"
	StatusPending Status = "pending"
)

// Row is one sequence entry.
type Row struct {
	Index   int    `json:"index"`
	NodeID  int    `json:"node_id"`
	SkillID int    `json:"skill_id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Done    bool   `json:"done"`
	Ignored bool   `json:"ignored"`
	Next    bool   `json:"next"`
	Skipped bool   `json:"skipped"`
}

// Summary mirrors progress.Summary for serialization.
type Summary struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Ignored int `json:"ignored"`
	Skipped int `json:"skipped"`
	Percent int `json:"percent"`
}

// RoadmapView is the ordered curriculum of one tree for one user.
type RoadmapView struct {
	TreeID   int     `json:"tree_id"`
	Title    string  `json:"title,omitempty"`
	Position int     `json:"position"`
	Next     *Row    `json:"next"`
	Rows     []Row   `json:"sequence"`
	Summary  Summary `json:"summary"`
	Problem  string  `json:"problem,omitempty"`
}

// NodeRecord is one node of the graph-drawing payload.
type NodeRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Done    bool   `json:"done"`
	Ignored bool   `json:"ignored"`
	Next    bool   `json:"next"`
	Skipped bool   `json:"skipped"`
}

// EdgeRecord is one edge of the graph-drawing payload.
type EdgeRecord struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Optional bool   `json:"optional"`
}

// GraphPayload is the whole graph-drawing payload.
type GraphPayload struct {
	Nodes []NodeRecord `json:"nodes"`
	Edges []EdgeRecord `json:"edges"`
}

// ElementID is the drawing identifier of a node.
func ElementID(nodeID int) string {
	return fmt.Sprintf("n%d", nodeID)
}

// StatusOf collapses an item's flags into one display status. Ignored
// wins over done, done over next.
func StatusOf(it progress.Item) Status {
	switch {
	case it.Ignored:
		return StatusIgnored
	case it.Done:
		return StatusDone
	case it.Next:
		return StatusNext
	case it.Skipped:
		return StatusSkipped
	default:
		return StatusPending
	}
}

func rowOf(it progress.Item) Row {
	return Row{
		Index:   it.Index,
		NodeID:  it.Node.ID,
		SkillID: it.Node.SkillID,
		Name:    it.Node.Title,
		Status:  StatusOf(it),
		Done:    it.Done,
		Ignored: it.Ignored,
		Next:    it.Next,
		Skipped: it.Skipped,
	}
}

// Roadmap builds the sequence view of rm. title is optional.
func Roadmap(rm *progress.Roadmap, title string) RoadmapView {
	res := rm.Result
	sum := res.Summary()
	v := RoadmapView{
		TreeID:   rm.TreeID,
		Title:    title,
		Position: res.Position,
		Rows:     make([]Row, len(res.Items)),
		Summary: Summary{
			Total:   sum.Total,
			Done:    sum.Done,
			Ignored: sum.Ignored,
			Skipped: sum.Skipped,
			Percent: sum.Percent,
		},
	}
	for i, it := range res.Items {
		v.Rows[i] = rowOf(it)
		if it.Next {
			r := v.Rows[i]
			v.Next = &r
		}
	}
	if rm.Problem != nil {
		v.Problem = rm.Problem.Error()
	}
	return v
}

// Graph builds the drawing payload of rm. Every node of the tree is listed,
// including nodes outside the sequence, which carry only their done and
// ignored flags.
func Graph(rm *progress.Roadmap) GraphPayload {
	items := make(map[int]progress.Item, len(rm.Result.Items))
	for _, it := range rm.Result.Items {
		items[it.Node.ID] = it
	}

	var p GraphPayload
	p.Nodes = make([]NodeRecord, 0, rm.Graph.Len())
	for _, n := range rm.Graph.Nodes() {
		rec := NodeRecord{ID: ElementID(n.ID), Name: n.Title}
		if it, ok := items[n.ID]; ok {
			rec.Done, rec.Ignored, rec.Next, rec.Skipped = it.Done, it.Ignored, it.Next, it.Skipped
		} else {
			rec.Done = rm.State.IsDone(n.SkillID)
			rec.Ignored = rm.State.IsIgnored(n.SkillID)
		}
		p.Nodes = append(p.Nodes, rec)
	}

	p.Edges = make([]EdgeRecord, 0)
	for _, n := range rm.Graph.Nodes() {
		for _, e := range rm.Graph.IncomingEdges(n.ID) {
			p.Edges = append(p.Edges, edgeRecord(e))
		}
	}
	return p
}

func edgeRecord(e skillgraph.Edge) EdgeRecord {
	return EdgeRecord{
		Source:   ElementID(e.From),
		Target:   ElementID(e.To),
		Optional: e.Optional,
	}
}
