package store

import (
	"time"
)

// Skill is a short video lesson.
type Skill struct {
	ID        int
	Title     string
	VideoURL  string
	Text      string // markdown
	Duration  int    // seconds
	CreatedAt time.Time
}

// Tree is a course: a DAG of skill nodes converging on one goal.
type Tree struct {
	ID            int
	Title         string
	Description   string
	IntroVideoURL string
	IsFree        bool
	CreatedAt     time.Time
}

// User is an identity that owns progress.
type User struct {
	ID         int
	Username   string
	Token      string
	LastNodeID *int
	CreatedAt  time.Time
}

// TreeDraft describes a tree to be written in one transaction together
// with the skills it introduces. Nodes and edges refer to each other by
// Key, which is local to the draft.
type TreeDraft struct {
	Tree   Tree
	Skills []Skill
	Nodes  []NodeDraft
	Edges  []EdgeDraft
}

// NodeDraft places a skill in a draft tree. The skill is named by SkillID
// or, when that is zero, by SkillTitle.
type NodeDraft struct {
	Key        string
	SkillID    int
	SkillTitle string
}

// EdgeDraft links two draft nodes.
type EdgeDraft struct {
	From     string
	To       string
	Priority int
	Optional bool
}
