package catalog

import (
	"context"
	"fmt"

	"github.com/abhisek/skilltree/internal/store"
)

// TreeWriter stores whole trees together with their skills.
type TreeWriter interface {
	Save(ctx context.Context, draft store.TreeDraft) (store.Tree, map[string]int, error)
}

// Import validates def and, in one write, upserts its skills and replaces
// any stored tree with the same title. A failed import leaves the store
// untouched.
func Import(ctx context.Context, trees TreeWriter, def *Definition) (store.Tree, error) {
	if err := def.Validate(); err != nil {
		return store.Tree{}, fmt.Errorf("tree %q: %w", def.Tree.Title, err)
	}

	draft := store.TreeDraft{
		Tree: store.Tree{
			Title:         def.Tree.Title,
			Description:   def.Tree.Description,
			IntroVideoURL: def.Tree.IntroVideoURL,
			IsFree:        def.Tree.IsFree,
		},
		Skills: make([]store.Skill, len(def.Skills)),
		Nodes:  make([]store.NodeDraft, len(def.Nodes)),
		Edges:  make([]store.EdgeDraft, len(def.Edges)),
	}
	for i, s := range def.Skills {
		draft.Skills[i] = store.Skill{
			Title:    s.Title,
			VideoURL: s.VideoURL,
			Text:     s.Text,
			Duration: s.Duration,
		}
	}
	for i, n := range def.Nodes {
		draft.Nodes[i] = store.NodeDraft{Key: n.Key, SkillTitle: n.Skill}
	}
	for i, e := range def.Edges {
		draft.Edges[i] = store.EdgeDraft{From: e.From, To: e.To, Priority: e.Priority, Optional: e.Optional}
	}

	tree, _, err := trees.Save(ctx, draft)
	if err != nil {
		return store.Tree{}, fmt.Errorf("save tree %q: %w", def.Tree.Title, err)
	}
	return tree, nil
}
