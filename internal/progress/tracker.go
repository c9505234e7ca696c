package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/skilltree/internal/logging"
	"github.com/abhisek/skilltree/internal/skillgraph"
)

// ErrUnauthenticated is returned by mutations attempted without a user.
var ErrUnauthenticated = errors.New("authentication required")

// Anonymous is the user ID of a caller without an identity. It always sees
// an empty progress state and cannot toggle.
const Anonymous = 0

// TreeLoader provides read access to tree structure.
type TreeLoader interface {
	// LoadGraph returns the full node and edge set of a tree.
	LoadGraph(ctx context.Context, treeID int) (*skillgraph.Graph, error)

	// Node returns a single node by ID regardless of its tree.
	Node(ctx context.Context, nodeID int) (skillgraph.Node, error)
}

// StateStore reads and atomically updates a user's progress.
type StateStore interface {
	// State returns the user's progress snapshot.
	State(ctx context.Context, userID int) (State, error)

	// Update applies fn to the current state and persists the result as a
	// single atomic read-modify-write.
	Update(ctx context.Context, userID int, fn func(State) State) (State, error)
}

// SequenceCache stores computed sequences as node ID lists.
type SequenceCache interface {
	Get(ctx context.Context, key string) ([]int, bool, error)
	Set(ctx context.Context, key string, ids []int) error
}

// Roadmap is a user's resolved view of one tree.
type Roadmap struct {
	TreeID int
	Graph  *skillgraph.Graph
	State  State
	Result Result

	// Problem is set when the tree is structurally invalid. The roadmap is
	// then empty and carries no recommendation.
	Problem error
}

// Tracker composes tree loading, sequencing and progress state.
type Tracker struct {
	trees  TreeLoader
	states StateStore
	cache  SequenceCache
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCache sets the sequence cache.
func WithCache(c SequenceCache) Option {
	return func(t *Tracker) { t.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates a tracker over the given collaborators.
func NewTracker(trees TreeLoader, states StateStore, opts ...Option) *Tracker {
	t := &Tracker{
		trees:  trees,
		states: states,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Sequence returns the validated curriculum sequence of a tree.
func (t *Tracker) Sequence(ctx context.Context, treeID int) (*skillgraph.Graph, []skillgraph.Node, error) {
	g, err := t.trees.LoadGraph(ctx, treeID)
	if err != nil {
		return nil, nil, fmt.Errorf("load tree %d: %w", treeID, err)
	}
	if err := g.Validate(); err != nil {
		return g, nil, err
	}

	key := fmt.Sprintf("tree:%d:%s", treeID, g.Fingerprint())
	if seq, ok := t.cached(ctx, g, key); ok {
		return g, seq, nil
	}

	seq, err := skillgraph.Sequence(g)
	if err != nil {
		return g, nil, err
	}
	if t.cache != nil {
		ids := make([]int, len(seq))
		for i, n := range seq {
			ids[i] = n.ID
		}
		if err := t.cache.Set(ctx, key, ids); err != nil {
			t.logger.Warn("cache sequence", "tree", treeID, "error", err)
		}
	}
	return g, seq, nil
}

func (t *Tracker) cached(ctx context.Context, g *skillgraph.Graph, key string) ([]skillgraph.Node, bool) {
	if t.cache == nil {
		return nil, false
	}
	ids, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		t.logger.Warn("read cached sequence", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	seq := make([]skillgraph.Node, 0, len(ids))
	for _, id := range ids {
		n, err := g.Node(id)
		if err != nil {
			return nil, false
		}
		seq = append(seq, n)
	}
	return seq, true
}

// Roadmap resolves a tree for a user. Structural problems in the tree do
// not fail the call; they yield an empty roadmap with Problem set.
func (t *Tracker) Roadmap(ctx context.Context, userID, treeID int) (*Roadmap, error) {
	g, seq, err := t.Sequence(ctx, treeID)
	if g == nil {
		return nil, err
	}
	rm := &Roadmap{TreeID: treeID, Graph: g, State: NewState()}
	if err != nil {
		t.logger.Warn("tree has no usable sequence", "tree", treeID, "error", err)
		rm.Problem = err
		rm.Result = Resolve(nil, NewState())
		return rm, nil
	}

	st, err := t.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	rm.State = st
	rm.Result = Resolve(seq, st)
	return rm, nil
}

// State returns the user's progress; anonymous callers get an empty state.
func (t *Tracker) State(ctx context.Context, userID int) (State, error) {
	if userID == Anonymous {
		return NewState(), nil
	}
	st, err := t.states.State(ctx, userID)
	if err != nil {
		return State{}, fmt.Errorf("load progress for user %d: %w", userID, err)
	}
	return st, nil
}

// ToggleDone flips completion of the node's skill for the user and returns
// the new done flag.
func (t *Tracker) ToggleDone(ctx context.Context, userID, nodeID int) (bool, error) {
	return t.toggle(ctx, userID, nodeID, "done", ToggleDone)
}

// ToggleIgnore flips the ignore flag of the node's skill for the user and
// returns the new ignored flag.
func (t *Tracker) ToggleIgnore(ctx context.Context, userID, nodeID int) (bool, error) {
	return t.toggle(ctx, userID, nodeID, "ignore", ToggleIgnore)
}

func (t *Tracker) toggle(ctx context.Context, userID, nodeID int, kind string, fn func(State, skillgraph.Node) (State, bool)) (bool, error) {
	if userID == Anonymous {
		return false, ErrUnauthenticated
	}
	node, err := t.trees.Node(ctx, nodeID)
	if err != nil {
		return false, fmt.Errorf("load node %d: %w", nodeID, err)
	}

	var flag bool
	_, err = t.states.Update(ctx, userID, func(st State) State {
		next, f := fn(st, node)
		flag = f
		return next
	})
	if err != nil {
		return false, fmt.Errorf("toggle %s for node %d: %w", kind, nodeID, err)
	}
	t.logger.Debug("toggled", "kind", kind, "user", userID, "node", nodeID, "skill", node.SkillID, "value", flag)
	return flag, nil
}
