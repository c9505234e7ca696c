package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skilltree/internal/skillgraph"
)

var errNotFound = errors.New("not found")

type fakeTrees struct {
	graphs map[int]*skillgraph.Graph
	loads  int
}

func (f *fakeTrees) LoadGraph(_ context.Context, treeID int) (*skillgraph.Graph, error) {
	f.loads++
	g, ok := f.graphs[treeID]
	if !ok {
		return nil, errNotFound
	}
	return g, nil
}

func (f *fakeTrees) Node(_ context.Context, nodeID int) (skillgraph.Node, error) {
	for _, g := range f.graphs {
		if n, err := g.Node(nodeID); err == nil {
			return n, nil
		}
	}
	return skillgraph.Node{}, errNotFound
}

type fakeStates struct {
	mu     sync.Mutex
	states map[int]State
}

func (f *fakeStates) State(_ context.Context, userID int) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.states[userID]; ok {
		return st.Clone(), nil
	}
	return NewState(), nil
}

func (f *fakeStates) Update(_ context.Context, userID int, fn func(State) State) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.states[userID]
	if !ok {
		cur = NewState()
	}
	next := fn(cur.Clone())
	f.states[userID] = next
	return next, nil
}

type fakeCache struct {
	data map[string][]int
	sets int
	err  error
}

func (f *fakeCache) Get(_ context.Context, key string) ([]int, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	ids, ok := f.data[key]
	return ids, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, ids []int) error {
	f.sets++
	f.data[key] = ids
	return f.err
}

// endToEnd is the tree A->C(0), B->C(1), C->D(0).
func endToEnd() *skillgraph.Graph {
	nodes := []skillgraph.Node{
		{ID: 1, SkillID: 11, Title: "A"},
		{ID: 2, SkillID: 12, Title: "B"},
		{ID: 3, SkillID: 13, Title: "C"},
		{ID: 4, SkillID: 14, Title: "D"},
	}
	edges := []skillgraph.Edge{
		{ID: 1, From: 1, To: 3, Priority: 0},
		{ID: 2, From: 2, To: 3, Priority: 1},
		{ID: 3, From: 3, To: 4, Priority: 0},
	}
	return skillgraph.New(nodes, edges)
}

func newTestTracker(opts ...Option) (*Tracker, *fakeTrees, *fakeStates) {
	trees := &fakeTrees{graphs: map[int]*skillgraph.Graph{
		1: endToEnd(),
		2: skillgraph.New([]skillgraph.Node{{ID: 10, SkillID: 1}, {ID: 11, SkillID: 2}}, nil),
	}}
	states := &fakeStates{states: map[int]State{}}
	return NewTracker(trees, states, opts...), trees, states
}

func titlesOf(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Node.Title
	}
	return out
}

func TestTracker_RoadmapAnonymous(t *testing.T) {
	tr, _, _ := newTestTracker()
	rm, err := tr.Roadmap(context.Background(), Anonymous, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, titlesOf(rm.Result.Items))
	require.NotNil(t, rm.Result.Next)
	assert.Equal(t, "A", rm.Result.Next.Title)
	assert.NoError(t, rm.Problem)
}

func TestTracker_ToggleFlow(t *testing.T) {
	tr, _, _ := newTestTracker()
	ctx := context.Background()

	done, err := tr.ToggleDone(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, done)
	done, err = tr.ToggleDone(ctx, 7, 2)
	require.NoError(t, err)
	assert.True(t, done)

	rm, err := tr.Roadmap(ctx, 7, 1)
	require.NoError(t, err)
	require.NotNil(t, rm.Result.Next)
	assert.Equal(t, "C", rm.Result.Next.Title)
	assert.Equal(t, 1, rm.Result.Position)

	done, err = tr.ToggleDone(ctx, 7, 2)
	require.NoError(t, err)
	assert.False(t, done)

	st, err := tr.State(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, st.LastNode)
	assert.Equal(t, []int{11}, st.CompletedIDs())
}

func TestTracker_ToggleIgnore(t *testing.T) {
	tr, _, _ := newTestTracker()
	ctx := context.Background()

	_, err := tr.ToggleDone(ctx, 7, 1)
	require.NoError(t, err)
	ignored, err := tr.ToggleIgnore(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, ignored)

	rm, err := tr.Roadmap(ctx, 7, 1)
	require.NoError(t, err)
	a := rm.Result.Items[0]
	assert.False(t, a.Done)
	assert.True(t, a.Ignored)
	assert.False(t, a.Skipped)
}

func TestTracker_ToggleRequiresUser(t *testing.T) {
	tr, _, _ := newTestTracker()
	_, err := tr.ToggleDone(context.Background(), Anonymous, 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = tr.ToggleIgnore(context.Background(), Anonymous, 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTracker_ToggleMissingNode(t *testing.T) {
	tr, _, _ := newTestTracker()
	_, err := tr.ToggleDone(context.Background(), 7, 999)
	assert.ErrorIs(t, err, errNotFound)
}

func TestTracker_MissingTree(t *testing.T) {
	tr, _, _ := newTestTracker()
	_, err := tr.Roadmap(context.Background(), 7, 404)
	assert.ErrorIs(t, err, errNotFound)
}

func TestTracker_InvalidTreeHasNoRecommendation(t *testing.T) {
	tr, _, _ := newTestTracker()
	rm, err := tr.Roadmap(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, rm.Problem, skillgraph.ErrMultipleGoals)
	assert.Empty(t, rm.Result.Items)
	assert.Nil(t, rm.Result.Next)
}

func TestTracker_UsesCache(t *testing.T) {
	cache := &fakeCache{data: map[string][]int{}}
	tr, _, _ := newTestTracker(WithCache(cache))
	ctx := context.Background()

	_, first, err := tr.Sequence(ctx, 1)
	require.NoError(t, err)
	_, second, err := tr.Sequence(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets, "second call should be served from cache")
	assert.Len(t, cache.data, 1)
}

func TestTracker_StaleCacheEntryIgnored(t *testing.T) {
	cache := &fakeCache{data: map[string][]int{}}
	tr, trees, _ := newTestTracker(WithCache(cache))
	g := trees.graphs[1]
	cache.data[fmt.Sprintf("tree:1:%s", g.Fingerprint())] = []int{1, 99}

	_, seq, err := tr.Sequence(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, seq, 4)
}

func TestTracker_CacheErrorsAreNotFatal(t *testing.T) {
	cache := &fakeCache{data: map[string][]int{}, err: errors.New("redis down")}
	tr, _, _ := newTestTracker(WithCache(cache))

	_, seq, err := tr.Sequence(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, seq, 4)
}
