package skillgraph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// build creates a graph whose nodes are named by single letters. Node IDs
// are assigned in the order names are given, and each node gets its own
// skill unless skills overrides it.
func build(t *testing.T, names []string, edges [][3]any, skills map[string]int) (*Graph, map[string]int) {
	t.Helper()
	ids := make(map[string]int, len(names))
	nodes := make([]Node, 0, len(names))
	for i, name := range names {
		id := i + 1
		ids[name] = id
		skill := 100 + id
		if s, ok := skills[name]; ok {
			skill = s
		}
		nodes = append(nodes, Node{ID: id, SkillID: skill, Title: name})
	}
	var es []Edge
	for i, e := range edges {
		from, to := ids[e[0].(string)], ids[e[1].(string)]
		if from == 0 || to == 0 {
			t.Fatalf("edge %v references unknown node", e)
		}
		es = append(es, Edge{ID: i + 1, From: from, To: to, Priority: e[2].(int)})
	}
	return New(nodes, es), ids
}

func titles(seq []Node) []string {
	out := make([]string, len(seq))
	for i, n := range seq {
		out[i] = n.Title
	}
	return out
}

func TestPrerequisitesOf_PriorityOrder(t *testing.T) {
	g, ids := build(t, []string{"X", "Y", "Z", "N"}, [][3]any{
		{"X", "N", 2},
		{"Y", "N", 0},
		{"Z", "N", 1},
	}, nil)

	got := titles(g.PrerequisitesOf(ids["N"]))
	want := []string{"Y", "Z", "X"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PrerequisitesOf mismatch (-want +got):\n%s", diff)
	}
}

func TestPrerequisitesOf_TieBrokenByEdgeID(t *testing.T) {
	nodes := []Node{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}, {ID: 3, Title: "C"}}
	edges := []Edge{
		{ID: 20, From: 1, To: 3, Priority: 0},
		{ID: 10, From: 2, To: 3, Priority: 0},
	}
	g := New(nodes, edges)
	got := titles(g.PrerequisitesOf(3))
	if diff := cmp.Diff([]string{"B", "A"}, got); diff != "" {
		t.Errorf("tie-break mismatch (-want +got):\n%s", diff)
	}
}

func TestPrerequisitesOf_Leaf(t *testing.T) {
	g, ids := build(t, []string{"A", "B"}, [][3]any{{"A", "B", 0}}, nil)
	if got := g.PrerequisitesOf(ids["A"]); len(got) != 0 {
		t.Errorf("got %d prerequisites for leaf, want 0", len(got))
	}
}

func TestDependents(t *testing.T) {
	g, ids := build(t, []string{"A", "B", "C"}, [][3]any{
		{"A", "B", 0},
		{"A", "C", 0},
		{"B", "C", 1},
	}, nil)
	got := titles(g.Dependents(ids["A"]))
	if diff := cmp.Diff([]string{"B", "C"}, got); diff != "" {
		t.Errorf("Dependents mismatch (-want +got):\n%s", diff)
	}
}

func TestGoalNode(t *testing.T) {
	g, ids := build(t, []string{"A", "B", "C", "D"}, [][3]any{
		{"A", "C", 0},
		{"B", "C", 1},
		{"C", "D", 0},
	}, nil)
	goal, err := g.GoalNode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if goal.ID != ids["D"] {
		t.Errorf("got goal %q, want D", goal.Title)
	}
}

func TestGoalNode_IgnoresEdgesLeavingTree(t *testing.T) {
	nodes := []Node{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}
	edges := []Edge{
		{ID: 1, From: 1, To: 2},
		{ID: 2, From: 2, To: 99}, // target belongs to another tree
	}
	goal, err := New(nodes, edges).GoalNode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if goal.ID != 2 {
		t.Errorf("got goal %d, want 2", goal.ID)
	}
}

func TestGoalNode_Multiple(t *testing.T) {
	g, _ := build(t, []string{"A", "B", "C"}, [][3]any{{"A", "B", 0}}, nil)
	_, err := g.GoalNode()
	if !errors.Is(err, ErrMultipleGoals) {
		t.Fatalf("got %v, want ErrMultipleGoals", err)
	}
}

func TestGoalNode_None(t *testing.T) {
	g, _ := build(t, []string{"A", "B"}, [][3]any{{"A", "B", 0}, {"B", "A", 0}}, nil)
	_, err := g.GoalNode()
	if !errors.Is(err, ErrNoGoal) {
		t.Fatalf("got %v, want ErrNoGoal", err)
	}
}

func TestGoalNode_EmptyTree(t *testing.T) {
	_, err := New(nil, nil).GoalNode()
	if !errors.Is(err, ErrNoGoal) {
		t.Fatalf("got %v, want ErrNoGoal", err)
	}
}

func TestNode_NotFound(t *testing.T) {
	g, _ := build(t, []string{"A"}, nil, nil)
	if _, err := g.Node(42); err == nil {
		t.Fatal("expected error for missing node, got nil")
	}
}
