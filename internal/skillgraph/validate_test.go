package skillgraph

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Valid(t *testing.T) {
	g, _ := build(t, []string{"A", "B", "C", "D"}, [][3]any{
		{"A", "C", 0},
		{"B", "C", 1},
		{"C", "D", 0},
	}, nil)
	if err := g.Validate(); err != nil {
		t.Fatalf("expected valid graph, got: %v", err)
	}
}

func TestValidate_Empty(t *testing.T) {
	if err := New(nil, nil).Validate(); err != nil {
		t.Fatalf("expected empty graph to be valid, got: %v", err)
	}
}

func TestValidate_DuplicateNodeID(t *testing.T) {
	g := New([]Node{{ID: 1}, {ID: 1}}, nil)
	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for duplicate node ID")
	}
	if !strings.Contains(err.Error(), "duplicate node ID") {
		t.Errorf("error should mention duplicate node ID, got: %v", err)
	}
}

func TestValidate_DuplicateEdge(t *testing.T) {
	g := New([]Node{{ID: 1}, {ID: 2}}, []Edge{
		{ID: 1, From: 1, To: 2},
		{ID: 2, From: 1, To: 2, Priority: 3},
	})
	err := g.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate edge 1 -> 2") {
		t.Errorf("expected duplicate edge error, got: %v", err)
	}
}

func TestValidate_Cycle(t *testing.T) {
	g, _ := build(t, []string{"A", "B", "C", "G"}, [][3]any{
		{"A", "B", 0},
		{"B", "C", 0},
		{"C", "A", 0},
		{"C", "G", 0},
	}, nil)
	err := g.Validate()
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("got %v, want ErrCycle", err)
	}
	if !strings.Contains(err.Error(), "cycle detected involving nodes: 1, 2, 3, 4") {
		t.Errorf("error should list cycle nodes, got: %v", err)
	}
}

func TestValidate_SelfLoop(t *testing.T) {
	g := New([]Node{{ID: 1}, {ID: 2}}, []Edge{
		{ID: 1, From: 1, To: 1},
		{ID: 2, From: 1, To: 2},
	})
	err := g.Validate()
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("got %v, want ErrCycle", err)
	}
	if !strings.Contains(err.Error(), "node 1 requires itself") {
		t.Errorf("error should mention self loop, got: %v", err)
	}
}

func TestValidate_MultipleGoals(t *testing.T) {
	g, _ := build(t, []string{"A", "B", "C"}, [][3]any{{"A", "B", 0}}, nil)
	err := g.Validate()
	if !errors.Is(err, ErrMultipleGoals) {
		t.Fatalf("got %v, want ErrMultipleGoals", err)
	}
	if errors.Is(err, ErrCycle) {
		t.Errorf("acyclic graph reported as cyclic: %v", err)
	}
}

func TestValidate_NoGoal(t *testing.T) {
	g, _ := build(t, []string{"A", "B"}, [][3]any{{"A", "B", 0}, {"B", "A", 1}}, nil)
	err := g.Validate()
	if !errors.Is(err, ErrNoGoal) {
		t.Errorf("got %v, want ErrNoGoal", err)
	}
	if !errors.Is(err, ErrCycle) {
		t.Errorf("got %v, want ErrCycle", err)
	}
}

func TestValidate_NegativePriority(t *testing.T) {
	g := New([]Node{{ID: 1}, {ID: 2}}, []Edge{{ID: 1, From: 1, To: 2, Priority: -1}})
	err := g.Validate()
	if err == nil || !strings.Contains(err.Error(), "priority must be >= 0") {
		t.Errorf("expected priority error, got: %v", err)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	g := New([]Node{{ID: 1}, {ID: 1}, {ID: 2}, {ID: 3}}, []Edge{{ID: 1, From: 1, To: 2}})
	err := g.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %T, want *ValidationError", err)
	}
	if len(verr.Problems) != 2 {
		t.Errorf("got %d problems, want 2: %v", len(verr.Problems), verr.Problems)
	}
}
