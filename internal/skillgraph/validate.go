package skillgraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoGoal means every node has a dependent inside the tree.
	ErrNoGoal = errors.New("tree has no goal node")
	// ErrMultipleGoals means more than one node has no dependent inside the tree.
	ErrMultipleGoals = errors.New("tree has multiple goal nodes")
	// ErrCycle means the prerequisite edges do not form a DAG.
	ErrCycle = errors.New("prerequisite cycle")
)

// ValidationError collects every structural problem found in a tree.
type ValidationError struct {
	Problems []string
	causes   []error
}

func (e *ValidationError) Error() string {
	return "tree validation failed:\n  " + strings.Join(e.Problems, "\n  ")
}

// Unwrap exposes the sentinel causes so callers can use errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.causes
}

func (e *ValidationError) add(cause error, format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
	if cause != nil {
		e.causes = append(e.causes, cause)
	}
}

// Validate performs all structural checks on the graph.
// Returns a combined error describing all problems found, or nil if valid.
func (g *Graph) Validate() error {
	verr := &ValidationError{}

	seen := make(map[int]bool, len(g.nodes))
	for _, n := range g.nodes {
		if seen[n.ID] {
			verr.add(nil, "duplicate node ID: %d", n.ID)
		}
		seen[n.ID] = true
	}

	pairs := make(map[[2]int]bool, len(g.edges))
	for _, e := range g.edges {
		if e.From == e.To {
			verr.add(ErrCycle, "node %d requires itself", e.From)
		}
		key := [2]int{e.From, e.To}
		if pairs[key] {
			verr.add(nil, "duplicate edge %d -> %d", e.From, e.To)
		}
		pairs[key] = true
		if e.Priority < 0 {
			verr.add(nil, "edge %d -> %d: priority must be >= 0, got %d", e.From, e.To, e.Priority)
		}
	}

	if cyclic := g.cyclicNodes(); len(cyclic) > 0 {
		ids := make([]string, len(cyclic))
		for i, id := range cyclic {
			ids[i] = fmt.Sprint(id)
		}
		verr.add(ErrCycle, "cycle detected involving nodes: %s", strings.Join(ids, ", "))
	}

	if len(g.nodes) > 0 {
		if _, err := g.GoalNode(); err != nil {
			switch {
			case errors.Is(err, ErrMultipleGoals):
				verr.add(ErrMultipleGoals, "%v", err)
			default:
				verr.add(ErrNoGoal, "%v", err)
			}
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

// cyclicNodes runs Kahn's algorithm and returns the nodes left with a
// positive in-degree: the nodes on a cycle or downstream of one.
func (g *Graph) cyclicNodes() []int {
	inDegree := make(map[int]int, len(g.byID))
	for id := range g.byID {
		inDegree[id] = len(g.incoming[id])
	}

	var queue []int
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.outgoing[id] {
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	var cyclic []int
	for id, deg := range inDegree {
		if deg > 0 {
			cyclic = append(cyclic, id)
		}
	}
	sort.Ints(cyclic)
	return cyclic
}
