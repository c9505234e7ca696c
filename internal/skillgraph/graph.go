package skillgraph

import (
	"fmt"
	"hash/fnv"
	"maps"
	"slices"
	"sort"
	"strconv"
)

// Node is one occurrence of a skill inside a tree. The same skill may
// back several nodes of one tree.
type Node struct {
	ID      int
	SkillID int
	Title   string
}

// Edge states that From is a prerequisite of To. Lower Priority values are
// traversed first among the prerequisites of a node.
type Edge struct {
	ID       int
	From     int
	To       int
	Optional bool
	Priority int
}

// Graph holds a tree's nodes with precomputed adjacency indices.
// A Graph is immutable once built and safe for concurrent readers.
type Graph struct {
	nodes    []Node
	byID     map[int]int
	incoming map[int][]Edge
	outgoing map[int][]Edge
	edges    []Edge
}

// New builds a graph from a tree's node list and its edges. Edges with an
// endpoint outside the node list are kept for display but do not take part
// in adjacency queries.
func New(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes:    slices.Clone(nodes),
		byID:     make(map[int]int, len(nodes)),
		incoming: make(map[int][]Edge),
		outgoing: make(map[int][]Edge),
		edges:    slices.Clone(edges),
	}
	for i, n := range g.nodes {
		if _, dup := g.byID[n.ID]; !dup {
			g.byID[n.ID] = i
		}
	}
	for _, e := range g.edges {
		if !g.Has(e.From) || !g.Has(e.To) {
			continue
		}
		g.incoming[e.To] = append(g.incoming[e.To], e)
		g.outgoing[e.From] = append(g.outgoing[e.From], e)
	}
	// Ascending priority, then edge ID, then source node for reproducible order.
	for id := range g.incoming {
		in := g.incoming[id]
		sort.SliceStable(in, func(i, j int) bool {
			if in[i].Priority != in[j].Priority {
				return in[i].Priority < in[j].Priority
			}
			if in[i].ID != in[j].ID {
				return in[i].ID < in[j].ID
			}
			return in[i].From < in[j].From
		})
	}
	return g
}

// Has reports whether id is a member of the tree.
func (g *Graph) Has(id int) bool {
	_, ok := g.byID[id]
	return ok
}

// Node returns the node with the given ID.
func (g *Graph) Node(id int) (Node, error) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("node not found: %d", id)
	}
	return g.nodes[i], nil
}

// Nodes returns all nodes in input order.
func (g *Graph) Nodes() []Node {
	return slices.Clone(g.nodes)
}

// Edges returns all edges in input order, including edges that point outside the tree.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IncomingEdges returns the edges pointing into id, ordered the same way as PrerequisitesOf.
func (g *Graph) IncomingEdges(id int) []Edge {
	return slices.Clone(g.incoming[id])
}

// PrerequisitesOf returns the direct prerequisites of id in ascending
// priority order.
func (g *Graph) PrerequisitesOf(id int) []Node {
	in := g.incoming[id]
	result := make([]Node, 0, len(in))
	for _, e := range in {
		result = append(result, g.nodes[g.byID[e.From]])
	}
	return result
}

// Dependents returns the nodes that directly require id.
func (g *Graph) Dependents(id int) []Node {
	out := g.outgoing[id]
	result := make([]Node, 0, len(out))
	for _, e := range out {
		result = append(result, g.nodes[g.byID[e.To]])
	}
	return result
}

// GoalCandidates returns every node without an outgoing edge into the tree.
func (g *Graph) GoalCandidates() []Node {
	var result []Node
	for id, i := range g.byID {
		if len(g.outgoing[id]) == 0 {
			result = append(result, g.nodes[i])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GoalNode returns the unique node with no dependents inside the tree.
func (g *Graph) GoalNode() (Node, error) {
	candidates := g.GoalCandidates()
	switch len(candidates) {
	case 0:
		return Node{}, ErrNoGoal
	case 1:
		return candidates[0], nil
	default:
		ids := make([]int, len(candidates))
		for i, c := range candidates {
			ids[i] = c.ID
		}
		return Node{}, fmt.Errorf("%w: nodes %v", ErrMultipleGoals, ids)
	}
}

// Fingerprint identifies the graph's shape: nodes, edges and priorities.
// Two graphs with equal fingerprints produce the same sequence.
func (g *Graph) Fingerprint() string {
	h := fnv.New64a()
	ids := slices.Sorted(maps.Keys(g.byID))
	for _, id := range ids {
		fmt.Fprintf(h, "n%d;", id)
		for _, e := range g.incoming[id] {
			fmt.Fprintf(h, "e%d>%d:%d:%d;", e.From, e.To, e.Priority, e.ID)
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
