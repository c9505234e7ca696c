package skillgraph

// frame is one pending visit on the traversal stack. next is the index of
// the next prerequisite to descend into.
type frame struct {
	id      int
	prereqs []Node
	next    int
}

// Sequence returns the curriculum order of g: a post-order depth-first walk
// from the goal node, descending into prerequisites in ascending priority.
// Each node appears once, after all of its prerequisites; nodes that are not
// prerequisites of the goal are left out. The goal is always last.
//
// If the goal cannot be resolved the sequence is empty and the goal error is
// returned.
func Sequence(g *Graph) ([]Node, error) {
	goal, err := g.GoalNode()
	if err != nil {
		return nil, err
	}
	seq, _ := walk(g, goal.ID, make(map[int]bool, g.Len()))
	return seq, nil
}

// walk runs the post-order traversal from root using an explicit stack.
// It takes ownership of visited and hands it back with every node it marked.
func walk(g *Graph, root int, visited map[int]bool) ([]Node, map[int]bool) {
	var seq []Node
	if visited[root] {
		return seq, visited
	}
	visited[root] = true
	stack := []*frame{{id: root, prereqs: g.PrerequisitesOf(root)}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.prereqs) {
			p := top.prereqs[top.next]
			top.next++
			if visited[p.ID] {
				continue
			}
			visited[p.ID] = true
			stack = append(stack, &frame{id: p.ID, prereqs: g.PrerequisitesOf(p.ID)})
			continue
		}
		stack = stack[:len(stack)-1]
		n, _ := g.Node(top.id)
		seq = append(seq, n)
	}
	return seq, visited
}

// IndexOf returns the position of node id in seq, or -1.
func IndexOf(seq []Node, id int) int {
	for i, n := range seq {
		if n.ID == id {
			return i
		}
	}
	return -1
}
