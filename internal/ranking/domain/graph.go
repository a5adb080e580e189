package domain

// DependencyGraph is a directed graph with an edge from each task to every
// task it depends on.
type DependencyGraph struct {
	order []string
	edges map[string][]string
}

// NewDependencyGraph builds the graph for a batch. Dependencies that do not
// name a task in the batch become leaf nodes. Tasks sharing an id have
// their edges merged.
func NewDependencyGraph(tasks []Task) *DependencyGraph {
	g := &DependencyGraph{edges: make(map[string][]string, len(tasks))}
	for _, t := range tasks {
		if _, seen := g.edges[t.ID]; !seen {
			g.order = append(g.order, t.ID)
			g.edges[t.ID] = nil
		}
		g.edges[t.ID] = append(g.edges[t.ID], t.Dependencies...)
	}
	return g
}

// HasCycle reports whether any dependency chain loops back on itself.
func (g *DependencyGraph) HasCycle() bool {
	return len(g.FindCycle()) > 0
}

const (
	white = iota
	gray
	black
)

// FindCycle returns one cycle as a path of ids that starts and ends on the
// same node, or nil when the graph is acyclic. Roots are visited in batch
// order so the witness is stable for a given input.
func (g *DependencyGraph) FindCycle() []string {
	color := make(map[string]int, len(g.edges))
	parent := make(map[string]string, len(g.edges))

	var cycle []string
	var visit func(u string) bool
	visit = func(u string) bool {
		color[u] = gray
		for _, v := range g.edges[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if visit(v) {
					return true
				}
			case gray:
				// back-edge u -> v closes the loop v ... u -> v
				cycle = []string{v}
				for cur := u; cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				reverse(cycle)
				return true
			}
		}
		color[u] = black
		return false
	}

	for _, id := range g.order {
		if color[id] != white {
			continue
		}
		if visit(id) {
			return cycle
		}
	}
	return nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
