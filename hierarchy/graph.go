package hierarchy

import "strings"

// Graph maps each person to their single manager. Iteration follows insertion
// order so detection and building are deterministic. Cycles and managers that are
// not nodes themselves are valid states.
type Graph struct {
	order    []string
	managers map[string]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{managers: make(map[string]string)}
}

// GraphFromAssertions builds a graph from assertions. A repeated name keeps its
// first position and its last manager.
func GraphFromAssertions(assertions []Assertion) *Graph {
	g := NewGraph()
	for _, a := range assertions {
		g.Set(a.Name, a.Manager)
	}
	return g
}

// GraphFromMap builds a graph from a plain map, ordering nodes by the keys slice.
func GraphFromMap(keys []string, managers map[string]string) *Graph {
	g := NewGraph()
	for _, k := range keys {
		g.Set(k, managers[k])
	}
	return g
}

// Set adds name or overwrites its manager. An empty manager means none.
func (g *Graph) Set(name, manager string) {
	if _, ok := g.managers[name]; !ok {
		g.order = append(g.order, name)
	}
	g.managers[name] = manager
}

// Has reports whether name is a node.
func (g *Graph) Has(name string) bool {
	_, ok := g.managers[name]
	return ok
}

// Manager returns name's manager and whether one is set.
func (g *Graph) Manager(name string) (string, bool) {
	m := g.managers[name]
	return m, m != ""
}

// Names returns nodes in insertion order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.order...)
}

// Len returns the node count.
func (g *Graph) Len() int {
	return len(g.order)
}

// Clone returns an independent copy.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		order:    append([]string(nil), g.order...),
		managers: make(map[string]string, len(g.managers)),
	}
	for k, v := range g.managers {
		c.managers[k] = v
	}
	return c
}

// DirectReports returns, for every node, the nodes naming it as manager in
// insertion order. Managers that are not nodes are left out.
func (g *Graph) DirectReports() map[string][]string {
	out := make(map[string][]string)
	for _, name := range g.order {
		m := g.managers[name]
		if m == "" || !g.Has(m) {
			continue
		}
		out[m] = append(out[m], name)
	}
	return out
}

// Roots returns nodes without a manager.
func (g *Graph) Roots() []string {
	var roots []string
	for _, name := range g.order {
		if g.managers[name] == "" {
			roots = append(roots, name)
		}
	}
	return roots
}

// Cycle is a closed chain of manager links: each member's manager is the next
// member, and the last member's manager is the first.
type Cycle []string

// Contains reports whether name is a member.
func (c Cycle) Contains(name string) bool {
	for _, n := range c {
		if n == name {
			return true
		}
	}
	return false
}

// String renders the cycle as "A -> B -> A".
func (c Cycle) String() string {
	if len(c) == 0 {
		return ""
	}
	return strings.Join(c, " -> ") + " -> " + c[0]
}

// DetectCycles walks manager links from every node in insertion order and returns
// each simple cycle once. A node is visited at most once across the run, so the
// work is linear in nodes plus edges. Walks end at a root, at a manager that is not
// a node, or at a node already explained by an earlier walk.
func DetectCycles(g *Graph) []Cycle {
	visited := make(map[string]bool, len(g.order))
	var cycles []Cycle

	for _, start := range g.order {
		if visited[start] {
			continue
		}
		var path []string
		onPath := make(map[string]int)
		node := start
		for {
			if idx, ok := onPath[node]; ok {
				cycles = append(cycles, Cycle(append([]string(nil), path[idx:]...)))
				break
			}
			if visited[node] {
				break
			}
			visited[node] = true
			onPath[node] = len(path)
			path = append(path, node)

			manager := g.managers[node]
			if manager == "" || !g.Has(manager) {
				break
			}
			node = manager
		}
	}
	return cycles
}
