package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func graphOfPairs(pairs ...string) *Graph {
	g := NewGraph()
	for i := 0; i+1 < len(pairs); i += 2 {
		g.Set(pairs[i], pairs[i+1])
	}
	return g
}

func TestDetectCycles_Acyclic(t *testing.T) {
	g := graphOfPairs(
		"Alice", "",
		"Bob", "Alice",
		"Carol", "Alice",
		"Dave", "Bob",
	)
	assert.Empty(t, DetectCycles(g))
}

func TestDetectCycles_SelfLoop(t *testing.T) {
	g := graphOfPairs("Alice", "Alice", "Bob", "Alice")
	cycles := DetectCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, Cycle{"Alice"}, cycles[0])
	assert.Equal(t, "Alice -> Alice", cycles[0].String())
}

func TestDetectCycles_ThreeCycle(t *testing.T) {
	g := graphOfPairs("A", "B", "B", "C", "C", "A")
	cycles := DetectCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, Cycle{"A", "B", "C"}, cycles[0])
	assert.Equal(t, "A -> B -> C -> A", cycles[0].String())
}

func TestDetectCycles_TailIntoCycle(t *testing.T) {
	// X -> Y -> A -> B -> A: the tail is not part of the cycle.
	g := graphOfPairs("X", "Y", "Y", "A", "A", "B", "B", "A")
	cycles := DetectCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, Cycle{"A", "B"}, cycles[0])
}

func TestDetectCycles_DanglingManager(t *testing.T) {
	g := graphOfPairs("Alice", "Ghost", "Bob", "Alice")
	assert.Empty(t, DetectCycles(g))
}

func TestDetectCycles_DisjointCycles(t *testing.T) {
	g := graphOfPairs(
		"A", "B", "B", "A",
		"Root", "",
		"C", "D", "D", "E", "E", "C",
		"F", "F",
	)
	cycles := DetectCycles(g)
	require.Len(t, cycles, 3)
	assert.Equal(t, Cycle{"A", "B"}, cycles[0])
	assert.Equal(t, Cycle{"C", "D", "E"}, cycles[1])
	assert.Equal(t, Cycle{"F"}, cycles[2])
}

func TestDetectCycles_Empty(t *testing.T) {
	assert.Empty(t, DetectCycles(NewGraph()))
}

func TestGraph_SetKeepsFirstPosition(t *testing.T) {
	g := GraphFromAssertions([]Assertion{
		{Name: "A", Manager: "B"},
		{Name: "B"},
		{Name: "A", Manager: ""},
	})
	assert.Equal(t, []string{"A", "B"}, g.Names())
	m, ok := g.Manager("A")
	assert.False(t, ok)
	assert.Empty(t, m)
}

func TestGraph_DirectReportsAndRoots(t *testing.T) {
	g := graphOfPairs("Alice", "", "Bob", "Alice", "Carol", "Alice", "Dave", "Ghost")
	reports := g.DirectReports()
	assert.Equal(t, []string{"Bob", "Carol"}, reports["Alice"])
	_, ok := reports["Ghost"]
	assert.False(t, ok)
	assert.Equal(t, []string{"Alice"}, g.Roots())
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	g := graphOfPairs("A", "B")
	c := g.Clone()
	c.Set("A", "C")
	c.Set("D", "")
	m, _ := g.Manager("A")
	assert.Equal(t, "B", m)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 2, c.Len())
}

// Property: every reported cycle is closed, cycles are node-disjoint, and every
// node not in a reported cycle reaches a root or a dangling manager.
func TestProperty_DetectCycles_Sound(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		names := make([]string, n)
		for i := range names {
			names[i] = string(rune('A' + i))
		}
		g := NewGraph()
		for _, name := range names {
			// -1 means no manager, n means a dangling manager.
			pick := rapid.IntRange(-1, n).Draw(rt, "manager_"+name)
			switch {
			case pick < 0:
				g.Set(name, "")
			case pick == n:
				g.Set(name, "Outsider")
			default:
				g.Set(name, names[pick])
			}
		}

		cycles := DetectCycles(g)
		inCycle := make(map[string]bool)
		for _, c := range cycles {
			require.NotEmpty(rt, c)
			for i, member := range c {
				require.False(rt, inCycle[member], "cycles must be node-disjoint")
				inCycle[member] = true
				next := c[(i+1)%len(c)]
				m, _ := g.Manager(member)
				require.Equal(rt, next, m)
			}
		}

		for _, name := range names {
			if inCycle[name] {
				continue
			}
			seen := make(map[string]bool)
			node := name
			for {
				if inCycle[node] {
					break
				}
				require.False(rt, seen[node], "%s loops without a reported cycle", name)
				seen[node] = true
				m, ok := g.Manager(node)
				if !ok || !g.Has(m) {
					break
				}
				node = m
			}
		}
	})
}
