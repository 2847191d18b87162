package orgchart

import (
	"sort"

	"github.com/BaSui01/orgflow/hierarchy"
)

// Build derives the org chart from manager assertions. See BuildFromGraph.
func Build(assertions []hierarchy.Assertion, projects map[string]string) *Chart {
	return BuildFromGraph(hierarchy.GraphFromAssertions(assertions), projects)
}

// BuildFromGraph derives every person's manager, direct reports and teammates.
// Only people with an edge of their own get an entry; a manager that never
// appears as a node is still written on its reports' entries. Missing projects
// become "". List order follows the graph's insertion order.
func BuildFromGraph(g *hierarchy.Graph, projects map[string]string) *Chart {
	names := g.Names()
	reports := g.DirectReports()

	byManager := make(map[string][]string)
	for _, name := range names {
		if m, _ := g.Manager(name); m != "" {
			byManager[m] = append(byManager[m], name)
		}
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		manager, _ := g.Manager(name)
		e := Entry{
			Name:      name,
			Manager:   manager,
			WorkingOn: projects[name],
		}
		if r := reports[name]; len(r) > 0 {
			e.DirectReports = append([]string(nil), r...)
		}
		if manager != "" {
			e.Teammates = others(byManager[manager], name)
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return &Chart{Entries: entries}
}

func others(group []string, self string) []string {
	var out []string
	for _, n := range group {
		if n != self {
			out = append(out, n)
		}
	}
	return out
}
