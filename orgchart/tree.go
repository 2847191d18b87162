package orgchart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
)

const bannerWidth = 80

// NoRootMessage is rendered when every entry has a manager.
const NoRootMessage = "No root employee found (no one without a manager)."

// RenderTree draws one ASCII tree per root entry. Children are sorted by name and
// a person already drawn is not drawn again, so cyclic input still terminates.
func RenderTree(c *Chart) string {
	roots := c.Roots()
	if len(roots) == 0 {
		return NoRootMessage + "\n"
	}

	byName := make(map[string]Entry, c.Len())
	for _, e := range c.Entries {
		byName[e.Name] = e
	}
	drawn := make(map[string]bool, c.Len())

	var sb strings.Builder
	rule := strings.Repeat("=", bannerWidth)
	for _, root := range roots {
		t := subtree(root, byName, drawn)
		if t == nil {
			continue
		}
		fmt.Fprintf(&sb, "\n%s\nOrganization Chart (Root: %s)\n%s\n\n", rule, root.Name, rule)
		sb.WriteString(t.String())
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func subtree(e Entry, byName map[string]Entry, drawn map[string]bool) *tree.Tree {
	if drawn[e.Name] {
		return nil
	}
	drawn[e.Name] = true

	t := tree.Root(label(e))
	reports := append([]string(nil), e.DirectReports...)
	sort.Strings(reports)
	for _, name := range reports {
		child, ok := byName[name]
		if !ok {
			continue
		}
		if st := subtree(child, byName, drawn); st != nil {
			t.Child(st)
		}
	}
	return t
}

func label(e Entry) string {
	if e.WorkingOn == "" {
		return e.Name
	}
	return e.Name + " - " + e.WorkingOn
}
