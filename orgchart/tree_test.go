package orgchart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTree(t *testing.T) {
	out := RenderTree(threePersonChart())

	assert.Contains(t, out, "Organization Chart (Root: Alice Smith)")
	assert.Contains(t, out, "Alice Smith - Leadership")
	assert.Contains(t, out, "Bob Johnson - Engineering")
	assert.Contains(t, out, "Charlie Brown - Product")
	assert.Less(t, strings.Index(out, "Bob Johnson"), strings.Index(out, "Charlie Brown"))
	assert.Equal(t, 2, strings.Count(out, strings.Repeat("=", bannerWidth)))
}

func TestRenderTree_MultipleRootsAndNoProject(t *testing.T) {
	out := RenderTree(&Chart{Entries: []Entry{
		{Name: "Ann", DirectReports: []string{"Cid"}},
		{Name: "Bo"},
		{Name: "Cid", Manager: "Ann"},
	}})
	assert.Contains(t, out, "Root: Ann")
	assert.Contains(t, out, "Root: Bo")
	assert.NotContains(t, out, "Cid -")
}

func TestRenderTree_NoRoot(t *testing.T) {
	out := RenderTree(&Chart{Entries: []Entry{{Name: "A", Manager: "A", DirectReports: []string{"A"}}}})
	assert.Equal(t, NoRootMessage+"\n", out)
}

func TestRenderTree_CycleBelowRoot(t *testing.T) {
	out := RenderTree(&Chart{Entries: []Entry{
		{Name: "Root", DirectReports: []string{"X"}},
		{Name: "X", Manager: "Root", DirectReports: []string{"Root", "X"}},
	}})
	assert.Equal(t, 1, strings.Count(out, "X"), out)
	assert.Contains(t, out, "Root: Root")
}
