package orgchart

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/orgflow/testutil/fixtures"
)

func threePersonChart() *Chart {
	return &Chart{Entries: []Entry{
		{Name: "Alice Smith", DirectReports: []string{"Bob Johnson", "Charlie Brown"}, WorkingOn: "Leadership"},
		{Name: "Bob Johnson", Manager: "Alice Smith", Teammates: []string{"Charlie Brown"}, WorkingOn: "Engineering"},
		{Name: "Charlie Brown", Manager: "Alice Smith", Teammates: []string{"Bob Johnson"}, WorkingOn: "Product"},
	}}
}

func TestUnmarshalMarkdown_SingleEntry(t *testing.T) {
	chart := UnmarshalMarkdown(`# Org Structure

## Alice Smith
- **Manager:** null
- **Direct Reports:** Bob Johnson
- **Teammates:** null
- **Working on:** Leadership

---
`)
	require.Equal(t, 1, chart.Len())
	assert.Equal(t, Entry{Name: "Alice Smith", DirectReports: []string{"Bob Johnson"}, WorkingOn: "Leadership"}, chart.Entries[0])
}

func TestUnmarshalMarkdown_MultipleEntries(t *testing.T) {
	chart := UnmarshalMarkdown(fixtures.ChartMarkdown)
	if diff := cmp.Diff(threePersonChart(), chart); diff != "" {
		t.Fatalf("chart mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalMarkdown_EmptyFields(t *testing.T) {
	chart := UnmarshalMarkdown("# Org Structure\n\n## John Doe\n- **Manager:** null\n- **Direct Reports:** null\n- **Teammates:** null\n- **Working on:** \n\n---\n")
	require.Equal(t, 1, chart.Len())
	assert.Equal(t, Entry{Name: "John Doe"}, chart.Entries[0])
}

func TestUnmarshalMarkdown_Lists(t *testing.T) {
	chart := UnmarshalMarkdown(`# Org Structure

## Manager
- **Manager:** null
- **Direct Reports:** Alice, Bob, Charlie, Diana
- **Teammates:** null
- **Working on:** Management

---

## Engineer
- **Manager:** CTO
- **Direct Reports:** null
- **Teammates:** Alice , Bob,Charlie
- **Working on:** Backend

---
`)
	require.Equal(t, 2, chart.Len())
	assert.Equal(t, []string{"Alice", "Bob", "Charlie", "Diana"}, chart.Entries[0].DirectReports)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, chart.Entries[1].Teammates)
	assert.Equal(t, "CTO", chart.Entries[1].Manager)
}

func TestUnmarshalMarkdown_MissingBulletAndBadSection(t *testing.T) {
	chart := UnmarshalMarkdown(`# Org Structure

not a heading
- **Manager:** Someone

---

## Eve
- **Teammates:** Mallory
- **Working on:** Security

---
`, WithLogger(zaptest.NewLogger(t)))

	require.Equal(t, 1, chart.Len())
	assert.Equal(t, Entry{Name: "Eve", Teammates: []string{"Mallory"}, WorkingOn: "Security"}, chart.Entries[0])
}

func TestUnmarshalMarkdown_RuleInsideText(t *testing.T) {
	chart := UnmarshalMarkdown("## Ann\n- **Manager:** null\n- **Working on:** A---B\n---\n## Ben\n- **Manager:** Ann\n")
	require.Equal(t, 2, chart.Len())
	assert.Equal(t, "A---B", chart.Entries[0].WorkingOn)
	assert.Equal(t, "Ann", chart.Entries[1].Manager)
}

func TestMarshalMarkdown(t *testing.T) {
	assert.Equal(t, fixtures.ChartMarkdown, MarshalMarkdown(threePersonChart()))

	out := MarshalMarkdown(&Chart{Entries: []Entry{{Name: "John Doe"}}})
	assert.Contains(t, out, "- **Manager:** null\n")
	assert.Contains(t, out, "- **Direct Reports:** null\n")
	assert.Contains(t, out, "- **Teammates:** null\n")
	assert.Contains(t, out, "- **Working on:** \n")
	assert.Equal(t, 1, strings.Count(out, "##"))
	assert.Equal(t, 1, strings.Count(out, "---"))
}

func TestMarkdown_RoundTrip(t *testing.T) {
	chart := UnmarshalMarkdown(fixtures.ChartMarkdown)
	again := UnmarshalMarkdown(MarshalMarkdown(chart))
	if diff := cmp.Diff(chart, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func genName() gopter.Gen {
	return gen.Identifier().SuchThat(func(s string) bool { return s != nullToken })
}

func genList() gopter.Gen {
	return gen.SliceOf(genName()).Map(func(items []string) []string {
		if len(items) == 0 {
			return nil
		}
		return items
	})
}

func genEntry() gopter.Gen {
	return gopter.CombineGens(
		genName(),
		gen.OneGenOf(gen.Const(""), genName()),
		genList(),
		genList(),
		gen.AlphaString(),
	).Map(func(v []interface{}) Entry {
		return Entry{
			Name:          v[0].(string),
			Manager:       v[1].(string),
			DirectReports: v[2].([]string),
			Teammates:     v[3].([]string),
			WorkingOn:     v[4].(string),
		}
	})
}

func TestProperty_CodecRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	roundTrips := func(format Format) func(entries []Entry) bool {
		return func(entries []Entry) bool {
			if len(entries) == 0 {
				entries = nil
			}
			want := &Chart{Entries: entries}
			var sb strings.Builder
			if err := Encode(&sb, want, format); err != nil {
				t.Logf("encode %s: %v", format, err)
				return false
			}
			got, err := Decode(strings.NewReader(sb.String()), format)
			if err != nil {
				t.Logf("decode %s: %v", format, err)
				return false
			}
			if len(got.Entries) == 0 {
				got.Entries = nil
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Logf("%s mismatch (-want +got):\n%s", format, diff)
				return false
			}
			return true
		}
	}

	for _, f := range []Format{FormatMarkdown, FormatJSON, FormatYAML} {
		properties.Property(string(f)+" decode(encode(doc)) == doc", prop.ForAll(roundTrips(f), gen.SliceOf(genEntry())))
	}

	properties.TestingRun(t)
}
