package evaluation

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/orgflow/internal/metrics"
	"github.com/BaSui01/orgflow/orgchart"
)

// chartOf builds a chart from name/manager pairs; "" means no manager.
func chartOf(pairs ...string) *orgchart.Chart {
	c := &orgchart.Chart{}
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Entries = append(c.Entries, orgchart.Entry{Name: pairs[i], Manager: pairs[i+1]})
	}
	return c
}

func newTestEvaluator(t *testing.T, opts ...Option) *Evaluator {
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return NewEvaluator(DefaultMatcherConfig(), opts...)
}

func TestEvaluate_PerfectMatch(t *testing.T) {
	truth := chartOf("Alice", "", "Bob", "Alice")
	pred := chartOf("Alice", "", "Bob", "Alice")

	res := newTestEvaluator(t).Evaluate(pred, truth)

	assert.Equal(t, map[string]string{"Alice": "Alice", "Bob": "Bob"}, res.Mapping())
	assert.Equal(t, Coverage{TotalGroundTruth: 2, TotalPredicted: 2, Matched: 2, Percent: 100}, res.Coverage)
	assert.Equal(t, 2, res.Managers.Correct)
	assert.Equal(t, 2, res.Managers.Total)
	assert.InDelta(t, 100, res.Managers.Percent, 1e-9)
	assert.Empty(t, res.Managers.Errors)
}

func TestEvaluate_ManagerNotInMapping(t *testing.T) {
	truth := chartOf("Alice", "", "Carol", "Bob")
	pred := chartOf("Alice", "", "Carol", "Zed")

	res := newTestEvaluator(t).Evaluate(pred, truth)

	require.Len(t, res.Managers.Errors, 1)
	assert.Equal(t, ManagerError{Employee: "Carol", ExpectedManager: "Bob", GotManager: "Zed", Type: ErrorManagerNotInMapping}, res.Managers.Errors[0])
	assert.Equal(t, 1, res.Managers.Correct)
	assert.Equal(t, 2, res.Managers.Total)
	assert.InDelta(t, 50, res.Managers.Percent, 1e-9)
}

func TestEvaluate_WrongManagerAndNullMismatch(t *testing.T) {
	truth := chartOf(
		"Alice Smith", "",
		"Bob Jones", "Alice Smith",
		"Carol White", "Alice Smith",
		"Dan Green", "Carol White",
	)
	pred := chartOf(
		"Alice Smith", "",
		"Bob Jones", "Carol White",
		"Carol White", "Alice Smith",
		"Dan Green", "",
	)

	res := newTestEvaluator(t).Evaluate(pred, truth)

	assert.InDelta(t, 100, res.Coverage.Percent, 1e-9)
	assert.Equal(t, 2, res.Managers.Correct)
	assert.Equal(t, 4, res.Managers.Total)

	byType := res.ErrorsByType()
	require.Len(t, byType[ErrorWrongManager], 1)
	assert.Equal(t, "Bob Jones", byType[ErrorWrongManager][0].Employee)
	require.Len(t, byType[ErrorNullMismatch], 1)
	assert.Equal(t, ManagerError{Employee: "Dan Green", ExpectedManager: "Carol White", Type: ErrorNullMismatch}, byType[ErrorNullMismatch][0])
}

func TestEvaluate_MapsManagerThroughFuzzyNames(t *testing.T) {
	truth := chartOf("Victor Zhou", "", "Jane Doe (she/her)", "Victor Zhou")
	pred := chartOf("Vic", "", "Jane Doe", "Vic")

	res := newTestEvaluator(t).Evaluate(pred, truth)

	assert.Equal(t, map[string]string{"Victor Zhou": "Vic", "Jane Doe (she/her)": "Jane Doe"}, res.Mapping())
	assert.Equal(t, 2, res.Managers.Correct)
	assert.Empty(t, res.Managers.Errors)
}

func TestEvaluate_PartialCoverage(t *testing.T) {
	truth := chartOf("Alice Smith", "", "Bob Jones", "Alice Smith", "Quentin Tarrant", "Alice Smith", "Yvonne Xu", "Alice Smith")
	pred := chartOf("Alice Smith", "", "Bob Jones", "Alice Smith", "Mallory Oakes", "Alice Smith")

	res := newTestEvaluator(t).Evaluate(pred, truth)

	assert.Equal(t, Coverage{TotalGroundTruth: 4, TotalPredicted: 3, Matched: 2, Percent: 50}, res.Coverage)
	assert.ElementsMatch(t, []string{"Quentin Tarrant", "Yvonne Xu"}, res.UnmatchedGroundTruth)
	assert.Equal(t, []string{"Mallory Oakes"}, res.UnmatchedPredicted)
	assert.InDelta(t, 100, res.Managers.Percent, 1e-9)
}

func TestEvaluate_EmptyCharts(t *testing.T) {
	res := newTestEvaluator(t).Evaluate(&orgchart.Chart{}, &orgchart.Chart{})
	assert.Zero(t, res.Coverage.Percent)
	assert.Zero(t, res.Managers.Percent)
	assert.Zero(t, res.Managers.Total)
}

func TestEvaluate_RecordsMetrics(t *testing.T) {
	reg := metrics.NewCollector("eval_test", zaptest.NewLogger(t))
	truth := chartOf("Alice", "", "Carol", "Bob")
	pred := chartOf("Alice", "", "Carol", "Zed")

	newTestEvaluator(t, WithMetrics(reg)).Evaluate(pred, truth)

	n, err := testutil.GatherAndCount(reg.Registry(), "eval_test_evaluation_manager_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
