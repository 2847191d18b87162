package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/orgflow/hierarchy"
	"github.com/BaSui01/orgflow/internal/metrics"
	"github.com/BaSui01/orgflow/llm"
	"github.com/BaSui01/orgflow/llm/retry"
	"github.com/BaSui01/orgflow/llm/tokenizer"
	"github.com/BaSui01/orgflow/testutil"
	"github.com/BaSui01/orgflow/testutil/fixtures"
	"github.com/BaSui01/orgflow/testutil/mocks"
	"github.com/BaSui01/orgflow/types"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 0
	cfg.Retry = retry.Policy{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
	return cfg
}

func newTestOracle(t *testing.T, provider llm.Provider, cfg Config) *LLMOracle {
	t.Helper()
	o, err := New(provider, cfg,
		WithLogger(zaptest.NewLogger(t)),
		WithTokenizer(tokenizer.NewEstimatorTokenizer("test", 128000)))
	require.NoError(t, err)
	return o
}

func cycleContext() ([]hierarchy.CycleMember, []hierarchy.Candidate) {
	members := []hierarchy.CycleMember{
		{Name: "Alice Smith", Title: "Software Engineer", Project: "Search", CurrentManager: "Bob Johnson", Reason: "mentioned in standup"},
		{Name: "Bob Johnson", Title: "Engineering Manager", Project: "Search", CurrentManager: "Alice Smith", Reason: "asked for approval"},
	}
	candidates := []hierarchy.Candidate{
		{Name: "Dana White", Title: "CEO", Project: "Leadership"},
		{Name: "Charlie Brown", Title: "Designer", Project: "Product"},
	}
	return members, candidates
}

func TestNew_RequiresProvider(t *testing.T) {
	_, err := New(nil, DefaultConfig())
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidConfig))
}

func TestNew_RejectsBadTemplate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PromptTemplate = "{{.Members"
	_, err := New(mocks.NewMockProvider(), cfg)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidConfig))
}

func TestLLMOracle_Resolve(t *testing.T) {
	provider := mocks.NewSuccessProvider(fixtures.OracleResponseFixed)
	o := newTestOracle(t, provider, testConfig())
	members, candidates := cycleContext()

	got, err := o.Resolve(context.Background(), members, candidates)
	require.NoError(t, err)
	assert.Equal(t, []hierarchy.Assertion{
		{Name: "Alice Smith", Manager: "Bob Johnson", Reason: "Alice's standups are run by Bob"},
		{Name: "Bob Johnson", Manager: "Dana White", Reason: "Bob's reviews are signed by Dana"},
	}, got)

	call := provider.GetLastCall()
	require.NotNil(t, call)
	req := call.Request
	assert.Equal(t, "gpt-4o", req.Model)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, "json_object", req.ResponseFormat.Type)
	assert.Equal(t, "resolve_manager_cycle", req.Metadata["trace_name"])
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "Name: Alice Smith")
	assert.Contains(t, req.Messages[1].Content, "- Dana White: CEO, working on Leadership")
}

func TestLLMOracle_CanonicalisesNameCase(t *testing.T) {
	provider := mocks.NewSuccessProvider(`{"user_managers":[{"name":"BOB JOHNSON","manager":"dana white","reason":"x"}]}`)
	o := newTestOracle(t, provider, testConfig())
	members, candidates := cycleContext()

	got, err := o.Resolve(context.Background(), members, candidates)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bob Johnson", got[0].Name)
	assert.Equal(t, "Dana White", got[0].Manager)
}

func TestLLMOracle_TrimsCandidatesToBudget(t *testing.T) {
	members, _ := cycleContext()
	var candidates []hierarchy.Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, hierarchy.Candidate{
			Name: fmt.Sprintf("Person %02d", i), Title: "Staff Engineer", Project: "Platform",
		})
	}

	probe := newTestOracle(t, mocks.NewMockProvider(), testConfig())
	fits, err := renderPrompt(probe.tmpl, promptData{Members: members, Candidates: candidates[:2], Omitted: 8, Schema: probe.schema})
	require.NoError(t, err)
	budget, err := probe.tokenizer.CountTokens(fits)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.PromptBudget = budget
	provider := mocks.NewSuccessProvider(fixtures.OracleResponseFixed)
	o := newTestOracle(t, provider, cfg)

	_, err = o.Resolve(context.Background(), members, candidates)
	require.NoError(t, err)

	prompt := provider.GetLastCall().Request.Messages[1].Content
	assert.Contains(t, prompt, "Person 00")
	assert.Contains(t, prompt, "Person 01")
	assert.NotContains(t, prompt, "Person 02")
	assert.Contains(t, prompt, "(8 more people were left out")
}

func TestLLMOracle_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	provider := mocks.NewMockProvider().WithCompletionFunc(func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
		if calls.Add(1) == 1 {
			return nil, &llm.Error{Code: llm.ErrRateLimited, Message: "slow down", HTTPStatus: 429, Retryable: true}
		}
		return fixtures.SimpleResponse(fixtures.OracleResponseFixed), nil
	})
	reg := metrics.NewCollector("oracle_test", zaptest.NewLogger(t))
	o, err := New(provider, testConfig(),
		WithMetrics(reg),
		WithTokenizer(tokenizer.NewEstimatorTokenizer("test", 0)))
	require.NoError(t, err)

	members, candidates := cycleContext()
	_, err = o.Resolve(context.Background(), members, candidates)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLLMOracle_NonRetryableErrorReturned(t *testing.T) {
	upstream := &llm.Error{Code: llm.ErrUnauthorized, Message: "bad key", HTTPStatus: 401}
	provider := mocks.NewErrorProvider(upstream)
	o := newTestOracle(t, provider, testConfig())
	members, candidates := cycleContext()

	_, err := o.Resolve(context.Background(), members, candidates)
	require.Error(t, err)
	var llmErr *llm.Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, llm.ErrUnauthorized, llmErr.Code)
	assert.Equal(t, 1, provider.GetCallCount())
}

func TestLLMOracle_UnparseableResponse(t *testing.T) {
	o := newTestOracle(t, mocks.NewSuccessProvider("I am not sure who manages whom."), testConfig())
	members, candidates := cycleContext()

	_, err := o.Resolve(context.Background(), members, candidates)
	assert.True(t, types.IsErrorCode(err, types.ErrOracleFailed))
}

func TestLLMOracle_RateLimiterHonoursContext(t *testing.T) {
	cfg := testConfig()
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	provider := mocks.NewSuccessProvider(fixtures.OracleResponseFixed)
	o := newTestOracle(t, provider, cfg)
	members, candidates := cycleContext()

	_, err := o.Resolve(context.Background(), members, candidates)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = o.Resolve(ctx, members, candidates)
	require.Error(t, err)
	assert.Equal(t, 1, provider.GetCallCount())
}

func TestLLMOracle_WithNormalizer(t *testing.T) {
	var assertions []hierarchy.Assertion
	require.NoError(t, json.Unmarshal([]byte(fixtures.CyclicAssertionsJSON), &assertions))
	var roles []hierarchy.Role
	require.NoError(t, json.Unmarshal([]byte(fixtures.RolesJSON), &roles))

	provider := mocks.NewSequenceProvider(fixtures.OracleResponseNoop, fixtures.OracleResponseFenced)
	o := newTestOracle(t, provider, testConfig())

	n := hierarchy.NewNormalizer(o, hierarchy.DefaultConfig(),
		hierarchy.WithDirectory(hierarchy.NewDirectory(roles)),
		hierarchy.WithLogger(zaptest.NewLogger(t)))

	out, report, err := n.Normalize(context.Background(), assertions)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.GetCallCount())
	assert.Equal(t, 1, report.CyclesFound())
	assert.Empty(t, hierarchy.DetectCycles(hierarchy.GraphFromAssertions(out)))

	managers := make(map[string]string, len(out))
	for _, a := range out {
		managers[a.Name] = a.Manager
	}
	assert.Equal(t, "Dana White", managers["Bob Johnson"])
	assert.Equal(t, "Bob Johnson", managers["Alice Smith"])

	first := provider.GetCalls()[0].Request.Messages[1].Content
	assert.Contains(t, first, "Title: Engineering Manager")
	assert.Contains(t, first, "- Dana White: CEO, working on Leadership")
}

func TestLLMOracle_RecordsTokenUsage(t *testing.T) {
	provider := mocks.NewSuccessProvider(fixtures.OracleResponseFixed).WithTokenUsage(120, 30)
	reg := metrics.NewCollector("oracle_tokens", zaptest.NewLogger(t))
	o, err := New(provider, testConfig(),
		WithMetrics(reg),
		WithTokenizer(tokenizer.NewEstimatorTokenizer("test", 128000)))
	require.NoError(t, err)

	members, candidates := cycleContext()
	_, err = o.Resolve(context.Background(), members, candidates)
	require.NoError(t, err)

	expected := `
# HELP oracle_tokens_llm_tokens_used_total Total number of tokens used
# TYPE oracle_tokens_llm_tokens_used_total counter
oracle_tokens_llm_tokens_used_total{model="gpt-4o",provider="mock",type="completion"} 30
oracle_tokens_llm_tokens_used_total{model="gpt-4o",provider="mock",type="prompt"} 120
`
	assert.NoError(t, promtestutil.GatherAndCompare(reg.Registry(), strings.NewReader(expected),
		"oracle_tokens_llm_tokens_used_total"))
}

func TestLLMOracle_ProviderDeadline(t *testing.T) {
	provider := mocks.NewSuccessProvider(fixtures.OracleResponseFixed).WithDelay(time.Second)
	o := newTestOracle(t, provider, testConfig())
	members, candidates := cycleContext()

	ctx := testutil.TestContextWithTimeout(t, 20*time.Millisecond)
	_, err := o.Resolve(ctx, members, candidates)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// 超时不属于可重试错误
	assert.Equal(t, 1, provider.GetCallCount())
	calls := provider.GetCalls()
	require.Len(t, calls, 1)
	assert.ErrorIs(t, calls[0].Error, context.DeadlineExceeded)
}

func TestLLMOracle_CancelledBeforeCall(t *testing.T) {
	cfg := testConfig()
	cfg.RequestsPerSecond = 10
	provider := mocks.NewSuccessProvider(fixtures.OracleResponseFixed)
	o := newTestOracle(t, provider, cfg)
	members, candidates := cycleContext()

	_, err := o.Resolve(testutil.CancelledContext(), members, candidates)
	require.Error(t, err)
	assert.Zero(t, provider.GetCallCount())
}

func TestLLMOracle_UnknownManagerRetried(t *testing.T) {
	var assertions []hierarchy.Assertion
	require.NoError(t, json.Unmarshal([]byte(fixtures.CyclicAssertionsJSON), &assertions))

	provider := mocks.NewSequenceProvider(fixtures.OracleResponseUnknownManager, fixtures.OracleResponseFixed)
	o := newTestOracle(t, provider, testConfig())
	n := hierarchy.NewNormalizer(o, hierarchy.DefaultConfig(), hierarchy.WithLogger(zaptest.NewLogger(t)))

	out, report, err := n.Normalize(context.Background(), assertions)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.GetCallCount())
	require.Len(t, report.Passes, 1)
	require.Len(t, report.Passes[0].Changes, 1)
	assert.Equal(t, hierarchy.Change{
		Name: "Bob Johnson", From: "Alice Smith", To: "Dana White",
		Reason: "Bob's reviews are signed by Dana",
	}, report.Passes[0].Changes[0])
	assert.Len(t, out, len(assertions))
}
