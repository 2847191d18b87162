package oracle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/orgflow/hierarchy"
	"github.com/BaSui01/orgflow/internal/metrics"
	"github.com/BaSui01/orgflow/llm"
	"github.com/BaSui01/orgflow/llm/retry"
	"github.com/BaSui01/orgflow/llm/tokenizer"
	"github.com/BaSui01/orgflow/types"
)

const systemPrompt = "You repair company reporting hierarchies. Answer with JSON only."

// Config LLM Oracle 配置
type Config struct {
	Model       string  `json:"model" yaml:"model"`
	Temperature float32 `json:"temperature" yaml:"temperature"`
	// MaxTokens 限制补全长度
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
	// PromptBudget 限制 prompt 的 token 数，0 表示模型上下文减去 MaxTokens
	PromptBudget int `json:"prompt_budget" yaml:"prompt_budget"`
	// Timeout 单次调用超时
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// RequestsPerSecond 对上游的限流速率，<= 0 表示不限流
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
	// Retry 对可重试的上游错误做退避重试
	Retry retry.Policy `json:"retry" yaml:"retry"`
	// PromptTemplate 为空时使用 DefaultPromptTemplate
	PromptTemplate string `json:"prompt_template,omitempty" yaml:"prompt_template,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Model:             "gpt-4o",
		Temperature:       0,
		MaxTokens:         2048,
		Timeout:           120 * time.Second,
		RequestsPerSecond: 2,
		Burst:             1,
		Retry:             retry.DefaultPolicy(),
		PromptTemplate:    DefaultPromptTemplate,
	}
}

// LLMOracle 通过大语言模型裁决管理环
type LLMOracle struct {
	provider  llm.Provider
	config    Config
	tmpl      *template.Template
	schema    string
	tokenizer tokenizer.Tokenizer
	limiter   *rate.Limiter
	retryer   *retry.Retryer
	validate  *validator.Validate
	metrics   *metrics.Collector
	logger    *zap.Logger
	tracer    trace.Tracer
}

// Option 配置 LLMOracle
type Option func(*LLMOracle)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(o *LLMOracle) {
		if logger != nil {
			o.logger = logger.With(zap.String("component", "oracle"))
		}
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(c *metrics.Collector) Option {
	return func(o *LLMOracle) { o.metrics = c }
}

// WithTokenizer 覆盖按模型选择的分词器
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(o *LLMOracle) { o.tokenizer = t }
}

// New 创建 LLM Oracle
func New(provider llm.Provider, cfg Config, opts ...Option) (*LLMOracle, error) {
	if provider == nil {
		return nil, types.NewError(types.ErrInvalidConfig, "oracle requires an llm provider")
	}
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	tmpl, err := parsePromptTemplate(cfg.PromptTemplate)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidConfig, "invalid prompt template").WithCause(err)
	}
	schema, err := responseSchema()
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "build response schema").WithCause(err)
	}

	o := &LLMOracle{
		provider: provider,
		config:   cfg,
		tmpl:     tmpl,
		schema:   schema,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("github.com/BaSui01/orgflow/oracle"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tokenizer == nil {
		o.tokenizer = tokenizer.ForModel(cfg.Model)
	}
	if cfg.RequestsPerSecond > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	o.retryer = retry.New(cfg.Retry, o.logger)
	return o, nil
}

// Resolve 实现 hierarchy.Oracle
func (o *LLMOracle) Resolve(ctx context.Context, members []hierarchy.CycleMember, candidates []hierarchy.Candidate) ([]hierarchy.Assertion, error) {
	ctx, span := o.tracer.Start(ctx, "oracle.Resolve", trace.WithAttributes(
		attribute.String("llm.provider", o.provider.Name()),
		attribute.String("llm.model", o.config.Model),
		attribute.Int("cycle.size", len(members)),
		attribute.Int("candidates", len(candidates)),
	))
	defer span.End()

	prompt, kept, err := o.buildPrompt(members, candidates)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if kept < len(candidates) {
		o.logger.Warn("candidate list trimmed to fit prompt budget",
			zap.Int("kept", kept),
			zap.Int("total", len(candidates)))
	}
	span.SetAttributes(attribute.Int("candidates.kept", kept))

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("oracle rate limiter: %w", err)
		}
	}

	req := &llm.ChatRequest{
		Model: o.config.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature:    o.config.Temperature,
		MaxTokens:      o.config.MaxTokens,
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
		Timeout:        o.config.Timeout,
		Metadata:       map[string]string{"trace_name": "resolve_manager_cycle"},
	}

	resp, err := retry.Do(ctx, o.retryer, func(ctx context.Context) (*llm.ChatResponse, error) {
		return o.complete(ctx, req)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return nil, err
	}

	content, err := llm.FirstContent(resp)
	if err != nil {
		span.RecordError(err)
		return nil, types.NewError(types.ErrOracleFailed, "empty oracle response").WithCause(err)
	}

	res, err := parseResolution(content, o.validate)
	if err != nil {
		o.logger.Debug("unparseable oracle response", zap.String("content", content), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparseable response")
		return nil, types.NewError(types.ErrOracleFailed, "unparseable oracle response").WithCause(err)
	}

	return toAssertions(res, knownNames(members, candidates)), nil
}

func (o *LLMOracle) complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	start := time.Now()
	resp, err := o.provider.Completion(ctx, req)
	duration := time.Since(start)

	status := "success"
	var promptTokens, completionTokens int
	if err != nil {
		status = "error"
		var llmErr *llm.Error
		if errors.As(err, &llmErr) {
			status = strings.ToLower(string(llmErr.Code))
		}
	} else if resp != nil {
		promptTokens = resp.Usage.PromptTokens
		completionTokens = resp.Usage.CompletionTokens
	}
	o.metrics.RecordLLMRequest(o.provider.Name(), o.config.Model, status, duration, promptTokens, completionTokens)

	o.logger.Debug("oracle completion",
		zap.String("status", status),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", promptTokens),
		zap.Int("completion_tokens", completionTokens))
	return resp, err
}

// buildPrompt 渲染 prompt；超出预算时二分查找可保留的最多候选人数
func (o *LLMOracle) buildPrompt(members []hierarchy.CycleMember, candidates []hierarchy.Candidate) (string, int, error) {
	render := func(k int) (string, int, error) {
		prompt, err := renderPrompt(o.tmpl, promptData{
			Members:    members,
			Candidates: candidates[:k],
			Omitted:    len(candidates) - k,
			Schema:     o.schema,
		})
		if err != nil {
			return "", 0, types.NewError(types.ErrInternalError, "render oracle prompt").WithCause(err)
		}
		n, err := o.tokenizer.CountTokens(prompt)
		if err != nil {
			return "", 0, types.NewError(types.ErrInternalError, "count prompt tokens").WithCause(err)
		}
		return prompt, n, nil
	}

	budget := o.promptBudget()
	prompt, n, err := render(len(candidates))
	if err != nil || n <= budget {
		return prompt, len(candidates), err
	}

	// 保留数 k 单调：k 越大 prompt 越长
	var renderErr error
	k := sort.Search(len(candidates), func(k int) bool {
		_, n, err := render(k + 1)
		if err != nil {
			renderErr = err
			return true
		}
		return n > budget
	})
	if renderErr != nil {
		return "", 0, renderErr
	}
	prompt, n, err = render(k)
	if err != nil {
		return "", 0, err
	}
	if n > budget {
		o.logger.Warn("cycle context alone exceeds prompt budget",
			zap.Int("tokens", n),
			zap.Int("budget", budget))
	}
	return prompt, k, nil
}

func (o *LLMOracle) promptBudget() int {
	if o.config.PromptBudget > 0 {
		return o.config.PromptBudget
	}
	budget := o.tokenizer.MaxTokens() - o.config.MaxTokens
	if budget <= 0 {
		return o.tokenizer.MaxTokens()
	}
	return budget
}

func knownNames(members []hierarchy.CycleMember, candidates []hierarchy.Candidate) map[string]string {
	known := make(map[string]string, len(members)+len(candidates))
	for _, c := range candidates {
		known[strings.ToLower(c.Name)] = c.Name
	}
	// 环内成员优先
	for _, m := range members {
		known[strings.ToLower(m.Name)] = m.Name
	}
	return known
}

var _ hierarchy.Oracle = (*LLMOracle)(nil)
