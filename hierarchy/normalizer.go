package hierarchy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/orgflow/internal/metrics"
	"github.com/BaSui01/orgflow/types"
)

// Config bounds the resolution loop.
type Config struct {
	// MaxPasses is the number of detect-and-resolve rounds before remaining
	// cycles become fatal.
	MaxPasses int `json:"max_passes" yaml:"max_passes"`
	// MaxAttempts is the number of oracle calls per cycle per pass.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
	// Concurrency bounds how many cycles are resolved at once.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// DefaultConfig returns a five-pass budget with one retry per cycle.
func DefaultConfig() Config {
	return Config{
		MaxPasses:   5,
		MaxAttempts: 2,
		Concurrency: 4,
	}
}

// Report describes what a Normalize run did.
type Report struct {
	RunID  string       `json:"run_id"`
	Passes []PassReport `json:"passes"`
}

// PassReport is one detect-and-resolve round.
type PassReport struct {
	Pass    int      `json:"pass"`
	Cycles  []Cycle  `json:"cycles"`
	Changes []Change `json:"changes"`
}

// CyclesFound returns the number of cycles detected over all passes.
func (r *Report) CyclesFound() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, p := range r.Passes {
		n += len(p.Cycles)
	}
	return n
}

// Normalizer repairs cycles in a set of manager assertions.
type Normalizer struct {
	oracle    Oracle
	directory *Directory
	config    Config
	logger    *zap.Logger
	metrics   *metrics.Collector
	tracer    trace.Tracer
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger.With(zap.String("component", "normalizer"))
		}
	}
}

// WithDirectory sets the people directory used for oracle context.
func WithDirectory(d *Directory) Option {
	return func(n *Normalizer) { n.directory = d }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(n *Normalizer) { n.metrics = c }
}

// NewNormalizer creates a normalizer around oracle. Non-positive config values fall
// back to DefaultConfig.
func NewNormalizer(oracle Oracle, cfg Config, opts ...Option) *Normalizer {
	def := DefaultConfig()
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = def.MaxPasses
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	n := &Normalizer{
		oracle:    oracle,
		directory: NewDirectory(nil),
		config:    cfg,
		logger:    zap.NewNop(),
		tracer:    otel.Tracer("github.com/BaSui01/orgflow/hierarchy"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type cycleResult struct {
	updated []Assertion
	changes []Change
}

// Normalize detects cycles, asks the oracle to break each one, merges the
// corrections and repeats until the graph is acyclic. Only cycle members are
// rewritten; everyone else is returned untouched, in input order. When cycles
// remain after the pass budget the error is an *UnresolvedCycleError.
func (n *Normalizer) Normalize(ctx context.Context, assertions []Assertion) ([]Assertion, *Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := n.logger.With(zap.String("run_id", report.RunID))

	ctx, span := n.tracer.Start(ctx, "hierarchy.Normalize", trace.WithAttributes(
		attribute.String("run_id", report.RunID),
		attribute.Int("people", len(assertions)),
	))
	defer span.End()

	order, people := indexAssertions(assertions)
	known := func(name string) bool {
		_, ok := people[name]
		return ok || n.directory.Has(name)
	}

	for pass := 1; ; pass++ {
		cycles := DetectCycles(graphOf(order, people))
		n.metrics.RecordCyclesDetected(len(cycles))

		if len(cycles) == 0 {
			n.metrics.RecordNormalize(pass - 1)
			logger.Info("manager hierarchy is acyclic",
				zap.Int("people", len(order)),
				zap.Int("passes", pass-1),
				zap.Int("cycles_resolved", report.CyclesFound()))
			return flatten(order, people), report, nil
		}

		for i, c := range cycles {
			logger.Info("cycle detected",
				zap.Int("pass", pass),
				zap.Int("cycle", i+1),
				zap.String("chain", c.String()))
		}

		if pass > n.config.MaxPasses {
			err := &UnresolvedCycleError{Cycles: cycles, Passes: n.config.MaxPasses}
			span.RecordError(err)
			span.SetStatus(codes.Error, "unresolved cycles")
			logger.Error("pass budget exhausted", zap.Error(err))
			return nil, report, err
		}

		results, err := n.resolvePass(ctx, logger, cycles, order, people, known)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cycle resolution failed")
			return nil, report, err
		}

		pr := PassReport{Pass: pass, Cycles: cycles}
		for _, res := range results {
			for _, a := range res.updated {
				people[a.Name] = a
			}
			pr.Changes = append(pr.Changes, res.changes...)
		}
		report.Passes = append(report.Passes, pr)
	}
}

// resolvePass resolves every cycle of one pass. Cycles of a functional graph never
// share a node, so each worker only reads people and returns its own result; the
// caller merges results after all workers finish.
func (n *Normalizer) resolvePass(ctx context.Context, logger *zap.Logger, cycles []Cycle, order []string, people map[string]Assertion, known func(string) bool) ([]cycleResult, error) {
	results := make([]cycleResult, len(cycles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.config.Concurrency)
	for i, c := range cycles {
		g.Go(func() error {
			res, err := n.resolveCycle(gctx, logger, c, order, people, known)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (n *Normalizer) resolveCycle(ctx context.Context, logger *zap.Logger, cycle Cycle, order []string, people map[string]Assertion, known func(string) bool) (cycleResult, error) {
	ctx, span := n.tracer.Start(ctx, "hierarchy.ResolveCycle", trace.WithAttributes(
		attribute.String("cycle", cycle.String()),
		attribute.Int("size", len(cycle)),
	))
	defer span.End()

	members := make([]CycleMember, 0, len(cycle))
	for _, name := range cycle {
		a := people[name]
		members = append(members, CycleMember{
			Name:           name,
			Title:          n.directory.Title(name),
			Project:        n.directory.Project(name),
			CurrentManager: a.Manager,
			Reason:         a.Reason,
		})
	}
	candidates := make([]Candidate, 0, len(order))
	for _, name := range order {
		if cycle.Contains(name) {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:    name,
			Title:   n.directory.Title(name),
			Project: n.directory.Project(name),
		})
	}

	var lastErr error
	attempts := 0
	for attempts < n.config.MaxAttempts {
		attempts++
		proposed, err := n.oracle.Resolve(ctx, members, candidates)
		if err != nil {
			n.metrics.RecordOracleAttempt("error")
			lastErr = types.NewError(types.ErrOracleFailed, "oracle call failed").WithCause(err)
			logger.Warn("oracle call failed",
				zap.String("cycle", cycle.String()),
				zap.Int("attempt", attempts),
				zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		updated, changes, ignored, err := applyResolution(cycle, people, known, proposed)
		if len(ignored) > 0 {
			logger.Warn("oracle answered for people outside the cycle",
				zap.String("cycle", cycle.String()),
				zap.Strings("ignored", ignored))
		}
		if err != nil {
			n.metrics.RecordOracleAttempt(attemptOutcome(err))
			lastErr = err
			logger.Warn("oracle resolution rejected",
				zap.String("cycle", cycle.String()),
				zap.Int("attempt", attempts),
				zap.Error(err))
			continue
		}

		n.metrics.RecordOracleAttempt("ok")
		n.metrics.RecordCycleResolution(true)
		for _, ch := range changes {
			logger.Info("manager reassigned",
				zap.String("name", ch.Name),
				zap.String("from", displayManager(ch.From)),
				zap.String("to", displayManager(ch.To)),
				zap.String("reason", ch.Reason))
		}
		return cycleResult{updated: updated, changes: changes}, nil
	}

	n.metrics.RecordCycleResolution(false)
	err := &ResolutionError{Cycle: cycle, Attempts: attempts, Err: lastErr}
	span.RecordError(err)
	span.SetStatus(codes.Error, "cycle not resolved")
	return cycleResult{}, err
}

func attemptOutcome(err error) string {
	var te *types.Error
	if !errors.As(err, &te) {
		return "error"
	}
	switch te.Code {
	case types.ErrOracleNoop:
		return "noop"
	case types.ErrOracleUnknownManager:
		return "unknown_manager"
	default:
		return "error"
	}
}

func displayManager(m string) string {
	if m == "" {
		return "null"
	}
	return m
}

// indexAssertions keeps the first position and the last value of each name.
func indexAssertions(assertions []Assertion) ([]string, map[string]Assertion) {
	order := make([]string, 0, len(assertions))
	people := make(map[string]Assertion, len(assertions))
	for _, a := range assertions {
		if _, ok := people[a.Name]; !ok {
			order = append(order, a.Name)
		}
		people[a.Name] = a
	}
	return order, people
}

func graphOf(order []string, people map[string]Assertion) *Graph {
	g := NewGraph()
	for _, name := range order {
		g.Set(name, people[name].Manager)
	}
	return g
}

func flatten(order []string, people map[string]Assertion) []Assertion {
	out := make([]Assertion, 0, len(order))
	for _, name := range order {
		out = append(out, people[name])
	}
	return out
}
