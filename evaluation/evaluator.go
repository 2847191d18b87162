package evaluation

import (
	"go.uber.org/zap"

	"github.com/BaSui01/orgflow/internal/metrics"
	"github.com/BaSui01/orgflow/orgchart"
)

// ErrorType classifies a manager miss.
type ErrorType string

const (
	ErrorNullMismatch        ErrorType = "null_mismatch"
	ErrorWrongManager        ErrorType = "wrong_manager"
	ErrorManagerNotInMapping ErrorType = "manager_not_in_mapping"
)

// ManagerError is one matched person whose manager disagrees.
type ManagerError struct {
	Employee        string    `json:"employee"`
	ExpectedManager string    `json:"expected_manager"`
	GotManager      string    `json:"got_manager"`
	Type            ErrorType `json:"type"`
}

// Coverage counts how much of the ground truth was matched.
type Coverage struct {
	TotalGroundTruth int     `json:"total_ground_truth"`
	TotalPredicted   int     `json:"total_predicted"`
	Matched          int     `json:"matched"`
	Percent          float64 `json:"coverage_pct"`
}

// ManagerAccuracy scores manager edges over matched pairs.
type ManagerAccuracy struct {
	Correct int            `json:"correct"`
	Total   int            `json:"total"`
	Percent float64        `json:"accuracy"`
	Errors  []ManagerError `json:"errors"`
}

// Results is the outcome of one evaluation run.
type Results struct {
	MatchResult
	Coverage Coverage        `json:"coverage"`
	Managers ManagerAccuracy `json:"manager_accuracy"`
}

// ErrorsByType groups manager errors, keeping their order inside each group.
func (r *Results) ErrorsByType() map[ErrorType][]ManagerError {
	out := make(map[ErrorType][]ManagerError)
	for _, e := range r.Managers.Errors {
		out[e.Type] = append(out[e.Type], e)
	}
	return out
}

// Evaluator compares a predicted chart with ground truth.
type Evaluator struct {
	config  MatcherConfig
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger.With(zap.String("component", "evaluator"))
		}
	}
}

// WithMetrics records coverage and accuracy gauges.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Evaluator) { e.metrics = c }
}

// NewEvaluator creates an evaluator.
func NewEvaluator(cfg MatcherConfig, opts ...Option) *Evaluator {
	e := &Evaluator{config: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate matches names and scores coverage and manager accuracy.
func (e *Evaluator) Evaluate(predicted, truth *orgchart.Chart) *Results {
	gtManagers := truth.Managers()
	predManagers := predicted.Managers()

	match := MatchNames(truth.Names(), predicted.Names(), e.config)
	for _, m := range match.Matches {
		e.logger.Debug("name matched",
			zap.String("ground_truth", m.GroundTruth),
			zap.String("predicted", m.Predicted),
			zap.Float64("score", m.Score))
	}

	res := &Results{MatchResult: match}
	res.Coverage = Coverage{
		TotalGroundTruth: len(gtManagers),
		TotalPredicted:   len(predManagers),
		Matched:          len(match.Matches),
		Percent:          percent(len(match.Matches), len(gtManagers)),
	}
	res.Managers = scoreManagers(match, gtManagers, predManagers)

	byType := make(map[string]int)
	for _, me := range res.Managers.Errors {
		byType[string(me.Type)]++
	}
	e.metrics.RecordEvaluation(res.Coverage.Percent, res.Managers.Percent, byType)

	e.logger.Info("evaluation complete",
		zap.Int("matched", res.Coverage.Matched),
		zap.Int("ground_truth", res.Coverage.TotalGroundTruth),
		zap.Float64("coverage_pct", res.Coverage.Percent),
		zap.Float64("manager_accuracy", res.Managers.Percent),
		zap.Int("manager_errors", len(res.Managers.Errors)))
	return res
}

// scoreManagers gives every matched pair exactly one verdict.
func scoreManagers(match MatchResult, gtManagers, predManagers map[string]string) ManagerAccuracy {
	mapping := match.Mapping()
	var acc ManagerAccuracy
	for _, m := range match.Matches {
		want := gtManagers[m.GroundTruth]
		got := predManagers[m.Predicted]
		acc.Total++

		miss := ManagerError{Employee: m.GroundTruth, ExpectedManager: want, GotManager: got}
		switch {
		case want == "" && got == "":
			acc.Correct++
			continue
		case (want == "") != (got == ""):
			miss.Type = ErrorNullMismatch
		default:
			mapped, ok := mapping[want]
			switch {
			case !ok:
				miss.Type = ErrorManagerNotInMapping
			case mapped == got:
				acc.Correct++
				continue
			default:
				miss.Type = ErrorWrongManager
			}
		}
		acc.Errors = append(acc.Errors, miss)
	}
	acc.Percent = percent(acc.Correct, acc.Total)
	return acc
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
