// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。所有方法对 nil 接收者安全，调用方无需判空。
type Collector struct {
	registry *prometheus.Registry

	// 层级解析指标
	cyclesDetected   prometheus.Counter
	cycleResolutions *prometheus.CounterVec
	oracleAttempts   *prometheus.CounterVec
	normalizePasses  prometheus.Histogram

	// Oracle / LLM 指标
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	// 组织架构与评估指标
	chartEntries    prometheus.Gauge
	evalCoverage    prometheus.Gauge
	evalAccuracy    prometheus.Gauge
	evalErrorsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器，指标注册到收集器私有的 Registry。
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	// 层级解析指标
	c.cyclesDetected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hierarchy_cycles_detected_total",
		Help:      "Total number of manager cycles detected across detection passes",
	})

	c.cycleResolutions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hierarchy_cycle_resolutions_total",
			Help:      "Total number of cycle resolutions by outcome",
		},
		[]string{"status"}, // resolved, failed
	)

	c.oracleAttempts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hierarchy_oracle_attempts_total",
			Help:      "Total number of oracle attempts by outcome",
		},
		[]string{"outcome"}, // ok, error, noop, unknown_manager
	)

	c.normalizePasses = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "hierarchy_normalize_passes",
		Help:      "Resolution passes needed per normalize run",
		Buckets:   []float64{0, 1, 2, 3, 5, 8},
	})

	// Oracle / LLM 指标
	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "model", "status"},
	)

	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "model"},
	)

	c.llmTokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"provider", "model", "type"}, // type: prompt, completion
	)

	// 组织架构与评估指标
	c.chartEntries = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orgchart_entries",
		Help:      "Number of entries in the last built org chart",
	})

	c.evalCoverage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "evaluation_coverage_percent",
		Help:      "Employee coverage of the last evaluation",
	})

	c.evalAccuracy = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "evaluation_manager_accuracy_percent",
		Help:      "Manager accuracy of the last evaluation",
	})

	c.evalErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluation_manager_errors_total",
			Help:      "Manager errors by type",
		},
		[]string{"type"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// Registry 返回收集器使用的 Registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// =============================================================================
// 🔁 层级解析指标记录
// =============================================================================

// RecordCyclesDetected 记录一次检测发现的环数量
func (c *Collector) RecordCyclesDetected(n int) {
	if c == nil {
		return
	}
	c.cyclesDetected.Add(float64(n))
}

// RecordCycleResolution 记录单个环的最终解析结果
func (c *Collector) RecordCycleResolution(resolved bool) {
	if c == nil {
		return
	}
	status := "resolved"
	if !resolved {
		status = "failed"
	}
	c.cycleResolutions.WithLabelValues(status).Inc()
}

// RecordOracleAttempt 记录一次 Oracle 调用结果
func (c *Collector) RecordOracleAttempt(outcome string) {
	if c == nil {
		return
	}
	c.oracleAttempts.WithLabelValues(outcome).Inc()
}

// RecordNormalize 记录一次 normalize 运行所用的解析轮数
func (c *Collector) RecordNormalize(passes int) {
	if c == nil {
		return
	}
	c.normalizePasses.Observe(float64(passes))
}

// =============================================================================
// 🤖 LLM 指标记录
// =============================================================================

// RecordLLMRequest 记录 LLM 请求
func (c *Collector) RecordLLMRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int) {
	if c == nil {
		return
	}
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
}

// =============================================================================
// 📈 组织架构与评估指标记录
// =============================================================================

// RecordChart 记录构建出的组织架构条目数
func (c *Collector) RecordChart(entries int) {
	if c == nil {
		return
	}
	c.chartEntries.Set(float64(entries))
}

// RecordEvaluation 记录一次评估结果
func (c *Collector) RecordEvaluation(coveragePct, accuracyPct float64, errorsByType map[string]int) {
	if c == nil {
		return
	}
	c.evalCoverage.Set(coveragePct)
	c.evalAccuracy.Set(accuracyPct)
	for typ, n := range errorsByType {
		c.evalErrorsTotal.WithLabelValues(typ).Add(float64(n))
	}
}

// =============================================================================
// 💾 导出
// =============================================================================

// WriteTextfile 以 node_exporter textfile 格式写出全部指标
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	c.logger.Debug("metrics written", zap.String("path", path))
	return nil
}
