package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/orgflow/hierarchy"
	"github.com/BaSui01/orgflow/llm/providers/openaicompat"
	"github.com/BaSui01/orgflow/oracle"
	"github.com/BaSui01/orgflow/orgchart"
)

// inputFlags 是 build 与 normalize 共用的输入参数
type inputFlags struct {
	managersPath string
	rolesPath    string
	titleCase    bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.managersPath, "managers", "", "JSON array of {name, manager, reason} assertions")
	cmd.Flags().StringVar(&f.rolesPath, "roles", "", "JSON array of {name, title, project, reason} records")
	cmd.Flags().BoolVar(&f.titleCase, "title-case", true, "Title-case names and managers before processing")
	_ = cmd.MarkFlagRequired("managers")
}

// load 读取断言与角色，并构建人员目录
func (f *inputFlags) load(a *app) ([]hierarchy.Assertion, *hierarchy.Directory, error) {
	assertions, err := hierarchy.LoadAssertions(f.managersPath)
	if err != nil {
		return nil, nil, err
	}
	var roles []hierarchy.Role
	if f.rolesPath != "" {
		if roles, err = hierarchy.LoadRoles(f.rolesPath); err != nil {
			return nil, nil, err
		}
	}
	if f.titleCase && a.cfg.Resolver.TitleCase {
		assertions = hierarchy.NormalizeAssertions(assertions)
		roles = hierarchy.NormalizeRoles(roles)
	}
	a.logger.Info("inputs loaded",
		zap.Int("assertions", len(assertions)),
		zap.Int("roles", len(roles)))
	return assertions, hierarchy.NewDirectory(roles), nil
}

// =============================================================================
// 🏗️ build 命令
// =============================================================================

func newBuildCmd(a *app) *cobra.Command {
	var (
		in        inputFlags
		output    string
		format    string
		normalize bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an org chart document from manager assertions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := resolveFormat(format, output)
			if err != nil {
				return err
			}

			assertions, dir, err := in.load(a)
			if err != nil {
				return err
			}

			if normalize {
				if assertions, err = a.normalize(cmd.Context(), assertions, dir, cmd); err != nil {
					return err
				}
			} else if cycles := hierarchy.DetectCycles(hierarchy.GraphFromAssertions(assertions)); len(cycles) > 0 {
				// 环形汇报链不能写入文档
				a.metrics.RecordCyclesDetected(len(cycles))
				return fmt.Errorf("%w; pass --normalize to repair them", &hierarchy.UnresolvedCycleError{Cycles: cycles})
			}

			chart := orgchart.Build(assertions, dir.Projects())
			if err := orgchart.WriteFile(output, chart, f); err != nil {
				return err
			}
			a.metrics.RecordChart(chart.Len())

			a.logger.Info("org chart written",
				zap.String("path", output),
				zap.String("format", string(f)),
				zap.Int("entries", chart.Len()))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s\n", chart.Len(), output)
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output document path")
	cmd.Flags().StringVar(&format, "format", "", "Output format: md, json or yaml (default: from extension)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Repair reporting cycles with the LLM before building")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// resolveFormat 优先使用 --format，否则按扩展名推断
func resolveFormat(flag, path string) (orgchart.Format, error) {
	if flag != "" {
		return orgchart.ParseFormat(flag)
	}
	return orgchart.FormatFromPath(path)
}

// =============================================================================
// 🔁 normalize 命令
// =============================================================================

func newNormalizeCmd(a *app) *cobra.Command {
	var (
		in     inputFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Repair reporting cycles and write the corrected assertions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			assertions, dir, err := in.load(a)
			if err != nil {
				return err
			}
			fixed, err := a.normalize(cmd.Context(), assertions, dir, cmd)
			if err != nil {
				return err
			}
			if err := hierarchy.SaveAssertions(output, fixed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d assertions to %s\n", len(fixed), output)
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output JSON path")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// normalize 用 LLM Oracle 修复管理环，并打印每轮的修正
func (a *app) normalize(ctx context.Context, assertions []hierarchy.Assertion, dir *hierarchy.Directory, cmd *cobra.Command) ([]hierarchy.Assertion, error) {
	// 无环时不需要 LLM，跳过探测
	cycles := hierarchy.DetectCycles(hierarchy.GraphFromAssertions(assertions))
	o, err := a.newOracle(ctx, len(cycles) > 0 && a.cfg.LLM.HealthCheck)
	if err != nil {
		return nil, err
	}

	n := hierarchy.NewNormalizer(o, hierarchy.Config{
		MaxPasses:   a.cfg.Resolver.MaxPasses,
		MaxAttempts: a.cfg.Resolver.MaxAttempts,
		Concurrency: a.cfg.Resolver.Concurrency,
	},
		hierarchy.WithLogger(a.logger),
		hierarchy.WithDirectory(dir),
		hierarchy.WithMetrics(a.metrics),
	)

	fixed, report, err := n.Normalize(ctx, assertions)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	for _, pass := range report.Passes {
		for _, c := range pass.Changes {
			fmt.Fprintf(out, "pass %d: %s: %s -> %s\n", pass.Pass, c.Name, orNone(c.From), orNone(c.To))
		}
	}
	fmt.Fprintf(out, "Resolved %d cycle(s) in %d pass(es)\n", report.CyclesFound(), len(report.Passes))
	return fixed, nil
}

// newOracle 基于 OpenAI 兼容接口构建 LLM Oracle，preflight 时先做健康检查
func (a *app) newOracle(ctx context.Context, preflight bool) (*oracle.LLMOracle, error) {
	llmCfg := a.cfg.LLM
	if llmCfg.APIKey == "" {
		a.logger.Warn("llm.api_key is empty; requests are sent without credentials")
	}

	provider := openaicompat.New(openaicompat.Config{
		ProviderName: llmCfg.Provider,
		APIKey:       llmCfg.APIKey,
		BaseURL:      llmCfg.BaseURL,
		DefaultModel: llmCfg.Model,
		Timeout:      llmCfg.Timeout,
	}, a.logger)

	if preflight {
		status, err := provider.HealthCheck(ctx)
		if err != nil {
			return nil, fmt.Errorf("llm health check against %s failed: %w", llmCfg.BaseURL, err)
		}
		a.logger.Info("llm endpoint reachable",
			zap.String("provider", provider.Name()),
			zap.Duration("latency", status.Latency))
	}

	oc := oracle.DefaultConfig()
	oc.Model = llmCfg.Model
	oc.Temperature = float32(llmCfg.Temperature)
	oc.MaxTokens = llmCfg.MaxTokens
	oc.PromptBudget = llmCfg.PromptBudget
	oc.Timeout = llmCfg.Timeout
	oc.RequestsPerSecond = llmCfg.RequestsPerSecond
	oc.Burst = llmCfg.Burst
	oc.Retry.MaxRetries = llmCfg.MaxRetries

	return oracle.New(provider, oc,
		oracle.WithLogger(a.logger),
		oracle.WithMetrics(a.metrics),
	)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
