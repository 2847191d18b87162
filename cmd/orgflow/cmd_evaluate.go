package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/orgflow/evaluation"
	"github.com/BaSui01/orgflow/orgchart"
)

// =============================================================================
// 📊 evaluate 命令
// =============================================================================

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		predPath   string
		truthPath  string
		threshold  float64
		fuzzyLimit int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a predicted org chart against ground truth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// 只有文件加载失败才返回非零退出码
			pred, err := orgchart.ReadFile(predPath, orgchart.WithLogger(a.logger))
			if err != nil {
				return fmt.Errorf("load predicted chart: %w", err)
			}
			truth, err := orgchart.ReadFile(truthPath, orgchart.WithLogger(a.logger))
			if err != nil {
				return fmt.Errorf("load ground truth chart: %w", err)
			}

			mc := evaluation.MatcherConfig{
				Threshold:  a.cfg.Matcher.Threshold,
				FuzzyLimit: a.cfg.Matcher.FuzzyLimit,
			}
			if cmd.Flags().Changed("threshold") {
				mc.Threshold = threshold
			}
			if cmd.Flags().Changed("fuzzy-limit") {
				mc.FuzzyLimit = fuzzyLimit
			}

			results := evaluation.NewEvaluator(mc,
				evaluation.WithLogger(a.logger),
				evaluation.WithMetrics(a.metrics),
			).Evaluate(pred, truth)

			a.logger.Info("evaluation finished",
				zap.Float64("coverage_pct", results.Coverage.Percent),
				zap.Float64("accuracy_pct", results.Managers.Percent))

			if asJSON {
				return evaluation.WriteJSON(cmd.OutOrStdout(), results)
			}
			return evaluation.WriteReport(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVar(&predPath, "pred", "", "Predicted org chart document")
	cmd.Flags().StringVar(&truthPath, "true", "", "Ground-truth org chart document")
	cmd.Flags().Float64Var(&threshold, "threshold", evaluation.DefaultThreshold, "Fuzzy name match threshold (0-100]")
	cmd.Flags().IntVar(&fuzzyLimit, "fuzzy-limit", evaluation.DefaultFuzzyLimit, "Fuzzy candidates kept per ground-truth name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	_ = cmd.MarkFlagRequired("pred")
	_ = cmd.MarkFlagRequired("true")
	return cmd
}

// =============================================================================
// 🌳 visualize 命令
// =============================================================================

func newVisualizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "visualize <path>",
		Short: "Print an org chart document as an ASCII tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := orgchart.ReadFile(args[0], orgchart.WithLogger(a.logger))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), orgchart.RenderTree(chart))
			return err
		},
	}
}
