// =============================================================================
// orgflow 主入口
// =============================================================================
// 组织架构整理与评估命令行
//
// 使用方法:
//
//	orgflow build --managers managers.json --roles roles.json -o org.md --normalize
//	orgflow normalize --managers managers.json --roles roles.json -o fixed.json
//	orgflow evaluate --pred predicted.md --true truth.md
//	orgflow visualize org.md
//	orgflow version
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/orgflow/config"
	"github.com/BaSui01/orgflow/internal/metrics"
	"github.com/BaSui01/orgflow/internal/telemetry"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run 执行一次命令并返回退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app 保存一次命令运行期间共享的依赖
type app struct {
	configPath string
	envFile    string
	logLevel   string

	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Collector
	otel    *telemetry.Providers
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "orgflow",
		Short: "Build, repair and evaluate org charts from manager assertions",
		Long: `orgflow turns per-person manager assertions into an org chart document.
Reporting cycles are repaired with an LLM, and predicted charts can be scored
against a ground-truth chart.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (YAML)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Dotenv file loaded before the config")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	root.AddCommand(
		newBuildCmd(a),
		newNormalizeCmd(a),
		newEvaluateCmd(a),
		newVisualizeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup 加载 .env 与配置，初始化日志、指标与遥测
func (a *app) setup(cmd *cobra.Command) error {
	if a.envFile != "" {
		// 已存在的进程环境变量优先
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.NewLoader().WithConfigPath(a.configPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	a.logger = initLogger(cfg.Log)
	a.metrics = metrics.NewCollector(cfg.Metrics.Namespace, a.logger)

	a.otel, err = telemetry.Init(cmd.Context(), cfg.Telemetry, a.logger,
		telemetry.WithVersion(Version),
		telemetry.WithCommand(cmd.Name()),
	)
	if err != nil {
		a.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	a.logger.Debug("orgflow starting",
		zap.String("command", cmd.Name()),
		zap.String("version", Version),
		zap.String("config", a.configPath),
	)
	return nil
}

// close 刷新遥测、写出指标文件并同步日志
func (a *app) close() {
	if a.cfg == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", zap.Error(err))
	}

	// 指标导出失败不影响命令结果
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
		a.logger.Error("metrics textfile not written", zap.Error(err))
	}

	_ = a.logger.Sync()
}

// =============================================================================
// 📋 版本
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// 不需要配置与日志
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "orgflow %s\n", Version)
			fmt.Fprintf(out, "  Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
		},
	}
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	// 解析日志级别
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	// 配置编码器
	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Format == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
