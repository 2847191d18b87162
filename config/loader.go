// =============================================================================
// 📦 orgflow 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("orgflow.yaml").
//	    WithEnvPrefix("ORGFLOW").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/BaSui01/orgflow/types"
)

// DefaultEnvPrefix 环境变量默认前缀
const DefaultEnvPrefix = "ORGFLOW"

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 orgflow 的完整配置结构
type Config struct {
	// LLM 环路裁决所用的大语言模型
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Resolver 环路解析配置
	Resolver ResolverConfig `yaml:"resolver" env:"RESOLVER"`

	// Matcher 评估时的姓名匹配配置
	Matcher MatcherConfig `yaml:"matcher" env:"MATCHER"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`

	// Metrics 指标导出配置
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	// Provider 名称，仅用于日志与指标标签
	Provider string `yaml:"provider" env:"PROVIDER" validate:"required"`
	// API Key
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 基础 URL（OpenAI 兼容接口）
	BaseURL string `yaml:"base_url" env:"BASE_URL" validate:"required,url"`
	// 模型名称
	Model string `yaml:"model" env:"MODEL" validate:"required"`
	// 温度参数
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE" validate:"gte=0,lte=2"`
	// 最大补全 Token 数
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS" validate:"gt=0"`
	// Prompt Token 预算，0 表示按模型上下文推算
	PromptBudget int `yaml:"prompt_budget" env:"PROMPT_BUDGET" validate:"gte=0"`
	// 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"gt=0"`
	// 最大重试次数
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES" validate:"gte=0,lte=10"`
	// 每秒请求数，0 表示不限流
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND" validate:"gte=0"`
	// 突发请求数
	Burst int `yaml:"burst" env:"BURST" validate:"gte=0"`
	// 调用 Oracle 前是否先探测模型列表接口
	HealthCheck bool `yaml:"health_check" env:"HEALTH_CHECK"`
}

// ResolverConfig 环路解析配置
type ResolverConfig struct {
	// 最大检测/解析轮数
	MaxPasses int `yaml:"max_passes" env:"MAX_PASSES" validate:"gte=1"`
	// 单个环最多调用 Oracle 的次数
	MaxAttempts int `yaml:"max_attempts" env:"MAX_ATTEMPTS" validate:"gte=1"`
	// 同一轮内并行解析的环数
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY" validate:"gte=1"`
	// 构建前是否把姓名转为首字母大写
	TitleCase bool `yaml:"title_case" env:"TITLE_CASE"`
}

// MatcherConfig 姓名匹配配置
type MatcherConfig struct {
	// 模糊匹配阈值 (0-100]
	Threshold float64 `yaml:"threshold" env:"THRESHOLD" validate:"gt=0,lte=100"`
	// 每个真实姓名保留的模糊候选数
	FuzzyLimit int `yaml:"fuzzy_limit" env:"FUZZY_LIMIT" validate:"gte=1"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=json console"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS" validate:"min=1"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE" validate:"gte=0,lte=1"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Prometheus 指标命名空间
	Namespace string `yaml:"namespace" env:"NAMESPACE" validate:"required"`
	// 命令结束后写出 textfile 的路径，为空则不写
	TextfilePath string `yaml:"textfile_path" env:"TEXTFILE_PATH"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  DefaultEnvPrefix,
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量
func (l *Loader) Load() (*Config, error) {
	// 1. 从默认值开始
	cfg := DefaultConfig()

	// 2. 如果指定了配置文件，从文件加载
	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// 3. 从环境变量覆盖
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// 4. 运行验证器
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		// 如果是结构体，递归处理
		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔍 校验
// =============================================================================

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验结构体标签与交叉字段约束
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return types.NewError(types.ErrInvalidConfig, "config validation failed").WithCause(err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	}

	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		errs = append(errs, "telemetry.otlp_endpoint is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return types.Errorf(types.ErrInvalidConfig, "config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateConfig 可直接传给 Loader.WithValidator
func ValidateConfig(c *Config) error {
	return c.Validate()
}

// Load 按默认前缀加载并校验配置文件
func Load(path string) (*Config, error) {
	return NewLoader().WithConfigPath(path).WithValidator(ValidateConfig).Load()
}
