// =============================================================================
// 📦 orgflow 默认配置
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		LLM:       DefaultLLMConfig(),
		Resolver:  DefaultResolverConfig(),
		Matcher:   DefaultMatcherConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// DefaultLLMConfig 返回默认 LLM 配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:          "openai",
		BaseURL:           "https://api.openai.com",
		Model:             "gpt-4o",
		Temperature:       0,
		MaxTokens:         2048,
		Timeout:           120 * time.Second,
		MaxRetries:        2,
		RequestsPerSecond: 2,
		Burst:             1,
		HealthCheck:       true,
	}
}

// DefaultResolverConfig 返回默认环路解析配置
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		MaxPasses:   5,
		MaxAttempts: 2,
		Concurrency: 4,
		TitleCase:   true,
	}
}

// DefaultMatcherConfig 返回默认姓名匹配配置
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		Threshold:  80,
		FuzzyLimit: 3,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "orgflow",
		SampleRate:   0.1,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "orgflow",
	}
}
