package tokenizer

import (
	"strings"
	"sync"
)

// Tokenizer 是统一的 token 计数接口。
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) (int, error)

	// MaxTokens 返回模型的最大上下文长度.
	MaxTokens() int

	// Name 返回分词器的名称.
	Name() string
}

// ForModel 返回模型对应的分词器：OpenAI 系模型优先使用 tiktoken，
// 编码数据无法加载（如离线环境）时退回到估算器；其余模型直接使用估算器。
func ForModel(model string) Tokenizer {
	info, ok := lookupEncoding(model)
	if !ok {
		return NewEstimatorTokenizer(model, 0)
	}
	return &fallbackTokenizer{
		primary:  newTiktokenTokenizer(model, info),
		fallback: NewEstimatorTokenizer(model, info.maxTokens),
	}
}

// fallbackTokenizer 在 primary 首次失败后永久切换到 fallback。
type fallbackTokenizer struct {
	primary  Tokenizer
	fallback Tokenizer

	mu     sync.Mutex
	failed bool
}

func (f *fallbackTokenizer) active() Tokenizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return f.fallback
	}
	return f.primary
}

func (f *fallbackTokenizer) CountTokens(text string) (int, error) {
	t := f.active()
	n, err := t.CountTokens(text)
	if err == nil || t == f.fallback {
		return n, err
	}
	f.mu.Lock()
	f.failed = true
	f.mu.Unlock()
	return f.fallback.CountTokens(text)
}

func (f *fallbackTokenizer) MaxTokens() int { return f.primary.MaxTokens() }

func (f *fallbackTokenizer) Name() string { return f.active().Name() }

// lookupEncoding 精确匹配优先，其次最长前缀匹配（"gpt-4o-2024-08-06" → "gpt-4o"）。
func lookupEncoding(model string) (encodingInfo, bool) {
	if info, ok := modelEncodings[model]; ok {
		return info, true
	}
	best := ""
	for prefix := range modelEncodings {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return encodingInfo{}, false
	}
	return modelEncodings[best], true
}
