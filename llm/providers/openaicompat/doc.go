// Package openaicompat implements llm.Provider for any endpoint that speaks the
// OpenAI Chat Completions format.
//
// Usage:
//
//	p := openaicompat.New(openaicompat.Config{
//	    ProviderName: "openai",
//	    APIKey:       cfg.APIKey,
//	    BaseURL:      "https://api.openai.com",
//	    DefaultModel: "gpt-4o",
//	}, logger)
package openaicompat
