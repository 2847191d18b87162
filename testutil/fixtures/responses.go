// =============================================================================
// 📦 测试数据工厂 - LLM 响应测试数据
// =============================================================================
// 提供预定义的 LLM 响应数据，用于测试
// =============================================================================
package fixtures

import (
	"time"

	"github.com/BaSui01/orgflow/llm"
)

// =============================================================================
// 🎯 ChatResponse 工厂
// =============================================================================

// SimpleResponse 返回简单的文本响应
func SimpleResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		ID:       "resp-001",
		Provider: "mock",
		Model:    "gpt-4o",
		Choices: []llm.ChatChoice{
			{
				Index:        0,
				FinishReason: "stop",
				Message:      llm.Message{Role: llm.RoleAssistant, Content: content},
			},
		},
		Usage: llm.ChatUsage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// 🔁 Oracle 响应（针对 Alice Smith <-> Bob Johnson 的 2-环）
// =============================================================================

// OracleResponseFixed 将 Bob Johnson 改挂到 Dana White，打破环
const OracleResponseFixed = `{"user_managers": [
  {"name": "Alice Smith", "manager": "Bob Johnson", "reason": "Alice's standups are run by Bob"},
  {"name": "Bob Johnson", "manager": "Dana White", "reason": "Bob's reviews are signed by Dana"}
]}`

// OracleResponseFenced 与 OracleResponseFixed 相同，但包裹在 markdown 代码块中且带尾逗号
const OracleResponseFenced = "Here is the fix:\n```json\n" + `[
  {"name": "Alice Smith", "manager": "Bob Johnson", "reason": "unchanged"},
  {"name": "Bob Johnson", "manager": "Dana White", "reason": "Bob's reviews are signed by Dana"},
]` + "\n```"

// OracleResponseNoop 原样返回环，不改变任何边
const OracleResponseNoop = `{"user_managers": [
  {"name": "Alice Smith", "manager": "Bob Johnson", "reason": "same"},
  {"name": "Bob Johnson", "manager": "Alice Smith", "reason": "same"}
]}`

// OracleResponseUnknownManager 引用了不存在的人
const OracleResponseUnknownManager = `{"user_managers": [
  {"name": "Bob Johnson", "manager": "Zed Nobody", "reason": "guess"}
]}`
