// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 提供统一的大语言模型接入层，供层级解析中的 Oracle 调用。

# 概述

本包屏蔽不同模型服务商在接口、鉴权与错误语义上的差异，
对上层暴露一致的请求与响应模型。当前只需要同步补全能力，
因此 [Provider] 仅包含 Completion / HealthCheck / Name。

# 核心类型

  - [ChatRequest] / [ChatResponse]：聊天请求与响应
  - [ResponseFormat]：输出格式约束（json_object）
  - [Error] / [ErrorCode]：统一错误语义，携带 HTTP 状态与可重试标记
  - [HealthStatus]：健康检查状态

# 相关子包

- llm/providers：OpenAI 兼容协议的线格式与错误映射。
- llm/providers/openaicompat：OpenAI 兼容 Provider 实现。
- llm/retry：重试与退避策略。
- llm/tokenizer：Token 计数，用于 prompt 预算裁剪。
*/
package llm
