// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 提供 OpenAI 兼容协议的公共适配层，供 openaicompat 子包
完成请求/响应转换与错误映射。

# 核心类型

  - OpenAICompat* 系列 — OpenAI 兼容 API 的请求/响应结构体

# 核心函数

  - MapHTTPError — 将 HTTP 状态码映射为语义化的 llm.Error（含 Retryable 标记）
  - ReadErrorMessage — 从错误响应体中提取可读消息
  - ConvertMessagesToOpenAI / ToLLMChatResponse — 消息与响应格式转换
  - ChooseModel — 请求 > 配置 > 兜底 的模型选择
*/
package providers
