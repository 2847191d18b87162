// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package oracle 提供基于大语言模型的环路裁决器。

# 概述

[LLMOracle] 实现 hierarchy.Oracle：把环内成员（职位、项目、当前经理与理由）
和环外候选经理渲染进 prompt，请求模型给出修正后的经理指派。

# 请求链路

  - prompt 由 text/template 渲染，并内嵌由 invopop/jsonschema 生成的响应 Schema
  - 候选列表按 Token 预算裁剪（tiktoken 计数，离线时退回估算器）
  - golang.org/x/time/rate 限流，llm/retry 对可重试错误做指数退避
  - 每次调用记录 OpenTelemetry span 与 Prometheus 指标

# 响应解析

模型输出可以是 {"user_managers": [...]} 对象或裸数组，允许包裹在
markdown 代码块中；解析失败时使用 kaptinlin/jsonrepair 修复后重试，
随后以 go-playground/validator 校验字段。名称按大小写不敏感方式
对齐到已知人员。
*/
package oracle
