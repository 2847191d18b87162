// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 orgflow 命令行程序入口。

# 概述

cmd/orgflow 把经理关系断言整理成组织架构文档，并对预测文档做评估。
程序支持 YAML 配置文件与 ORGFLOW_ 环境变量、.env 文件、结构化日志（zap）、
OpenTelemetry 追踪以及 Prometheus textfile 指标导出。

# 子命令

  - build      — 读取经理/角色 JSON，可选地经 LLM 修复管理环，生成组织架构文档
  - normalize  — 只运行管理环修复循环，输出修正后的经理 JSON
  - evaluate   — 对比预测文档与真实文档，输出覆盖率与经理准确率报告
  - visualize  — 以 ASCII 树打印组织架构
  - version    — 显示构建信息

# 构建注入

Version、BuildTime、GitCommit 通过 ldflags 设置。
*/
package main
