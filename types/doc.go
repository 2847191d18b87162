// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 orgflow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 hierarchy、orgchart、
evaluation、oracle 等上层模块提供统一的错误契约。

# 核心类型

  - Error / ErrorCode — 结构化错误体系，含 Retryable 标记与 Cause 链

# 主要能力

  - 错误工具链：NewError / Errorf / WithCause / IsRetryable / GetErrorCode / IsErrorCode
  - errors.Is 按错误码比较：errors.Is(err, types.NewError(types.ErrUnresolvedCycle, ""))
*/
package types
