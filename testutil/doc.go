// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 orgflow 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContextWithTimeout（自动注册 Cleanup）/ CancelledContext
  - 断言工具: AssertJSONEqual（基于 go-cmp 输出差异）
  - 文件工具: WriteFile / ReadFile，基于 t.TempDir

# 子包

  - testutil/mocks: MockProvider（LLM Provider），支持 Builder 模式、
    按序响应与错误注入
  - testutil/fixtures: 样例数据，包括经理断言、角色、Markdown 组织架构图
    与 Oracle 响应，均以原始文本提供，可在任何包的测试中使用

# 使用示例

	ctx := testutil.TestContextWithTimeout(t, time.Second)
	provider := mocks.NewSequenceProvider(fixtures.OracleResponseNoop, fixtures.OracleResponseFixed)
	resp, err := provider.Completion(ctx, req)
*/
package testutil
