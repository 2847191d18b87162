// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖层级解析、
Oracle（LLM）调用、组织架构构建与评估四个维度。

# 概述

Collector 持有私有 Registry，通过 promauto.With 注册全部指标，
同一进程内可创建多个互不冲突的收集器（测试友好）。CLI 运行结束后
可通过 WriteTextfile 以 textfile 格式落盘，供 node_exporter 采集。

# 核心类型

  - Collector：指标收集器，方法对 nil 接收者安全。

# 主要能力

  - 层级解析：检测到的环数、环解析结果、Oracle 尝试结果、解析轮数。
  - LLM 指标：请求总数、请求耗时、Token 用量，按 provider/model 分组。
  - 评估指标：覆盖率、经理准确率 Gauge，错误类型计数。
*/
package metrics
