// 版权所有 2024 AgentFlow Authors. 保留所有权利。
// 本源代码的使用受 MIT 许可证的约束，许可证可在 LICENSE 文件中找到。

/*
Package orgchart 从无环的管理关系图派生组织架构文档，并提供多种编码。

# 文档模型

每个 Entry 记录一个人的经理、直接下属、同组同事与当前项目。Chart 中的条目按
姓名排序，列表字段为空时为 nil（序列化为 null），从不单独修改。

# 编码

  - Markdown：以 "---" 分隔的章节，章节标题为姓名，随后四行固定标签
  - JSON：{"entries": [...]}，读取时同时接受裸数组
  - YAML：与 JSON 结构一致

ReadFile / WriteFile 按扩展名选择编码；RenderTree 以 ASCII 树的形式打印层级。
*/
package orgchart
