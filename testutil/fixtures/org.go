// =============================================================================
// 📦 测试数据工厂 - 组织架构样例
// =============================================================================
// 以原始文本提供，避免 fixtures 依赖被测包
// =============================================================================
package fixtures

// ChartMarkdown 是三人组织架构图的规范 Markdown 渲染
const ChartMarkdown = `# Org Structure

## Alice Smith
- **Manager:** null
- **Direct Reports:** Bob Johnson, Charlie Brown
- **Teammates:** null
- **Working on:** Leadership

---

## Bob Johnson
- **Manager:** Alice Smith
- **Direct Reports:** null
- **Teammates:** Charlie Brown
- **Working on:** Engineering

---

## Charlie Brown
- **Manager:** Alice Smith
- **Direct Reports:** null
- **Teammates:** Bob Johnson
- **Working on:** Product

---
`

// CyclicAssertionsJSON 包含 Alice Smith <-> Bob Johnson 的 2-环
const CyclicAssertionsJSON = `[
  {"name": "Dana White", "manager": null, "reason": "founder"},
  {"name": "Alice Smith", "manager": "Bob Johnson", "reason": "mentioned in standup"},
  {"name": "Bob Johnson", "manager": "Alice Smith", "reason": "asked for approval"},
  {"name": "Charlie Brown", "manager": "Dana White", "reason": "weekly 1:1"}
]`

// RolesJSON 为 CyclicAssertionsJSON 中的人员提供职位与项目
const RolesJSON = `[
  {"name": "Dana White", "title": "CEO", "project": "Leadership", "reason": ""},
  {"name": "Alice Smith", "title": "Software Engineer", "project": "Search", "reason": ""},
  {"name": "Bob Johnson", "title": "Engineering Manager", "project": "Search", "reason": ""},
  {"name": "Charlie Brown", "title": "Designer", "project": "Product", "reason": ""}
]`
