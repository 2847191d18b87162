// Package config 提供 orgflow 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量（ORGFLOW_<SECTION>_<FIELD>）的顺序合并，
// 加载后通过 validator 结构体标签与交叉字段检查校验。
package config
