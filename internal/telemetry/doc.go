// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 orgflow 命令行提供 TracerProvider 与 MeterProvider。
// 遥测关闭时保留全局 noop 实现，不连接任何外部服务。
package telemetry
