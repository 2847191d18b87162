// Package tlsutil 提供 LLM 出站请求使用的 HTTP 客户端：
// TLS 1.2+、仅 AEAD 密码套件，并通过 otelhttp 记录客户端 span。
package tlsutil
