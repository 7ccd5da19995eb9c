// Package metrics 提供 floodchat 的 Prometheus 指标
//
// Recorder 的所有方法对 nil 接收者安全，未启用指标时组件可直接传入 nil。
package metrics
