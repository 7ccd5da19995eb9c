package config

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	// Enabled 是否采集指标
	Enabled bool `json:"enabled"`

	// ListenAddr /metrics HTTP 监听地址（host:port），为空不对外暴露
	ListenAddr string `json:"listen_addr,omitempty"`
}

// DefaultMetricsConfig 默认采集，不暴露
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enabled: true}
}
