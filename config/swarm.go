package config

import (
	"errors"
	"time"
)

// UpgraderConfig 协议协商配置
type UpgraderConfig struct {
	// NegotiateTimeout multistream-select 协商超时
	NegotiateTimeout Duration `json:"negotiate_timeout"`
}

// DefaultUpgraderConfig 默认 60 秒协商超时
func DefaultUpgraderConfig() UpgraderConfig {
	return UpgraderConfig{NegotiateTimeout: Duration(60 * time.Second)}
}

// Validate 校验
func (c UpgraderConfig) Validate() error {
	if c.NegotiateTimeout <= 0 {
		return errors.New("upgrader negotiate timeout must be positive")
	}
	return nil
}

// SwarmConfig 连接管理配置
type SwarmConfig struct {
	// DialTimeout 拨号超时（不含协商）
	DialTimeout Duration `json:"dial_timeout"`

	// StartupDialConcurrency 启动时并发拨号数
	StartupDialConcurrency int `json:"startup_dial_concurrency"`
}

// DefaultSwarmConfig 默认连接管理配置
func DefaultSwarmConfig() SwarmConfig {
	return SwarmConfig{
		DialTimeout:            Duration(15 * time.Second),
		StartupDialConcurrency: 8,
	}
}

// Validate 校验
func (c SwarmConfig) Validate() error {
	if c.DialTimeout <= 0 {
		return errors.New("swarm dial timeout must be positive")
	}
	if c.StartupDialConcurrency <= 0 {
		return errors.New("swarm startup dial concurrency must be positive")
	}
	return nil
}
