package config

import "errors"

// IdentityConfig 身份配置
//
// 身份每次启动随机生成，不持久化。
type IdentityConfig struct {
	// KeySize 随机密钥字节数
	KeySize int `json:"key_size"`
}

// DefaultIdentityConfig 默认 2048 字节随机密钥
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{KeySize: 2048}
}

// Validate 校验
func (c IdentityConfig) Validate() error {
	if c.KeySize < 32 {
		return errors.New("identity key size must be at least 32 bytes")
	}
	return nil
}
