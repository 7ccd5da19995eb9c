package config

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

// Validate 校验整个配置
//
// 地址错误以 *multiaddr.ParseError 形式返回，调用方可用 errors.As 识别。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Upgrader.Validate(); err != nil {
		return err
	}
	if err := c.Swarm.Validate(); err != nil {
		return err
	}
	if err := c.FloodSub.Validate(); err != nil {
		return err
	}

	if c.Topic == "" || !utf8.ValidString(c.Topic) {
		return fmt.Errorf("invalid topic %q", c.Topic)
	}

	for _, a := range c.ListenAddrs {
		if _, err := multiaddr.NewMultiaddr(a); err != nil {
			return fmt.Errorf("listen address: %w", err)
		}
	}
	for _, a := range c.Peers {
		if _, err := multiaddr.NewMultiaddr(a); err != nil {
			return fmt.Errorf("peer address: %w", err)
		}
	}
	return nil
}
