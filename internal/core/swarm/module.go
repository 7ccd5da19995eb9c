package swarm

import (
	"errors"

	"go.uber.org/fx"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/internal/core/metrics"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
)

// Params Swarm 依赖参数
type Params struct {
	fx.In

	Upgrader   pkgif.Upgrader
	Transports []pkgif.Transport `group:"transports"` // value groups 不能设置 optional
	Metrics    *metrics.Recorder `optional:"true"`
	UnifiedCfg *config.Config    `optional:"true"`
}

// Module Swarm Fx 模块
var Module = fx.Module("swarm",
	fx.Provide(ProvideSwarm),
)

// ProvideSwarm 创建 Swarm 并注册关闭钩子
func ProvideSwarm(p Params, lc fx.Lifecycle) (*Swarm, error) {
	s, err := NewSwarm(p.Upgrader,
		WithConfig(ConfigFromUnified(p.UnifiedCfg)),
		WithTransports(p.Transports...),
		WithMetrics(p.Metrics),
	)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.StopHook(func() error {
		if err := s.Close(); err != nil && !errors.Is(err, ErrSwarmClosed) {
			return err
		}
		return nil
	}))
	return s, nil
}
