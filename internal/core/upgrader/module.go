package upgrader

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/internal/core/metrics"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
)

// Params 模块依赖
type Params struct {
	fx.In

	Handlers   []pkgif.ProtocolHandler `group:"protocol_handlers"`
	Metrics    *metrics.Recorder       `optional:"true"`
	UnifiedCfg *config.Config          `optional:"true"`
}

// Module 升级器 Fx 模块
var Module = fx.Module("upgrader",
	fx.Provide(
		fx.Annotate(
			ProvideUpgrader,
			fx.As(fx.Self()),
			fx.As(new(pkgif.Upgrader)),
		),
	),
)

// ProvideUpgrader 收集协议处理器并创建升级器
func ProvideUpgrader(p Params) (*Upgrader, error) {
	u, err := New(ConfigFromUnified(p.UnifiedCfg), p.Handlers...)
	if err != nil {
		return nil, err
	}
	u.SetMetrics(p.Metrics)
	return u, nil
}
