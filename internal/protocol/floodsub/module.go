package floodsub

import (
	"errors"

	"go.uber.org/fx"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/internal/core/metrics"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// Params 模块依赖
type Params struct {
	fx.In

	PeerID     types.PeerID
	Metrics    *metrics.Recorder `optional:"true"`
	UnifiedCfg *config.Config    `optional:"true"`
	OnEvent    EventHandler      `optional:"true"`
}

// Result 模块输出
type Result struct {
	fx.Out

	Service *Service
	Handler pkgif.ProtocolHandler `group:"protocol_handlers"`
}

// Module FloodSub Fx 模块
var Module = fx.Module("floodsub",
	fx.Provide(ProvideService),
)

// ProvideService 创建引擎并把协议处理器注册到升级器
func ProvideService(p Params, lc fx.Lifecycle) (Result, error) {
	svc, err := New(p.PeerID,
		WithConfig(ConfigFromUnified(p.UnifiedCfg)),
		WithMetrics(p.Metrics),
		WithEventHandler(p.OnEvent),
	)
	if err != nil {
		return Result{}, err
	}

	lc.Append(fx.StopHook(func() error {
		if err := svc.Close(); err != nil && !errors.Is(err, ErrClosed) {
			return err
		}
		return nil
	}))
	return Result{Service: svc, Handler: svc.Handler()}, nil
}
