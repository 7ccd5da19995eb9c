package transport

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/internal/core/transport/tcp"
	"github.com/dep2p/go-floodchat/internal/core/transport/websocket"
	"github.com/dep2p/go-floodchat/internal/util/logger"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
)

var log = logger.Logger("core/transport")

// Params 模块依赖
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result 模块输出
type Result struct {
	fx.Out

	Transports []pkgif.Transport `group:"transports,flatten"`
}

// Module 传输层 Fx 模块
var Module = fx.Module("transport",
	fx.Provide(ProvideTransports),
)

// ProvideTransports 按配置创建启用的传输
func ProvideTransports(p Params, lc fx.Lifecycle) Result {
	cfg := config.NewConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg
	}

	var ts []pkgif.Transport
	if cfg.Transport.EnableTCP {
		ts = append(ts, tcp.NewTransport(tcp.ConfigFromUnified(cfg)))
	}
	if cfg.Transport.EnableWebSocket {
		ts = append(ts, websocket.NewTransport(websocket.ConfigFromUnified(cfg)))
	}
	log.Debug("传输已创建", "count", len(ts))

	lc.Append(fx.StopHook(func() {
		for _, t := range ts {
			_ = t.Close()
		}
	}))
	return Result{Transports: ts}
}
