package floodchat

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/internal/core/identity"
	"github.com/dep2p/go-floodchat/internal/core/metrics"
	"github.com/dep2p/go-floodchat/internal/core/swarm"
	"github.com/dep2p/go-floodchat/internal/core/transport"
	"github.com/dep2p/go-floodchat/internal/core/upgrader"
	"github.com/dep2p/go-floodchat/internal/protocol/floodsub"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// EnvFxDebug 为 "1" 时输出 Fx 装配日志
const EnvFxDebug = "FLOODCHAT_FX_DEBUG"

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. Identity → Metrics
//  2. Transport → FloodSub（提供协议处理器）→ Upgrader → Swarm
//  3. 用户扩展
//  4. Node 组件注入
func buildFxApp(cfg *nodeConfig, node *Node) (*fx.App, error) {
	if !hasAnyTransport(cfg.config) {
		return nil, errors.New("at least one transport must be enabled (TCP or WebSocket)")
	}

	reg := cfg.registerer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg = r
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		node.gatherer = g
	}

	modules := []fx.Option{
		// 配置注入
		fx.Supply(cfg.config),
		fx.Provide(func() prometheus.Registerer { return reg }),

		identity.Module,
		metrics.Module,

		transport.Module,
		floodsub.Module,
		upgrader.Module,
		swarm.Module,
	}

	if len(cfg.userFxOptions) > 0 {
		modules = append(modules, cfg.userFxOptions...)
	}

	modules = append(modules,
		fx.Invoke(injectNodeComponents(node)),
		fx.WithLogger(newFxLogger),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("assemble node: %w", err)
	}
	return app, nil
}

// hasAnyTransport 检查是否启用任何传输协议
func hasAnyTransport(cfg *config.Config) bool {
	return cfg.Transport.EnableTCP || cfg.Transport.EnableWebSocket
}

// newFxLogger 默认静默，设置 FLOODCHAT_FX_DEBUG=1 时使用 zap 开发日志
func newFxLogger() fxevent.Logger {
	if os.Getenv(EnvFxDebug) == "1" {
		if l, err := zap.NewDevelopment(); err == nil {
			return &fxevent.ZapLogger{Logger: l}
		}
	}
	return &fxevent.ZapLogger{Logger: zap.NewNop()}
}

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	PeerID types.PeerID
	Swarm  *swarm.Swarm
	PubSub *floodsub.Service

	Metrics       *metrics.Recorder `optional:"true"`
	MetricsServer *metrics.Server   `optional:"true"`
}

// injectNodeComponents 把装配好的组件交给 Node
func injectNodeComponents(node *Node) func(nodeInjectParams) {
	return func(p nodeInjectParams) {
		node.peerID = p.PeerID
		node.swarm = p.Swarm
		node.pubsub = p.PubSub
		node.metrics = p.Metrics
		node.metricsServer = p.MetricsServer
	}
}
