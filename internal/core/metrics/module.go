package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-floodchat/config"
)

// Params 模块依赖
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Module 指标 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(ProvideRecorder, ProvideServer),
)

// ProvideRecorder 按配置创建 Recorder，未启用时返回 nil
//
// 没有注入 Registerer 时使用新的独立 Registry。
func ProvideRecorder(p Params) *Recorder {
	if p.UnifiedCfg != nil && !p.UnifiedCfg.Metrics.Enabled {
		return nil
	}
	reg := p.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return NewRecorder(reg)
}
