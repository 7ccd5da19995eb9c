package identity

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// Params 模块依赖
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result 模块输出
type Result struct {
	fx.Out

	Identity *Identity
	PeerID   types.PeerID
}

// Module 身份 Fx 模块
var Module = fx.Module("identity",
	fx.Provide(ProvideIdentity),
)

// ProvideIdentity 生成进程级身份
func ProvideIdentity(p Params) (Result, error) {
	size := DefaultKeySize
	if p.UnifiedCfg != nil {
		size = p.UnifiedCfg.Identity.KeySize
	}
	id, err := Generate(size)
	if err != nil {
		return Result{}, err
	}
	log.Info("本地身份已生成", "peer", id.PeerID().ShortString())
	return Result{Identity: id, PeerID: id.PeerID()}, nil
}
