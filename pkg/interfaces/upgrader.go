package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-floodchat/pkg/types"
)

// ProtocolHandler 可被协商选中的应用协议
type ProtocolHandler interface {
	// ID 协议标识
	ID() types.ProtocolID

	// Upgrade 在已协商的字节流上创建会话
	//
	// conn 的读写从协商结束处开始，之前被缓冲的字节不会丢失。
	Upgrade(ctx context.Context, conn net.Conn, dir types.Direction) (UpgradeOutput, error)
}

// UpgradeOutput 协商完成后的协议会话
type UpgradeOutput interface {
	// Protocol 选定的协议
	Protocol() types.ProtocolID

	// Serve 运行会话直到流结束或 ctx 取消
	//
	// 返回 nil 表示对端正常关闭。
	Serve(ctx context.Context) error
}

// Upgrader 连接升级器
type Upgrader interface {
	// Protocols 本地支持的协议，按优先级排序
	Protocols() []types.ProtocolID

	// Upgrade 在原始连接上协商并构造会话
	//
	// dir 为 DirOutbound 时本端提议协议，否则本端响应。
	Upgrade(ctx context.Context, conn net.Conn, dir types.Direction) (UpgradeOutput, error)
}
