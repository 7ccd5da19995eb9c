// Package protocolids 集中定义 floodchat 使用的协议标识
package protocolids

import "github.com/dep2p/go-floodchat/pkg/types"

const (
	// Multistream multistream-select 协商头
	Multistream types.ProtocolID = "/multistream/1.0.0"

	// FloodSub 泛洪发布订阅协议，与 libp2p floodsub 线格式兼容
	FloodSub types.ProtocolID = "/floodsub/1.0.0"
)
