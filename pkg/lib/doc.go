// Package lib 包含基础设施工具库
//
// 本目录包含与架构组件无关的通用工具库：
//
//   - multiaddr: 多地址格式解析（ip4/ip6/dns/tcp/ws/p2p）
//
// # 与 pkg/ 其他目录的关系
//
//   - interfaces/: 组件公共接口
//   - types/: 公共类型定义（PeerID、方向等）
//   - protocolids/: 协议 ID 常量
//   - lib/: 基础设施工具库（本目录）
//
// # 使用示例
//
//	import "github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
//
//	m, err := multiaddr.NewMultiaddr("/ip4/127.0.0.1/tcp/63204/ws")
package lib
