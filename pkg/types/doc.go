// Package types 定义 floodchat 的基础类型
//
// 这是最底层的包，不依赖任何其他内部包：
//   - PeerID: 节点标识，由公钥摘要派生
//   - Direction: 连接方向
//   - ProtocolID: 协议标识
package types
