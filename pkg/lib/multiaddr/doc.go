// Package multiaddr 实现 floodchat 使用的自描述网络地址
//
// 字符串形式为一串 "/协议/值" 组件，例如:
//
//	/ip4/127.0.0.1/tcp/4001
//	/ip6/::1/tcp/0/ws
//	/dns4/example.com/tcp/4001/p2p/QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N
//
// 二进制形式为 [varint 协议代码][值]，变长值带 varint 长度前缀，
// 协议代码与 multiformats/multicodec 表一致。
//
// 支持的协议: ip4, ip6, tcp, udp, dns, dns4, dns6, ws, wss, p2p。
// 解析失败统一返回 *ParseError。
package multiaddr
