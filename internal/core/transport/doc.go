// Package transport 汇集 floodchat 的传输实现
//
// 传输只负责产出原始双向字节流：
//   - tcp: /ip4|ip6|dns*/.../tcp/<port>
//   - websocket: /ip4|ip6|dns*/.../tcp/<port>/ws
//
// 不提供加密与多路复用，每个连接只承载一个协商后的协议会话。
package transport
