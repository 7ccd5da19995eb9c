// Package interfaces 定义 floodchat 组件之间的契约
//
// 传输层产出原始字节流连接，升级协商器在其上选定应用协议，
// 协议处理器把连接转换为可运行的会话（UpgradeOutput）。
// 连接管理器只依赖这些接口，不感知具体协议。
package interfaces
