// Package upgrader 在原始连接上协商应用协议
//
// 协商使用 multistream-select 1.0.0：双方交换 "/multistream/1.0.0" 头，
// 拨号方按优先级逐个提议协议，监听方回显支持的协议或回复 "na"。
// 协商成功后由对应的 ProtocolHandler 把连接转换为会话；
// 任何失败都返回 *NegotiationError 并关闭连接。
package upgrader
