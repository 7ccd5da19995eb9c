// Package swarm 管理节点的全部连接
//
// Swarm 持有监听器与拨号入口，每个原始连接在独立的 goroutine 中
// 先经 Upgrader 完成协议协商，再运行协商得到的会话，直到会话结束。
// 单个连接的失败只影响它自己。
//
// 连接生命周期通过 Events 通道对外发布：
//
//	EvtConnUpgraded  协商成功，携带会话
//	EvtConnClosed    连接结束，每个连接恰好一次
//
// 事件队列在内部不设上限，发布事件不会阻塞连接任务。
package swarm
