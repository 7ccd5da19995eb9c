// Package floodchat 提供最小化的点对点泛洪聊天节点
//
// 节点在 TCP 或 WebSocket 上监听与拨号，每条连接先通过
// multistream-select 协商 /floodsub/1.0.0，然后加入泛洪发布订阅网络。
// 身份在每次启动时随机生成，连接不加密也不认证。
//
// # 快速开始
//
//	node, err := floodchat.New(
//	    floodchat.WithListenAddrs("/ip4/0.0.0.0/tcp/0"),
//	    floodchat.WithPeers("/ip4/192.168.1.10/tcp/4001"),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := node.Start(ctx); err != nil {
//	    return err
//	}
//	defer node.Close()
//
//	sub := node.DefaultSubscription()
//	_ = node.Publish(node.Topic().String(), []byte("hello"))
//	msg, _ := sub.Next(ctx)
//
// # 组件
//
//	┌──────────────────────────────────────────────┐
//	│  Node         启动、默认主题、事件日志        │
//	├──────────────────────────────────────────────┤
//	│  FloodSub     订阅、发布、去重、转发          │
//	├──────────────────────────────────────────────┤
//	│  Swarm        监听、拨号、每连接一个任务      │
//	├──────────────────────────────────────────────┤
//	│  Upgrader     multistream-select 协商         │
//	├──────────────────────────────────────────────┤
//	│  Transport    TCP / WebSocket                 │
//	└──────────────────────────────────────────────┘
//
// 组件由 Fx 装配，config.Config 是唯一的配置入口。
package floodchat
