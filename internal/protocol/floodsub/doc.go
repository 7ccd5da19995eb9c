// Package floodsub 实现 /floodsub/1.0.0 泛洪发布订阅
//
// 每条连接协商到 floodsub 后成为一个会话。会话建立时先发送本地订阅，
// 之后收到的每条新消息投递给本地订阅者，并原样转发给除来源外的所有会话。
// 消息以 (from, seqno) 去重，去重表为容量有限的 LRU。
//
// 帧格式与 libp2p floodsub 兼容：
//
//	uvarint(len) || RPC
//
//	RPC     { repeated SubOpts subscriptions = 1; repeated Message publish = 2; }
//	SubOpts { bool subscribe = 1; string topicid = 2; }
//	Message { bytes from = 1; bytes data = 2; bytes seqno = 3; repeated string topicIDs = 4; }
//
// 发送队列满时丢弃帧，慢连接不会拖住对其他连接的转发。
package floodsub
