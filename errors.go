package floodchat

import (
	"errors"

	"github.com/dep2p/go-floodchat/internal/core/swarm"
	"github.com/dep2p/go-floodchat/internal/core/upgrader"
	"github.com/dep2p/go-floodchat/internal/protocol/floodsub"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ────────────────────────────────────────────────────────────────────────
	// 发布订阅错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidTopic 主题名无效
	ErrInvalidTopic = floodsub.ErrInvalidTopic

	// ErrMessageTooLarge 消息超过帧上限
	ErrMessageTooLarge = floodsub.ErrMessageTooLarge

	// ────────────────────────────────────────────────────────────────────────
	// 网络错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNoTransport 没有传输层支持该地址
	ErrNoTransport = swarm.ErrNoTransport

	// ErrNegotiationFailed 协议协商失败，通过连接关闭事件上报
	ErrNegotiationFailed = upgrader.ErrNegotiationFailed
)

// ParseError 地址解析错误
type ParseError = multiaddr.ParseError

// NegotiationError 协商失败详情
type NegotiationError = upgrader.NegotiationError

// DialError 拨号错误
type DialError = swarm.DialError

// ListenError 监听错误
type ListenError = swarm.ListenError
