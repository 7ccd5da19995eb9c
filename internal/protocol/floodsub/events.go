package floodsub

// EventType 引擎事件类型
type EventType int

const (
	// EvtPeerJoined 会话开始
	EvtPeerJoined EventType = iota + 1
	// EvtPeerLeft 会话结束
	EvtPeerLeft
	// EvtPeerSubscribed 对端声明订阅
	EvtPeerSubscribed
	// EvtPeerUnsubscribed 对端取消订阅
	EvtPeerUnsubscribed
	// EvtMalformedFrame 收到无法解析的帧
	EvtMalformedFrame
	// EvtOutboundDropped 发送队列满，帧被丢弃
	EvtOutboundDropped
)

func (t EventType) String() string {
	switch t {
	case EvtPeerJoined:
		return "peer-joined"
	case EvtPeerLeft:
		return "peer-left"
	case EvtPeerSubscribed:
		return "peer-subscribed"
	case EvtPeerUnsubscribed:
		return "peer-unsubscribed"
	case EvtMalformedFrame:
		return "malformed-frame"
	case EvtOutboundDropped:
		return "outbound-dropped"
	default:
		return "unknown"
	}
}

// Event 引擎事件
type Event struct {
	Type EventType

	// Remote 会话对端地址
	Remote string

	// Topic 订阅相关事件的主题
	Topic string

	// Err 帧错误
	Err error
}

// EventHandler 事件回调
type EventHandler func(Event)
