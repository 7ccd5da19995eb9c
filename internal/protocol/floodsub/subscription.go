package floodsub

import (
	"context"
	"time"

	"github.com/dep2p/go-floodchat/pkg/types"
)

// Message 投递给本地订阅者的消息
type Message struct {
	// From 发布者
	From types.PeerID

	// Seqno 发布者分配的序号
	Seqno uint64

	// Topic 本次投递对应的订阅主题
	Topic string

	Data []byte

	// ReceivedFrom 消息到达的会话对端地址
	ReceivedFrom string

	ReceivedAt time.Time
}

// Subscription 主题订阅句柄
type Subscription struct {
	topic Topic
	ch    chan *Message
}

func newSubscription(t Topic, size int) *Subscription {
	return &Subscription{topic: t, ch: make(chan *Message, size)}
}

// Topic 订阅的主题
func (s *Subscription) Topic() Topic {
	return s.topic
}

// Messages 消息通道，服务关闭后关闭
func (s *Subscription) Messages() <-chan *Message {
	return s.ch
}

// Next 获取下一条消息
func (s *Subscription) Next(ctx context.Context) (*Message, error) {
	select {
	case m, ok := <-s.ch:
		if !ok {
			return nil, ErrClosed
		}
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// deliver 非阻塞投递，缓冲满时返回 false
func (s *Subscription) deliver(m *Message) bool {
	select {
	case s.ch <- m:
		return true
	default:
		return false
	}
}
