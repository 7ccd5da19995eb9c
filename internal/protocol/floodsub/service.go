package floodsub

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-floodchat/internal/util/logger"
	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/types"
)

var log = logger.Logger("protocol/floodsub")

// Service FloodSub 引擎
type Service struct {
	local types.PeerID
	opts  options
	cfg   Config

	seqno atomic.Uint64
	seen  *seenCache

	mu       sync.RWMutex
	subs     map[string][]*Subscription
	sessions map[*session]struct{}
	closed   bool
}

// New 创建引擎
func New(local types.PeerID, opts ...Option) (*Service, error) {
	if local.IsEmpty() {
		return nil, types.ErrEmptyPeerID
	}

	o := options{cfg: DefaultConfig(), clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	seen, err := newSeenCache(o.cfg.SeenCacheSize)
	if err != nil {
		return nil, fmt.Errorf("floodsub: seen cache: %w", err)
	}

	s := &Service{
		local:    local,
		opts:     o,
		cfg:      o.cfg,
		seen:     seen,
		subs:     make(map[string][]*Subscription),
		sessions: make(map[*session]struct{}),
	}
	// 序号以当前纳秒为起点，重启后不与旧序号冲突
	s.seqno.Store(uint64(time.Now().UnixNano()))
	return s, nil
}

// Handler 返回 /floodsub/1.0.0 的协议处理器
func (s *Service) Handler() pkgif.ProtocolHandler {
	return &handler{svc: s}
}

// LocalPeer 本地节点
func (s *Service) LocalPeer() types.PeerID {
	return s.local
}

// Subscribe 订阅主题
//
// 首次订阅某主题时向所有会话广播；之后的调用只返回新的句柄。
func (s *Service) Subscribe(t Topic) (*Subscription, error) {
	if t.IsZero() {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTopic)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	name := t.String()
	first := len(s.subs[name]) == 0
	sub := newSubscription(t, s.cfg.SubscriptionBufferSize)
	s.subs[name] = append(s.subs[name], sub)

	if first {
		frame := encodeRPC([]subOpts{{subscribe: true, topic: name}})
		for sess := range s.sessions {
			sess.enqueue(frame)
		}
		log.Info("已订阅主题", "topic", name, "peers", len(s.sessions))
	}
	return sub, nil
}

// Publish 发布消息到主题
//
// 没有会话时消息只记入去重表，不算错误。本地订阅者不会收到自己发布的消息。
func (s *Service) Publish(t Topic, data []byte) error {
	if t.IsZero() {
		return fmt.Errorf("%w: empty", ErrInvalidTopic)
	}
	name := t.String()

	seq := s.seqno.Add(1)
	msg := encodeMessage(s.local.Bytes(), data, seq, []string{name})
	frame := encodeRPC(nil, msg)
	if len(frame) > s.cfg.MaxMessageSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrMessageTooLarge, len(frame), s.cfg.MaxMessageSize)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	s.seen.markSeen(msgID{from: string(s.local), seqno: seq})

	sent := 0
	for sess := range s.sessions {
		if s.cfg.FilterBySubscription && !sess.subscribedTo(name) {
			continue
		}
		if sess.enqueue(frame) {
			sent++
		}
	}
	s.opts.metrics.Published()
	log.Debug("消息已发布", "topic", name, "seqno", seq, "size", len(data), "peers", sent)
	return nil
}

// PeerCount 活跃会话数
func (s *Service) PeerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// TopicPeerCount 声明订阅了主题的会话数
func (s *Service) TopicPeerCount(t Topic) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for sess := range s.sessions {
		if sess.subscribedTo(t.String()) {
			n++
		}
	}
	return n
}

// Topics 本地已订阅的主题
func (s *Service) Topics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make([]string, 0, len(s.subs))
	for name := range s.subs {
		topics = append(topics, name)
	}
	sort.Strings(topics)
	return topics
}

// Close 关闭所有会话与订阅
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true

	sessions := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	for _, subs := range s.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.conn.Close()
	}
	log.Debug("FloodSub 已关闭", "sessions", len(sessions))
	return nil
}

func (s *Service) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// ============================================================================
//                              会话管理
// ============================================================================

// addSession 登记会话，并先于其他帧排入本地订阅
func (s *Service) addSession(sess *session) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.sessions[sess] = struct{}{}
	peers := len(s.sessions)

	if len(s.subs) > 0 {
		hello := make([]subOpts, 0, len(s.subs))
		for name := range s.subs {
			hello = append(hello, subOpts{subscribe: true, topic: name})
		}
		sort.Slice(hello, func(i, j int) bool { return hello[i].topic < hello[j].topic })
		sess.enqueue(encodeRPC(hello))
	}
	s.mu.Unlock()

	s.opts.metrics.SessionStarted()
	log.Debug("会话开始", "remote", sess.remote, "direction", sess.dir, "peers", peers)
	s.emit(Event{Type: EvtPeerJoined, Remote: sess.remote})
	return nil
}

func (s *Service) removeSession(sess *session) {
	s.mu.Lock()
	_, ok := s.sessions[sess]
	delete(s.sessions, sess)
	s.mu.Unlock()

	if !ok {
		return
	}
	s.opts.metrics.SessionEnded()
	log.Debug("会话结束", "remote", sess.remote)
	s.emit(Event{Type: EvtPeerLeft, Remote: sess.remote})
}

// ============================================================================
//                              入站处理
// ============================================================================

func (s *Service) handleRPC(from *session, r *rpc) {
	for _, sub := range r.subs {
		if !from.setSubscribed(sub.topic, sub.subscribe) {
			continue
		}
		typ := EvtPeerSubscribed
		if !sub.subscribe {
			typ = EvtPeerUnsubscribed
		}
		log.Debug("对端订阅变化", "remote", from.remote, "topic", sub.topic, "subscribe", sub.subscribe)
		s.emit(Event{Type: typ, Remote: from.remote, Topic: sub.topic})
	}

	for _, m := range r.publish {
		s.handleMessage(from, m)
	}
}

func (s *Service) handleMessage(from *session, m *wireMessage) {
	s.opts.metrics.Received()

	if s.seen.markSeen(msgID{from: string(m.from), seqno: m.seqno}) {
		s.opts.metrics.Duplicate()
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	now := s.opts.clock.Now()
	for _, topic := range m.topics {
		for _, sub := range s.subs[topic] {
			delivered := sub.deliver(&Message{
				From:         types.PeerID(m.from),
				Seqno:        m.seqno,
				Topic:        topic,
				Data:         m.data,
				ReceivedFrom: from.remote,
				ReceivedAt:   now,
			})
			if delivered {
				s.opts.metrics.Delivered()
			} else {
				s.opts.metrics.SubscriptionDropped()
				log.Warn("订阅缓冲已满，丢弃消息", "topic", topic)
			}
		}
	}

	var frame []byte
	relayed := 0
	for sess := range s.sessions {
		if sess == from {
			continue
		}
		if s.cfg.FilterBySubscription && !sess.subscribedToAny(m.topics) {
			continue
		}
		if frame == nil {
			frame = encodeRPC(nil, m.raw)
		}
		if sess.enqueue(frame) {
			relayed++
		}
	}
	s.opts.metrics.Relayed(relayed)
}

func (s *Service) malformedFrame(from *session, err error) {
	s.opts.metrics.Malformed()
	log.Warn("丢弃无效帧", "remote", from.remote, "error", err)
	s.emit(Event{Type: EvtMalformedFrame, Remote: from.remote, Err: err})
}

func (s *Service) outboundDropped(sess *session) {
	s.opts.metrics.OutboundDropped()
	log.Warn("发送队列已满，丢弃帧", "remote", sess.remote)
	s.emit(Event{Type: EvtOutboundDropped, Remote: sess.remote})
}

func (s *Service) emit(e Event) {
	if s.opts.onEvent != nil {
		s.opts.onEvent(e)
	}
}
