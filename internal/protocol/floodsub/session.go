package floodsub

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/protocolids"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// handler 把协商好的连接交给引擎
type handler struct {
	svc *Service
}

var _ pkgif.ProtocolHandler = (*handler)(nil)

func (h *handler) ID() types.ProtocolID { return protocolids.FloodSub }

// Upgrade 创建会话，会话在 Serve 时才加入引擎
func (h *handler) Upgrade(_ context.Context, conn net.Conn, dir types.Direction) (pkgif.UpgradeOutput, error) {
	if h.svc.isClosed() {
		return nil, ErrClosed
	}
	return newSession(h.svc, conn, dir), nil
}

// session 一条 floodsub 连接
type session struct {
	svc    *Service
	conn   net.Conn
	dir    types.Direction
	remote string

	// out 有界发送队列，只由 writeLoop 消费
	out chan []byte

	mu     sync.RWMutex
	topics map[string]struct{} // 对端声明的订阅
}

var _ pkgif.UpgradeOutput = (*session)(nil)

func newSession(svc *Service, conn net.Conn, dir types.Direction) *session {
	remote := ""
	if a := conn.RemoteAddr(); a != nil {
		remote = a.String()
	}
	return &session{
		svc:    svc,
		conn:   conn,
		dir:    dir,
		remote: remote,
		out:    make(chan []byte, svc.cfg.OutboundQueueSize),
		topics: make(map[string]struct{}),
	}
}

func (s *session) Protocol() types.ProtocolID { return protocolids.FloodSub }

// Serve 运行会话直到对端关闭、出错或 ctx 取消
func (s *session) Serve(ctx context.Context) error {
	if err := s.svc.addSession(s); err != nil {
		s.conn.Close()
		return err
	}
	defer s.svc.removeSession(s)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() { s.conn.Close() })
	defer stop()

	g.Go(func() error {
		return s.writeLoop(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return s.readLoop(gctx)
	})
	return g.Wait()
}

func (s *session) readLoop(ctx context.Context) error {
	br := bufio.NewReader(s.conn)
	limit := s.svc.cfg.MaxMessageSize

	for {
		body, err := readFrame(br, limit)
		switch {
		case err == nil:
		case errors.Is(err, ErrMessageTooLarge):
			s.svc.malformedFrame(s, err)
			continue
		case errors.Is(err, io.EOF):
			return nil
		default:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		r, err := decodeRPC(body)
		if err != nil {
			s.svc.malformedFrame(s, err)
			continue
		}
		s.svc.handleRPC(s, r)
	}
}

func (s *session) writeLoop(ctx context.Context) error {
	timeout := s.svc.cfg.WriteTimeout
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-s.out:
			if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				return err
			}
			if err := writeFrame(s.conn, frame); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// enqueue 非阻塞入队，队列满时丢弃
func (s *session) enqueue(frame []byte) bool {
	select {
	case s.out <- frame:
		return true
	default:
		s.svc.outboundDropped(s)
		return false
	}
}

func (s *session) setSubscribed(topic string, subscribed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, had := s.topics[topic]
	if subscribed {
		s.topics[topic] = struct{}{}
	} else {
		delete(s.topics, topic)
	}
	return had != subscribed
}

func (s *session) subscribedTo(topic string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.topics[topic]
	return ok
}

func (s *session) subscribedToAny(topics []string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range topics {
		if _, ok := s.topics[t]; ok {
			return true
		}
	}
	return false
}
