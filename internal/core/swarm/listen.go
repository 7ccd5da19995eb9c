package swarm

import (
	tec "github.com/jbenet/go-temp-err-catcher"

	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
	"github.com/dep2p/go-floodchat/pkg/lib/multiaddr"
	"github.com/dep2p/go-floodchat/pkg/types"
)

// Listen 解析并监听地址，返回实际绑定地址
//
// 地址无法解析时返回 *multiaddr.ParseError。
func (s *Swarm) Listen(addr string) (multiaddr.Multiaddr, error) {
	maddr, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return nil, err
	}
	return s.ListenMultiaddr(maddr)
}

// ListenMultiaddr 监听已解析的地址
func (s *Swarm) ListenMultiaddr(maddr multiaddr.Multiaddr) (multiaddr.Multiaddr, error) {
	if s.isClosed() {
		return nil, ErrSwarmClosed
	}

	t := s.transportForListen(maddr)
	if t == nil {
		return nil, &ListenError{Addr: maddr, Err: ErrNoTransport}
	}

	l, err := t.Listen(maddr)
	if err != nil {
		return nil, &ListenError{Addr: maddr, Err: err}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.Close()
		return nil, ErrSwarmClosed
	}
	s.listeners = append(s.listeners, l)
	s.wg.Add(1)
	s.mu.Unlock()

	go s.acceptLoop(l)

	bound := l.Multiaddr()
	log.Info("开始监听", "addr", bound)
	return bound, nil
}

// acceptLoop 接受连接循环，临时错误退避后重试
func (s *Swarm) acceptLoop(l pkgif.Listener) {
	defer s.wg.Done()

	var catcher tec.TempErrCatcher
	for {
		raw, err := l.Accept()
		if err != nil {
			if catcher.IsTemporary(err) {
				continue
			}
			if !s.isClosed() {
				log.Warn("监听器停止接受连接", "addr", l.Multiaddr(), "error", err)
			}
			return
		}
		catcher.Reset()

		if _, err := s.addConn(raw, types.DirInbound); err != nil {
			return
		}
	}
}

func (s *Swarm) transportForListen(maddr multiaddr.Multiaddr) pkgif.Transport {
	for _, t := range s.transports {
		if t.CanListen(maddr) {
			return t
		}
	}
	return nil
}

func (s *Swarm) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
