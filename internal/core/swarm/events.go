package swarm

import (
	"sync"

	pkgif "github.com/dep2p/go-floodchat/pkg/interfaces"
)

// EventType 连接事件类型
type EventType int

const (
	// EvtConnUpgraded 连接完成协商
	EvtConnUpgraded EventType = iota + 1
	// EvtConnClosed 连接结束
	EvtConnClosed
)

func (t EventType) String() string {
	switch t {
	case EvtConnUpgraded:
		return "upgraded"
	case EvtConnClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event 连接事件
type Event struct {
	Type EventType
	Conn *Conn

	// Output 协商得到的会话，仅 EvtConnUpgraded 携带
	Output pkgif.UpgradeOutput

	// Err 连接结束原因，nil 表示正常结束
	Err error
}

// eventQueue 无上限的 FIFO，push 永不阻塞
type eventQueue struct {
	mu      sync.Mutex
	pending []Event

	notify  chan struct{}
	out     chan Event
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		notify:  make(chan struct{}, 1),
		out:     make(chan Event),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pump() {
	defer close(q.stopped)
	defer close(q.out)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			select {
			case <-q.notify:
				continue
			case <-q.done:
				return
			}
		}
		e := q.pending[0]
		q.pending[0] = Event{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		select {
		case q.out <- e:
		case <-q.done:
			return
		}
	}
}

// close 停止投递并关闭输出通道，未投递的事件被丢弃
func (q *eventQueue) close() {
	q.once.Do(func() { close(q.done) })
	<-q.stopped
}
