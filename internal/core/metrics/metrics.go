package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-floodchat/pkg/types"
)

const namespace = "floodchat"

// Recorder 连接与发布订阅指标
type Recorder struct {
	connsOpened       *prometheus.CounterVec
	connsClosed       *prometheus.CounterVec
	connsActive       prometheus.Gauge
	negotiationFailed *prometheus.CounterVec
	dialFailed        prometheus.Counter
	handshakeSeconds  prometheus.Histogram

	published    prometheus.Counter
	received     prometheus.Counter
	delivered    prometheus.Counter
	relayed      prometheus.Counter
	duplicates   prometheus.Counter
	malformed    prometheus.Counter
	outboundDrop prometheus.Counter
	subDrop      prometheus.Counter
	sessions     prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewRecorder 创建并注册指标
//
// reg 同时实现 prometheus.Gatherer 时（如 *prometheus.Registry），Handler 直接导出它。
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		connsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "swarm",
			Name: "connections_opened_total",
			Help: "Connections registered, by direction",
		}, []string{"direction"}),
		connsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "swarm",
			Name: "connections_closed_total",
			Help: "Connections torn down, by direction",
		}, []string{"direction"}),
		connsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "swarm",
			Name: "connections_active",
			Help: "Connections currently registered",
		}),
		negotiationFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "swarm",
			Name: "negotiation_failures_total",
			Help: "Protocol negotiations that failed, by direction",
		}, []string{"direction"}),
		dialFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "swarm",
			Name: "dial_failures_total",
			Help: "Outbound dials that failed before a connection existed",
		}),
		handshakeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "swarm",
			Name:    "handshake_duration_seconds",
			Help:    "Time spent negotiating the application protocol",
			Buckets: prometheus.DefBuckets,
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "floodsub",
			Name: "published_total",
			Help: "Messages published locally",
		}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "floodsub",
			Name: "received_total",
			Help: "Messages received from peers, duplicates included",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "floodsub",
			Name: "delivered_total",
			Help: "Messages handed to local subscriptions",
		}),
		relayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "floodsub",
			Name: "relayed_total",
			Help: "Message copies enqueued for forwarding to peers",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "floodsub",
			Name: "duplicates_total",
			Help: "Messages dropped because they were already seen",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "floodsub",
			Name: "malformed_frames_total",
			Help: "Inbound frames dropped as malformed or oversized",
		}),
		outboundDrop: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "floodsub",
			Name: "outbound_dropped_total",
			Help: "Frames dropped because a peer send queue was full",
		}),
		subDrop: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "floodsub",
			Name: "subscription_dropped_total",
			Help: "Messages dropped because a local subscription buffer was full",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "floodsub",
			Name: "sessions_active",
			Help: "Connections running the floodsub protocol",
		}),
	}

	reg.MustRegister(
		r.connsOpened, r.connsClosed, r.connsActive, r.negotiationFailed, r.dialFailed, r.handshakeSeconds,
		r.published, r.received, r.delivered, r.relayed, r.duplicates, r.malformed, r.outboundDrop, r.subDrop, r.sessions,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		r.gatherer = g
	}
	return r
}

// Handler 返回 /metrics HTTP 处理器
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// ConnOpened 连接注册
func (r *Recorder) ConnOpened(dir types.Direction) {
	if r == nil {
		return
	}
	r.connsOpened.WithLabelValues(dir.String()).Inc()
	r.connsActive.Inc()
}

// ConnClosed 连接拆除
func (r *Recorder) ConnClosed(dir types.Direction) {
	if r == nil {
		return
	}
	r.connsClosed.WithLabelValues(dir.String()).Inc()
	r.connsActive.Dec()
}

// NegotiationFailed 协商失败
func (r *Recorder) NegotiationFailed(dir types.Direction) {
	if r == nil {
		return
	}
	r.negotiationFailed.WithLabelValues(dir.String()).Inc()
}

// DialFailed 拨号失败
func (r *Recorder) DialFailed() {
	if r == nil {
		return
	}
	r.dialFailed.Inc()
}

// ObserveHandshake 记录协商耗时（秒）
func (r *Recorder) ObserveHandshake(seconds float64) {
	if r == nil {
		return
	}
	r.handshakeSeconds.Observe(seconds)
}

// Published 本地发布
func (r *Recorder) Published() {
	if r == nil {
		return
	}
	r.published.Inc()
}

// Received 收到消息
func (r *Recorder) Received() {
	if r == nil {
		return
	}
	r.received.Inc()
}

// Delivered 本地投递
func (r *Recorder) Delivered() {
	if r == nil {
		return
	}
	r.delivered.Inc()
}

// Relayed 转发 n 份
func (r *Recorder) Relayed(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.relayed.Add(float64(n))
}

// Duplicate 重复消息
func (r *Recorder) Duplicate() {
	if r == nil {
		return
	}
	r.duplicates.Inc()
}

// Malformed 畸形帧
func (r *Recorder) Malformed() {
	if r == nil {
		return
	}
	r.malformed.Inc()
}

// OutboundDropped 发送队列满
func (r *Recorder) OutboundDropped() {
	if r == nil {
		return
	}
	r.outboundDrop.Inc()
}

// SubscriptionDropped 订阅缓冲满
func (r *Recorder) SubscriptionDropped() {
	if r == nil {
		return
	}
	r.subDrop.Inc()
}

// SessionStarted 会话开始
func (r *Recorder) SessionStarted() {
	if r == nil {
		return
	}
	r.sessions.Inc()
}

// SessionEnded 会话结束
func (r *Recorder) SessionEnded() {
	if r == nil {
		return
	}
	r.sessions.Dec()
}
