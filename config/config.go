// Package config 提供 floodchat 的统一配置
//
// 主 Config 由各组件的子配置组成，每个子配置在独立文件中定义，
// 提供 DefaultXxxConfig() 和 Validate()。
//
//	cfg := config.NewConfig()
//	cfg.ListenAddrs = []string{"/ip4/0.0.0.0/tcp/63204/ws"}
//	cfg.FloodSub.MaxMessageSize = 4 << 20
//
//	// 或从文件加载
//	cfg, err := config.LoadFile("floodchat.json")
package config

const (
	// DefaultListenAddr 默认监听地址，端口由系统分配
	DefaultListenAddr = "/ip4/0.0.0.0/tcp/0"

	// DefaultTopic 默认聊天主题
	DefaultTopic = "workshop-chapter2-topic"
)

// Config floodchat 完整配置
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport"`

	// Upgrader 协议协商配置
	Upgrader UpgraderConfig `json:"upgrader"`

	// Swarm 连接管理配置
	Swarm SwarmConfig `json:"swarm"`

	// FloodSub 发布订阅配置
	FloodSub FloodSubConfig `json:"floodsub"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// ListenAddrs 启动时监听的地址
	ListenAddrs []string `json:"listen_addrs"`

	// Peers 启动时拨号的节点地址
	//
	// 拨号失败只记录日志，不影响启动。
	Peers []string `json:"peers,omitempty"`

	// Topic 默认订阅并发布的主题
	Topic string `json:"topic"`
}

// NewConfig 返回默认配置
func NewConfig() *Config {
	return &Config{
		Identity:    DefaultIdentityConfig(),
		Transport:   DefaultTransportConfig(),
		Upgrader:    DefaultUpgraderConfig(),
		Swarm:       DefaultSwarmConfig(),
		FloodSub:    DefaultFloodSubConfig(),
		Metrics:     DefaultMetricsConfig(),
		ListenAddrs: []string{DefaultListenAddr},
		Topic:       DefaultTopic,
	}
}

// Clone 深拷贝
func (c *Config) Clone() *Config {
	out := *c
	out.ListenAddrs = append([]string(nil), c.ListenAddrs...)
	out.Peers = append([]string(nil), c.Peers...)
	return &out
}
