// Package main 提供 floodchat 命令行入口
//
// 用法：
//
//	floodchat [flags] [peer-multiaddr ...]
//
// 从标准输入读取的每一行发布到聊天主题，收到的消息以 "> " 开头打印。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	floodchat "github.com/dep2p/go-floodchat"
	"github.com/dep2p/go-floodchat/config"
	log "github.com/dep2p/go-floodchat/internal/util/logger"
)

var logger = log.Logger("floodchat/cmd")

// stringList 可重复的字符串参数
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

var (
	listenAddrs stringList
	topic       = flag.String("topic", config.DefaultTopic, "聊天主题")
	configFile  = flag.String("config", "", "JSON 配置文件路径")
	metricsAddr = flag.String("metrics", "", "Prometheus /metrics 监听地址（如 127.0.0.1:9090）")
)

func init() {
	flag.Var(&listenAddrs, "listen", "监听地址，可重复（默认 "+config.DefaultListenAddr+"）")
	flag.Usage = printUsage
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	// 地址错误在这里返回，不会进行任何网络操作
	node, err := floodchat.New(floodchat.WithConfig(cfg))
	if err != nil {
		return err
	}
	logPeers(cfg.Peers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	for _, a := range node.ListenAddrs() {
		fmt.Printf("Now listening on %s\n", a)
	}
	logger.Info("节点已启动", "peer", node.ID().String(), "topic", cfg.Topic)
	for _, a := range node.FullAddrs() {
		logger.Info("可分享地址", "addr", a.String())
	}
	if addr := node.MetricsAddr(); addr != nil {
		logger.Info("指标地址", "url", "http://"+addr.String()+"/metrics")
	}

	go func() {
		if err := publishLines(os.Stdin, cfg.Topic, node); err != nil {
			logger.Warn("读取标准输入失败", "error", err)
		}
	}()
	go func() {
		if err := printMessages(ctx, node.DefaultSubscription(), os.Stdout); err != nil {
			logger.Warn("读取订阅失败", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("正在关闭")
	return nil
}

// buildConfig 合并配置文件与命令行参数，命令行优先
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		var err error
		if cfg, err = config.LoadFile(*configFile); err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	}

	if len(listenAddrs) > 0 {
		cfg.ListenAddrs = append([]string(nil), listenAddrs...)
	}
	if *configFile == "" || isFlagSet("topic") {
		cfg.Topic = *topic
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = *metricsAddr
	}
	cfg.Peers = append(cfg.Peers, flag.Args()...)
	return cfg, nil
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "用法: floodchat [flags] [peer-multiaddr ...]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "示例:")
	fmt.Fprintln(out, "  floodchat -listen /ip4/0.0.0.0/tcp/4001")
	fmt.Fprintln(out, "  floodchat -listen /ip4/0.0.0.0/tcp/63204/ws /ip4/192.168.1.10/tcp/4001")
	fmt.Fprintln(out)
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "环境变量:")
	fmt.Fprintln(out, "  FLOODCHAT_LOG_LEVEL   日志级别 (debug/info/warn/error)")
	fmt.Fprintln(out, "  FLOODCHAT_LOG_FORMAT  日志格式 (text/json)")
	fmt.Fprintln(out, "  FLOODCHAT_FX_DEBUG    设为 1 输出组件装配日志")
}
