package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-floodchat/config"
	"github.com/dep2p/go-floodchat/internal/util/logger"
)

var log = logger.Logger("core/metrics")

// Server /metrics HTTP 服务
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// NewServer 在 addr 上监听并导出 rec 的指标
func NewServer(addr string, rec *Recorder) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	return &Server{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		ln:  ln,
	}, nil
}

// Addr 实际监听地址
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve 阻塞直到 Shutdown
func (s *Server) Serve() error {
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// ServerParams 服务依赖
type ServerParams struct {
	fx.In

	Recorder   *Recorder      `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
}

// ProvideServer 配置了 ListenAddr 且启用指标时创建服务，否则返回 nil
func ProvideServer(p ServerParams, lc fx.Lifecycle) (*Server, error) {
	if p.Recorder == nil || p.UnifiedCfg == nil || p.UnifiedCfg.Metrics.ListenAddr == "" {
		return nil, nil
	}

	s, err := NewServer(p.UnifiedCfg.Metrics.ListenAddr, p.Recorder)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := s.Serve(); err != nil {
					log.Warn("指标服务退出", "error", err)
				}
			}()
			log.Info("指标服务已启动", "addr", s.Addr().String())
			return nil
		},
		OnStop: s.Shutdown,
	})
	return s, nil
}
