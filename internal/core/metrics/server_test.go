package metrics

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-floodchat/config"
)

// TestModule_Server 测试配置监听地址后通过 HTTP 导出指标
func TestModule_Server(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.ListenAddr = "127.0.0.1:0"

	var (
		rec *Recorder
		srv *Server
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&rec, &srv),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, rec)
	require.NotNil(t, srv)
	rec.Malformed()

	resp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "floodchat_floodsub_malformed_frames_total 1")
}

// TestModule_NoServer 测试未配置地址时不启动服务
func TestModule_NoServer(t *testing.T) {
	var srv *Server
	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module,
		fx.Populate(&srv),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Nil(t, srv)
}
