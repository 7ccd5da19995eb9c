// Package logger 提供 floodchat 的分级结构化日志
//
// 基于 log/slog，每个子系统一个 Logger，级别可通过环境变量单独设置：
//
//	FLOODCHAT_LOG_LEVEL=core/swarm=debug,protocol/floodsub=warn,info
//	FLOODCHAT_LOG_FORMAT=json
//
// 使用方式:
//
//	var log = logger.Logger("core/swarm")
//
//	log.Info("连接已升级", "conn", c.ID(), "protocol", proto)
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// 子系统 -> *slog.Logger
	loggers sync.Map

	// 子系统 -> *slog.LevelVar，用于运行时调整级别
	levels sync.Map
)

// Logger 返回子系统对应的 Logger，同名子系统共享同一实例
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	lv := new(slog.LevelVar)
	lv.Set(cfg.LevelFor(subsystem))

	l := slog.New(newHandler(subsystem, lv, cfg))
	actual, loaded := loggers.LoadOrStore(subsystem, l)
	if !loaded {
		levels.Store(subsystem, lv)
	}
	return actual.(*slog.Logger)
}

// SetLevel 运行时修改子系统日志级别
//
// 子系统尚未创建 Logger 时，级别在首次创建时生效。
func SetLevel(subsystem string, level slog.Level) {
	if lv, ok := levels.Load(subsystem); ok {
		lv.(*slog.LevelVar).Set(level)
		return
	}
	cfg := ConfigFromEnv()
	cfg.mu.Lock()
	cfg.Subsystems[subsystem] = level
	cfg.mu.Unlock()
}

// SetAllLevels 修改所有已创建子系统以及默认级别
func SetAllLevels(level slog.Level) {
	cfg := ConfigFromEnv()
	cfg.mu.Lock()
	cfg.Default = level
	cfg.mu.Unlock()

	levels.Range(func(_, v any) bool {
		v.(*slog.LevelVar).Set(level)
		return true
	})
}

// SetOutput 切换所有 Logger 的输出目标，已创建的 Logger 同样生效
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// Discard 返回丢弃所有记录的 Logger，测试中使用
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}
