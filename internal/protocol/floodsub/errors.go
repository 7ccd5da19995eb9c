package floodsub

import "errors"

// 错误定义
var (
	// ErrInvalidTopic 主题名无效（空、非 UTF-8 或超长）
	ErrInvalidTopic = errors.New("floodsub: invalid topic")

	// ErrMessageTooLarge 编码后的帧超过上限
	ErrMessageTooLarge = errors.New("floodsub: message too large")

	// ErrMalformedFrame 无法解析的入站帧
	ErrMalformedFrame = errors.New("floodsub: malformed frame")

	// ErrClosed 服务已关闭
	ErrClosed = errors.New("floodsub: closed")
)

// errFramingLost 长度前缀损坏，之后的字节流无法再分帧
var errFramingLost = errors.New("floodsub: frame length corrupted")
