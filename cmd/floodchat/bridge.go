package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dep2p/go-floodchat/internal/protocol/floodsub"
)

// publisher 发布到主题
type publisher interface {
	Publish(topic string, data []byte) error
}

// nexter 逐条读取订阅消息
type nexter interface {
	Next(ctx context.Context) (*floodsub.Message, error)
}

// publishLines 把 r 的每一行发布到 topic，直到 EOF
//
// 行尾的 \n 与 \r\n 被去掉；EOF 前没有换行的最后一行也会发布。
// 发布失败只记录日志。
func publishLines(r io.Reader, topic string, pub publisher) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if perr := pub.Publish(topic, []byte(line)); perr != nil {
				logger.Warn("发布失败", "topic", topic, "error", perr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// printMessages 把订阅到的消息写到 w，直到 ctx 取消或订阅关闭
func printMessages(ctx context.Context, sub nexter, w io.Writer) error {
	for {
		m, err := sub.Next(ctx)
		if err != nil {
			if errors.Is(err, floodsub.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if utf8.Valid(m.Data) {
			fmt.Fprintf(w, "> %s\n", m.Data)
		} else {
			fmt.Fprintln(w, "Received non-utf8 message")
		}
	}
}
