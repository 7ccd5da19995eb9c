package floodsub

import (
	"fmt"
	"unicode/utf8"
)

// MaxTopicLen 主题名最大字节数
const MaxTopicLen = 256

// Topic 经过校验的主题名
//
// 零值无效，所有接受 Topic 的方法都会拒绝它。
type Topic struct {
	name string
}

// NewTopic 校验并创建主题
func NewTopic(name string) (Topic, error) {
	if err := validateTopic(name); err != nil {
		return Topic{}, err
	}
	return Topic{name: name}, nil
}

// MustTopic 同 NewTopic，失败时 panic
func MustTopic(name string) Topic {
	t, err := NewTopic(name)
	if err != nil {
		panic(err)
	}
	return t
}

// String 主题名
func (t Topic) String() string { return t.name }

// IsZero 是否为零值
func (t Topic) IsZero() bool { return t.name == "" }

func validateTopic(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidTopic)
	case len(name) > MaxTopicLen:
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidTopic, len(name), MaxTopicLen)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: not valid utf-8", ErrInvalidTopic)
	}
	return nil
}
