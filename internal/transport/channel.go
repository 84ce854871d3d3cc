// Package transport 房主与客人之间的点对点消息通道。
//
// 通道只负责有序地投递 protocol.Message，不关心消息内容。
// 同一个通道上的 OnData 回调按接收顺序串行调用。
package transport

import (
	"errors"

	"github.com/palemoky/gan-deng-yan/internal/protocol"
)

var (
	// ErrClosed 通道已关闭
	ErrClosed = errors.New("transport: channel closed")
	// ErrBufferFull 发送缓冲区已满，对端读得太慢
	ErrBufferFull = errors.New("transport: send buffer full")
)

// sendBufferSize 每个通道的发送缓冲区
const sendBufferSize = 256

// Channel 一条双向消息通道
type Channel interface {
	Send(msg *protocol.Message) error
	Close() error
	PeerID() string
}

// Handlers 通道事件回调，未设置的回调会被忽略
type Handlers struct {
	OnOpen  func(ch Channel)
	OnData  func(ch Channel, msg *protocol.Message)
	OnClose func(ch Channel)
	OnError func(ch Channel, err error)
}

func (h Handlers) open(ch Channel) {
	if h.OnOpen != nil {
		h.OnOpen(ch)
	}
}

func (h Handlers) data(ch Channel, msg *protocol.Message) {
	if h.OnData != nil {
		h.OnData(ch, msg)
	}
}

func (h Handlers) close(ch Channel) {
	if h.OnClose != nil {
		h.OnClose(ch)
	}
}

func (h Handlers) error(ch Channel, err error) {
	if h.OnError != nil {
		h.OnError(ch, err)
	}
}
