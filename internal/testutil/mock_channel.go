//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/gan-deng-yan/internal/protocol"
)

// MockChannel 实现 transport.Channel 的 mock
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Send(msg *protocol.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockChannel) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockChannel) PeerID() string {
	args := m.Called()
	return args.String(0)
}

// SimpleChannel 记录发出的消息，不使用 testify（用于不需要断言调用的测试）
type SimpleChannel struct {
	ID string

	mu       sync.Mutex
	messages []*protocol.Message
	closed   bool
}

func (c *SimpleChannel) PeerID() string { return c.ID }

func (c *SimpleChannel) Send(msg *protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *SimpleChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Messages 已发送消息的副本
func (c *SimpleChannel) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Message(nil), c.messages...)
}

// Closed 是否已关闭
func (c *SimpleChannel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
