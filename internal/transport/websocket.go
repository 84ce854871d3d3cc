package transport

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/gan-deng-yan/internal/logger"
	"github.com/palemoky/gan-deng-yan/internal/protocol"
	"github.com/palemoky/gan-deng-yan/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// MaxMessageSize 单条消息的读取上限，全量状态快照可能较大
	MaxMessageSize = 512 * 1024

	// PeerQueryKey 客人连接时携带自己 peerId 的查询参数
	PeerQueryKey = "peer"
)

// WSChannel 基于 gorilla/websocket 的通道
type WSChannel struct {
	peerID   string
	conn     *websocket.Conn
	handlers Handlers

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewWSChannel 包装一个已建立的连接，调用 Start 后开始收发
func NewWSChannel(conn *websocket.Conn, peerID string, h Handlers) *WSChannel {
	return &WSChannel{
		peerID:   peerID,
		conn:     conn,
		handlers: h,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// Dial 以 peerID 的身份连接房主
func Dial(ctx context.Context, rawURL, peerID string, h Handlers) (*WSChannel, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	q := u.Query()
	q.Set(PeerQueryKey, peerID)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	ch := NewWSChannel(conn, peerID, h)
	ch.Start()
	return ch, nil
}

// PeerID 对端 ID
func (c *WSChannel) PeerID() string {
	return c.peerID
}

// Start 启动读写协程并触发 OnOpen
func (c *WSChannel) Start() {
	c.handlers.open(c)
	go c.writePump()
	go c.readPump()
}

// Send 编码后放入发送缓冲区，不阻塞
func (c *WSChannel) Send(msg *protocol.Message) error {
	data, err := codec.Encode(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		logger.LogError("⚠️ 通道 %s 发送缓冲区已满，断开连接", c.peerID)
		_ = c.Close()
		return ErrBufferFull
	}
}

// Close 关闭通道，可重复调用
func (c *WSChannel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// readPump 读取消息并分发给 OnData
func (c *WSChannel) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		_ = c.Close()
		_ = c.conn.Close()
		c.handlers.close(c)
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.handlers.error(c, err)
			}
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			logger.LogError("消息解析错误 (%s): %v", c.peerID, err)
			c.handlers.error(c, err)
			continue
		}
		c.handlers.data(c, msg)
	}
}

// writePump 写出缓冲区中的消息并定时 ping
func (c *WSChannel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush 关闭前尽量写完已排队的消息
func (c *WSChannel) flush() {
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
