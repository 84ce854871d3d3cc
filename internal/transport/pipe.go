package transport

import (
	"sync"

	"github.com/palemoky/gan-deng-yan/internal/logger"
	"github.com/palemoky/gan-deng-yan/internal/protocol"
	"github.com/palemoky/gan-deng-yan/internal/protocol/codec"
)

// pipeConn 两端共享的关闭状态
type pipeConn struct {
	done      chan struct{}
	closeOnce sync.Once
}

// PipeEnd 内存通道的一端。消息经过编解码，收发双方不共享内存。
type PipeEnd struct {
	peerID   string
	conn     *pipeConn
	inbox    chan []byte
	other    *PipeEnd
	handlers Handlers
}

// Pipe 创建一对相连的内存通道，用于单机调试和测试。
// 两端的 PeerID 都是 peerID（即客人的 ID）。调用 Start 后开始投递。
func Pipe(peerID string, hostSide, guestSide Handlers) (host, guest *PipeEnd) {
	conn := &pipeConn{done: make(chan struct{})}
	host = &PipeEnd{peerID: peerID, conn: conn, inbox: make(chan []byte, sendBufferSize), handlers: hostSide}
	guest = &PipeEnd{peerID: peerID, conn: conn, inbox: make(chan []byte, sendBufferSize), handlers: guestSide}
	host.other, guest.other = guest, host
	return host, guest
}

// StartPipe 启动两端，先通知房主端再通知客人端
func StartPipe(host, guest *PipeEnd) {
	host.Start()
	guest.Start()
}

// PeerID 客人 ID
func (p *PipeEnd) PeerID() string {
	return p.peerID
}

// Start 触发 OnOpen 并开始投递
func (p *PipeEnd) Start() {
	p.handlers.open(p)
	go p.loop()
}

// Send 编码后放入对端的收件箱，不阻塞
func (p *PipeEnd) Send(msg *protocol.Message) error {
	data, err := codec.Encode(msg)
	if err != nil {
		return err
	}

	select {
	case <-p.conn.done:
		return ErrClosed
	default:
	}

	select {
	case p.other.inbox <- data:
		return nil
	default:
		_ = p.Close()
		return ErrBufferFull
	}
}

// Close 关闭整条通道，两端都会收到 OnClose
func (p *PipeEnd) Close() error {
	p.conn.closeOnce.Do(func() {
		close(p.conn.done)
	})
	return nil
}

func (p *PipeEnd) loop() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		p.handlers.close(p)
	}()

	for {
		select {
		case data := <-p.inbox:
			p.deliver(data)
		case <-p.conn.done:
			// 关闭前已送达的消息仍然投递
			for {
				select {
				case data := <-p.inbox:
					p.deliver(data)
				default:
					return
				}
			}
		}
	}
}

func (p *PipeEnd) deliver(data []byte) {
	msg, err := codec.Decode(data)
	if err != nil {
		p.handlers.error(p, err)
		return
	}
	p.handlers.data(p, msg)
}
