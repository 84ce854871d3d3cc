package netsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/palemoky/gan-deng-yan/internal/apperrors"
	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/logger"
	"github.com/palemoky/gan-deng-yan/internal/protocol"
	"github.com/palemoky/gan-deng-yan/internal/protocol/convert"
	"github.com/palemoky/gan-deng-yan/internal/transport"
)

// noticeDuration 房主提示文字的展示时长
const noticeDuration = 3 * time.Second

// Authority 房主端持有权威状态的牌桌，table.Table 实现了它
type Authority interface {
	VersionedSnapshot() (session.GameState, uint64)
	SubscribeVersioned(fn func(state session.GameState, version uint64)) func()
	Join(name, peerID string) (session.Player, error)
	Disconnect(peerID string)
	ProposePlay(playerID string, cards []card.Card, hint int) error
	ProposePass(playerID string) error
}

// Host 房主端：转发客人的动作，广播状态
type Host struct {
	auth Authority

	mu    sync.Mutex
	conns map[string]transport.Channel

	unsubscribe func()
}

// NewHost 创建房主并订阅牌桌的状态变化
func NewHost(auth Authority) *Host {
	h := &Host{
		auth:  auth,
		conns: make(map[string]transport.Channel),
	}
	h.unsubscribe = auth.SubscribeVersioned(h.broadcastState)
	return h
}

// Handlers 客人连接的事件回调
func (h *Host) Handlers() transport.Handlers {
	return transport.Handlers{
		OnOpen:  h.onOpen,
		OnData:  h.onData,
		OnClose: h.onClose,
		OnError: func(ch transport.Channel, err error) {
			logger.LogError("❌ 客人 %s 通道错误: %v", ch.PeerID(), err)
		},
	}
}

// Close 断开所有客人
func (h *Host) Close() {
	h.unsubscribe()

	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]transport.Channel)
	h.mu.Unlock()

	for _, ch := range conns {
		_ = ch.Close()
	}
}

// Run 定时发送心跳，直到 ctx 结束
func (h *Host) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.broadcast(newHeartbeat(now))
		}
	}
}

// ShowMessage 向所有客人广播提示文字
func (h *Host) ShowMessage(text string, d time.Duration) {
	h.broadcast(newShowMessage(text, d))
}

// Peers 当前连接数
func (h *Host) Peers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Host) onOpen(ch transport.Channel) {
	h.mu.Lock()
	if old, ok := h.conns[ch.PeerID()]; ok && old != ch {
		_ = old.Close()
	}
	h.conns[ch.PeerID()] = ch
	h.mu.Unlock()

	logger.LogInfo("🔗 客人 %s 已连接", ch.PeerID())
}

func (h *Host) onClose(ch transport.Channel) {
	h.mu.Lock()
	if h.conns[ch.PeerID()] != ch {
		h.mu.Unlock()
		return
	}
	delete(h.conns, ch.PeerID())
	h.mu.Unlock()

	logger.LogInfo("❌ 客人 %s 已断开", ch.PeerID())
	h.auth.Disconnect(ch.PeerID())
}

func (h *Host) onData(ch transport.Channel, msg *protocol.Message) {
	var err error
	switch msg.Type {
	case protocol.MsgPlayerJoin:
		err = h.handleJoin(ch, msg)
	case protocol.MsgActionPlay:
		err = h.handlePlay(ch, msg)
	case protocol.MsgActionPass:
		err = h.handlePass(ch)
	case protocol.MsgHeartbeat:
		return
	default:
		err = strayMessage(msg.Type)
	}

	if err != nil {
		logger.LogInfo("⚠️ 拒绝客人 %s 的 %s: %v", ch.PeerID(), msg.Type, err)
		_ = ch.Send(apperrors.ToMessage(err))
	}
}

// strayMessage 客人不该发的消息：只该由房主发出的，或者压根不认识的
func strayMessage(t protocol.MessageType) error {
	if t.Known() {
		return apperrors.NewInvalidMessage(fmt.Sprintf("unexpected message %q", t))
	}
	return apperrors.NewInvalidMessage(fmt.Sprintf("unknown message type %q", t))
}

// handleJoin 入座，并单独给该客人发一次当前状态
func (h *Host) handleJoin(ch transport.Channel, msg *protocol.Message) error {
	payload, err := protocol.ParsePayload[protocol.PlayerJoinPayload](msg)
	if err != nil {
		return apperrors.NewInvalidMessage(err.Error())
	}
	// peerId 以通道为准，忽略客人自报的值
	p, err := h.auth.Join(payload.Name, ch.PeerID())
	if err != nil {
		return err
	}

	state, version := h.auth.VersionedSnapshot()
	if err := h.sendState(ch, state, version); err != nil {
		return err
	}
	h.ShowMessage(fmt.Sprintf("%s 加入了房间", p.Name), noticeDuration)
	return nil
}

func (h *Host) handlePlay(ch transport.Channel, msg *protocol.Message) error {
	payload, err := protocol.ParsePayload[protocol.ActionPlayPayload](msg)
	if err != nil {
		return apperrors.NewInvalidMessage(err.Error())
	}
	cards, err := convert.InfosToCards(payload.Cards)
	if err != nil {
		return apperrors.ErrInvalidCards
	}
	id, err := h.seatOf(ch)
	if err != nil {
		return err
	}
	logger.LogDebug("🃏 %s 出牌 %s", id, card.Ranks(cards))
	return h.auth.ProposePlay(id, cards, payload.Hint)
}

func (h *Host) handlePass(ch transport.Channel) error {
	id, err := h.seatOf(ch)
	if err != nil {
		return err
	}
	return h.auth.ProposePass(id)
}

// seatOf 通道对应的座位
func (h *Host) seatOf(ch transport.Channel) (string, error) {
	state, _ := h.auth.VersionedSnapshot()
	p := state.PlayerByPeer(ch.PeerID())
	if p == nil {
		return "", apperrors.ErrNotInRoom
	}
	return p.ID, nil
}

// broadcastState 牌桌的订阅回调，在牌桌的锁内调用
func (h *Host) broadcastState(state session.GameState, version uint64) {
	msg, err := newSyncState(state, version)
	if err != nil {
		logger.LogError("❌ 编码状态失败: %v", err)
		return
	}
	h.broadcast(msg)
}

func (h *Host) sendState(ch transport.Channel, state session.GameState, version uint64) error {
	msg, err := newSyncState(state, version)
	if err != nil {
		return err
	}
	return ch.Send(msg)
}

func (h *Host) broadcast(msg *protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.conns {
		if err := ch.Send(msg); err != nil {
			logger.LogError("❌ 发送给 %s 失败: %v", id, err)
		}
	}
}
