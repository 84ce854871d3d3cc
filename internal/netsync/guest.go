package netsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/rule"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/logger"
	"github.com/palemoky/gan-deng-yan/internal/protocol"
	"github.com/palemoky/gan-deng-yan/internal/protocol/convert"
	"github.com/palemoky/gan-deng-yan/internal/transport"
)

// ErrNotConnected 还没有连上房主
var ErrNotConnected = errors.New("netsync: not connected to host")

// LostHostNotice 长时间收不到房主心跳时的提示
const LostHostNotice = "与房主失去联系"

// Notice 房主发来的提示或错误
type Notice struct {
	Text     string
	Duration time.Duration
	IsError  bool
}

// Guest 客人端：本地状态只读，动作全部发给房主
type Guest struct {
	peerID string
	name   string

	mu            sync.Mutex
	ch            transport.Channel
	state         session.GameState
	lastSeq       uint64
	lastHeartbeat time.Time
	openedAt      time.Time

	subs    map[int]func(session.GameState)
	notices map[int]func(Notice)
	nextID  int
}

// NewGuest 创建客人，peerID 是本节点的连接 ID
func NewGuest(peerID, name string) *Guest {
	return &Guest{
		peerID:  peerID,
		name:    name,
		state:   lobbyState(),
		subs:    make(map[int]func(session.GameState)),
		notices: make(map[int]func(Notice)),
	}
}

func lobbyState() session.GameState {
	gs := session.New()
	gs.Network.Role = session.RoleGuest
	return *gs
}

// Handlers 连接房主的事件回调
func (g *Guest) Handlers() transport.Handlers {
	return transport.Handlers{
		OnOpen:  g.onOpen,
		OnData:  g.onData,
		OnClose: g.onClose,
		OnError: func(_ transport.Channel, err error) {
			logger.LogError("❌ 与房主的通道错误: %v", err)
		},
	}
}

// PeerID 本节点的连接 ID
func (g *Guest) PeerID() string {
	return g.peerID
}

// Snapshot 最近一次收到的状态
func (g *Guest) Snapshot() session.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return *g.state.Clone()
}

// LastSeq 最近一次接受的快照序号
func (g *Guest) LastSeq() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSeq
}

// LastHeartbeat 最近一次收到心跳的时间
func (g *Guest) LastHeartbeat() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastHeartbeat
}

// Subscribe 订阅状态替换，回调在接收协程中调用
func (g *Guest) Subscribe(fn func(session.GameState)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextID
	g.nextID++
	g.subs[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

// OnNotice 订阅房主的提示文字和错误
func (g *Guest) OnNotice(fn func(Notice)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextID
	g.nextID++
	g.notices[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.notices, id)
	}
}

// ProposePlay 请求出牌。playerID 被忽略，座位由房主按连接确定。
func (g *Guest) ProposePlay(_ string, cards []card.Card, hint int) error {
	msg, err := protocol.NewMessage(protocol.MsgActionPlay, protocol.ActionPlayPayload{
		Cards:    convert.CardsToInfos(cards),
		Analysis: rule.Analyze(cards, hint),
		Hint:     hint,
	})
	if err != nil {
		return err
	}
	return g.send(msg)
}

// ProposePass 请求不出
func (g *Guest) ProposePass(_ string) error {
	return g.send(protocol.MustNewMessage(protocol.MsgActionPass, nil))
}

// Leave 断开与房主的连接
func (g *Guest) Leave() error {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()

	if ch == nil {
		return nil
	}
	return ch.Close()
}

func (g *Guest) send(msg *protocol.Message) error {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()

	if ch == nil {
		return ErrNotConnected
	}
	return ch.Send(msg)
}

// Watch 检查房主心跳，连接中超过 timeout 没有心跳就提示一次，恢复后重新计时。
// 阻塞到 ctx 结束。
func (g *Guest) Watch(ctx context.Context, timeout time.Duration) {
	ticker := time.NewTicker(max(timeout/4, time.Millisecond))
	defer ticker.Stop()

	lost := false
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			stale := g.silentFor(now) > timeout
			if stale && !lost {
				logger.LogWarn("⚠️ %v 没有收到房主心跳", timeout)
				g.notify(Notice{Text: LostHostNotice, Duration: noticeDuration, IsError: true})
			}
			lost = stale
		}
	}
}

// silentFor 距上次心跳（或建立连接）多久，未连接时为 0
func (g *Guest) silentFor(now time.Time) time.Duration {
	last := g.LastHeartbeat()

	g.mu.Lock()
	connected, opened := g.ch != nil, g.openedAt
	g.mu.Unlock()

	if !connected {
		return 0
	}
	if last.Before(opened) {
		last = opened
	}
	return now.Sub(last)
}

func (g *Guest) onOpen(ch transport.Channel) {
	g.mu.Lock()
	g.ch = ch
	g.openedAt = time.Now()
	g.mu.Unlock()

	join := protocol.MustNewMessage(protocol.MsgPlayerJoin, protocol.PlayerJoinPayload{
		Name:   g.name,
		PeerID: g.peerID,
	})
	if err := ch.Send(join); err != nil {
		logger.LogError("❌ 发送加入请求失败: %v", err)
	}
}

func (g *Guest) onData(_ transport.Channel, msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgSyncState:
		payload, err := protocol.ParsePayload[SyncStatePayload](msg)
		if err != nil {
			logger.LogError("❌ 状态解析失败: %v", err)
			return
		}
		g.ApplySnapshot(msg.Seq, payload.State)

	case protocol.MsgShowMessage:
		payload, err := protocol.ParsePayload[protocol.ShowMessagePayload](msg)
		if err != nil {
			return
		}
		g.notify(Notice{Text: payload.Text, Duration: time.Duration(payload.Duration) * time.Millisecond})

	case protocol.MsgError:
		payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
		if err != nil {
			return
		}
		g.notify(Notice{Text: payload.Message, Duration: noticeDuration, IsError: true})

	case protocol.MsgHeartbeat:
		g.mu.Lock()
		g.lastHeartbeat = time.Now()
		g.mu.Unlock()
	}
}

// onClose 与房主断开后回到大厅
func (g *Guest) onClose(transport.Channel) {
	g.mu.Lock()
	g.ch = nil
	g.state = lobbyState()
	g.lastSeq = 0
	state := *g.state.Clone()
	subs := g.subscribers()
	g.mu.Unlock()

	logger.LogInfo("❌ 与房主断开，回到大厅")
	for _, fn := range subs {
		fn(state)
	}
}

// ApplySnapshot 用房主的快照整体替换本地状态，过期或重复的快照被丢弃。
// 返回是否被接受。
func (g *Guest) ApplySnapshot(seq uint64, state session.GameState) bool {
	g.mu.Lock()
	if seq <= g.lastSeq {
		g.mu.Unlock()
		return false
	}
	g.lastSeq = seq

	state = *state.Clone()
	// 网络身份每个节点各自填写
	state.Network = session.Network{Role: session.RoleGuest, RoomID: state.Network.RoomID}
	if p := state.PlayerByPeer(g.peerID); p != nil {
		state.Network.MyPlayerID = p.ID
	}
	g.state = state
	snap := *state.Clone()
	subs := g.subscribers()
	g.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return true
}

func (g *Guest) subscribers() []func(session.GameState) {
	subs := make([]func(session.GameState), 0, len(g.subs))
	for _, fn := range g.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (g *Guest) notify(n Notice) {
	g.mu.Lock()
	fns := make([]func(Notice), 0, len(g.notices))
	for _, fn := range g.notices {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(n)
	}
}
