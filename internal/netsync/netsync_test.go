package netsync

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/gan-deng-yan/internal/game/bot"
	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/protocol"
	"github.com/palemoky/gan-deng-yan/internal/protocol/codec"
	"github.com/palemoky/gan-deng-yan/internal/table"
	"github.com/palemoky/gan-deng-yan/internal/transport"
)

const (
	waitFor = 3 * time.Second
	tick    = 2 * time.Millisecond
)

type room struct {
	tbl    *table.Table
	host   *Host
	hostID string
}

func newRoom(t *testing.T, seed uint64) *room {
	t.Helper()

	tbl := table.New(table.Options{
		BotThink: time.Hour,
		Deal:     time.Millisecond,
		Rand:     rand.New(rand.NewPCG(seed, seed)),
	})
	t.Cleanup(tbl.Close)

	hostID, err := tbl.SeatLocal("房主", session.RoleHost)
	require.NoError(t, err)
	require.NoError(t, tbl.OpenRoom("room-1"))

	host := NewHost(tbl)
	t.Cleanup(host.Close)
	return &room{tbl: tbl, host: host, hostID: hostID}
}

// connect 用内存通道把客人接入房间
func (r *room) connect(g *Guest) (hostEnd, guestEnd *transport.PipeEnd) {
	hostEnd, guestEnd = transport.Pipe(g.PeerID(), r.host.Handlers(), g.Handlers())
	transport.StartPipe(hostEnd, guestEnd)
	return hostEnd, guestEnd
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *noticeLog) add(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) errors() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errs []Notice
	for _, n := range l.notices {
		if n.IsError {
			errs = append(errs, n)
		}
	}
	return errs
}

func TestGuestJoin(t *testing.T) {
	t.Parallel()

	r := newRoom(t, 1)
	g := NewGuest("peer-1", "小明")
	r.connect(g)

	require.Eventually(t, func() bool { return g.Snapshot().Network.MyPlayerID != "" }, waitFor, tick)

	state := g.Snapshot()
	assert.Equal(t, session.StatusWaiting, state.Status)
	assert.Equal(t, session.RoleGuest, state.Network.Role)
	assert.Equal(t, "room-1", state.Network.RoomID)
	require.Len(t, state.Players, 2)
	me := state.Player(state.Network.MyPlayerID)
	assert.Equal(t, "小明", me.Name)
	assert.Equal(t, "peer-1", me.PeerID)

	_, version := r.tbl.VersionedSnapshot()
	assert.Equal(t, version, g.LastSeq())
	assert.Equal(t, 1, r.host.Peers())
}

func TestGuestActionsGoThroughHost(t *testing.T) {
	t.Parallel()

	r := newRoom(t, 5)
	g := NewGuest("peer-1", "小明")
	var notices noticeLog
	g.OnNotice(notices.add)
	r.connect(g)

	require.Eventually(t, func() bool { return len(g.Snapshot().Players) == 2 }, waitFor, tick)
	require.NoError(t, r.tbl.StartNewHand(2))
	require.Eventually(t, func() bool { return g.Snapshot().Status == session.StatusPlaying }, waitFor, tick)

	state := r.tbl.Snapshot()
	if state.CurrentPlayer().ID == r.hostID {
		move := bot.Choose(state.CurrentPlayer().Hand, nil)
		require.NoError(t, r.tbl.ProposePlay(r.hostID, move.Cards, move.Hint))
	}

	// 轮到客人：按电脑策略出牌，经房主执行
	require.Eventually(t, func() bool {
		s := g.Snapshot()
		return s.CurrentPlayer() != nil && s.CurrentPlayer().ID == s.Network.MyPlayerID
	}, waitFor, tick)
	guestView := g.Snapshot()
	_, before := r.tbl.VersionedSnapshot()

	me := guestView.Player(guestView.Network.MyPlayerID)
	move := bot.Choose(me.Hand, guestView.LastHand())
	if move.IsPass() {
		require.NoError(t, g.ProposePass(""))
	} else {
		require.NoError(t, g.ProposePlay("", move.Cards, move.Hint))
	}

	require.Eventually(t, func() bool {
		_, v := r.tbl.VersionedSnapshot()
		return v > before && g.LastSeq() == v
	}, waitFor, tick)
	assert.Empty(t, notices.errors())

	// 用房主的牌冒充：被拒绝，只有这个客人收到错误
	snap := r.tbl.Snapshot()
	hostHand := snap.Player(r.hostID).Hand
	_, before = r.tbl.VersionedSnapshot()
	require.NoError(t, g.ProposePlay("", []card.Card{hostHand[0]}, 0))

	require.Eventually(t, func() bool { return len(notices.errors()) == 1 }, waitFor, tick)
	_, after := r.tbl.VersionedSnapshot()
	assert.Equal(t, before, after, "rejected action does not mutate")
}

func TestApplySnapshot_Idempotent(t *testing.T) {
	t.Parallel()

	g := NewGuest("peer-2", "客人")
	var received []session.GameState
	g.Subscribe(func(s session.GameState) { received = append(received, s) })

	gs := session.NewTestGame([][]card.Card{
		{session.CardOf(card.Spade, card.Rank3)},
		{session.CardOf(card.Heart, card.Rank4)},
	}, nil)
	gs.Players[1].PeerID = "peer-2"
	gs.Network = session.Network{Role: session.RoleHost, RoomID: "r", MyPlayerID: "p1"}

	require.True(t, g.ApplySnapshot(3, *gs))
	first := g.Snapshot()
	assert.Equal(t, "p2", first.Network.MyPlayerID, "seat derived from own peer id")
	assert.Equal(t, session.RoleGuest, first.Network.Role)

	// 重复和过期的快照都被丢弃
	assert.False(t, g.ApplySnapshot(3, *gs))
	stale := *gs.Clone()
	stale.Status = session.StatusLobby
	assert.False(t, g.ApplySnapshot(2, stale))

	assert.Equal(t, first, g.Snapshot())
	assert.Len(t, received, 1)
	assert.Equal(t, uint64(3), g.LastSeq())

	// 修改传入的状态不影响本地副本
	gs.Players[0].Hand[0] = session.CardOf(card.Club, card.Rank9)
	assert.Equal(t, first, g.Snapshot())
}

func TestSyncStateRoundTrip(t *testing.T) {
	t.Parallel()

	gs := session.NewTestGame([][]card.Card{
		{session.CardOf(card.Spade, card.Rank3), session.CardOf(card.Joker, card.RankBigJoker)},
		{session.CardOf(card.Heart, card.Rank4)},
	}, []card.Card{session.CardOf(card.Diamond, card.Rank5)})
	_, err := gs.Play("p1", []card.Card{session.CardOf(card.Spade, card.Rank3)}, 0)
	require.NoError(t, err)

	msg, err := newSyncState(*gs, 9)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgSyncState, msg.Type)
	assert.Equal(t, uint64(9), msg.Seq)

	payload, err := protocol.ParsePayload[SyncStatePayload](msg)
	require.NoError(t, err)

	got := payload.State
	assert.Equal(t, gs.Players[0].Hand, got.Players[0].Hand)
	assert.Equal(t, gs.TablePile, got.TablePile)
	assert.Equal(t, gs.Deck, got.Deck)
	assert.Equal(t, gs.CurrentPlayerIndex, got.CurrentPlayerIndex)
	assert.Equal(t, gs.Scores, got.Scores)
	require.NoError(t, got.CheckInvariants())
}

func TestSyncState_SizeStaysBounded(t *testing.T) {
	t.Parallel()

	// 满座七人打了很多手之后，快照仍然远小于读取上限
	gs := session.New()
	for range session.MaxPlayers {
		_, err := gs.AddPlayer(session.Player{ID: uuid.NewString(), Role: session.RoleGuest})
		require.NoError(t, err)
	}
	require.NoError(t, gs.StartNewHand(rand.New(rand.NewPCG(3, 3))))
	for hand := range 1000 {
		entry := make(map[string]int, len(gs.Players))
		for _, p := range gs.Players {
			entry[p.ID] = -hand
		}
		gs.GameHistory = append(gs.GameHistory, entry)
	}

	msg, err := newSyncState(*gs, 1)
	require.NoError(t, err)
	data, err := codec.Encode(msg)
	require.NoError(t, err)
	assert.Less(t, len(data), transport.MaxMessageSize/8)

	payload, err := protocol.ParsePayload[SyncStatePayload](msg)
	require.NoError(t, err)
	require.Len(t, payload.State.GameHistory, SyncHistoryLimit)
	assert.Equal(t, gs.GameHistory[len(gs.GameHistory)-1], payload.State.GameHistory[SyncHistoryLimit-1])
	assert.Len(t, gs.GameHistory, 1000, "the authoritative history is untouched")
}

func TestGuestDisconnect(t *testing.T) {
	t.Parallel()

	r := newRoom(t, 2)
	g := NewGuest("peer-1", "小明")
	states := make(chan session.GameState, 16)
	g.Subscribe(func(s session.GameState) { states <- s })
	r.connect(g)

	require.Eventually(t, func() bool { return len(r.tbl.Snapshot().Players) == 2 }, waitFor, tick)
	require.NoError(t, r.tbl.StartNewHand(2))
	require.Eventually(t, func() bool { return g.Snapshot().Status == session.StatusPlaying }, waitFor, tick)

	require.NoError(t, g.Leave())

	// 客人回到大厅，房主那边由电脑接管
	require.Eventually(t, func() bool { return g.Snapshot().Status == session.StatusLobby }, waitFor, tick)
	require.Eventually(t, func() bool {
		return r.tbl.Snapshot().Players[1].IsAI && r.host.Peers() == 0
	}, waitFor, tick)
	assert.Zero(t, g.LastSeq())
	assert.ErrorIs(t, g.ProposePass(""), ErrNotConnected)
}

func TestHeartbeatAndNotices(t *testing.T) {
	t.Parallel()

	r := newRoom(t, 3)
	g := NewGuest("peer-1", "小明")
	var notices noticeLog
	g.OnNotice(notices.add)
	r.connect(g)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go r.host.Run(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool { return !g.LastHeartbeat().IsZero() }, waitFor, tick)

	// 加入时房主广播了一条提示
	require.Eventually(t, func() bool {
		notices.mu.Lock()
		defer notices.mu.Unlock()
		for _, n := range notices.notices {
			if n.Text == "小明 加入了房间" && n.Duration == noticeDuration {
				return true
			}
		}
		return false
	}, waitFor, tick)
}

func TestGuestWatch_LostHost(t *testing.T) {
	t.Parallel()

	lostNotices := func(l *noticeLog) int {
		n := 0
		for _, e := range l.errors() {
			if e.Text == LostHostNotice {
				n++
			}
		}
		return n
	}

	tests := []struct {
		name      string
		heartbeat time.Duration
		lost      bool
	}{
		{"host goes quiet", 0, true},
		{"heartbeats keep flowing", 2 * time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newRoom(t, 3)
			g := NewGuest("peer-1", "小明")
			var notices noticeLog
			g.OnNotice(notices.add)
			r.connect(g)

			ctx, cancel := context.WithCancel(context.Background())
			t.Cleanup(cancel)
			if tt.heartbeat > 0 {
				go r.host.Run(ctx, tt.heartbeat)
				require.Eventually(t, func() bool { return !g.LastHeartbeat().IsZero() }, waitFor, tick)
			}
			go g.Watch(ctx, 60*time.Millisecond)

			if tt.lost {
				require.Eventually(t, func() bool { return lostNotices(&notices) == 1 }, waitFor, tick)
				// 只提示一次
				time.Sleep(150 * time.Millisecond)
				assert.Equal(t, 1, lostNotices(&notices))
				return
			}
			time.Sleep(200 * time.Millisecond)
			assert.Zero(t, lostNotices(&notices))
		})
	}
}

func TestHostRejectsUnexpectedMessage(t *testing.T) {
	t.Parallel()

	r := newRoom(t, 4)
	var notices noticeLog
	guestSide := transport.Handlers{
		OnData: func(_ transport.Channel, msg *protocol.Message) {
			if msg.Type == protocol.MsgError {
				p, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
				if err == nil {
					notices.add(Notice{Text: p.Message, IsError: p.Code == protocol.ErrCodeInvalidMsg})
				}
			}
		},
	}
	hostEnd, guestEnd := transport.Pipe("raw-peer", r.host.Handlers(), guestSide)
	transport.StartPipe(hostEnd, guestEnd)

	require.NoError(t, guestEnd.Send(protocol.MustNewMessage(protocol.MsgSyncState, nil)))
	require.NoError(t, guestEnd.Send(protocol.MustNewMessage(protocol.MsgActionPass, nil)))

	require.Eventually(t, func() bool {
		notices.mu.Lock()
		defer notices.mu.Unlock()
		return len(notices.notices) == 2
	}, waitFor, tick)

	assert.Len(t, notices.errors(), 1, "SYNC_STATE from a guest is an invalid message")
	notices.mu.Lock()
	defer notices.mu.Unlock()
	assert.Equal(t, "您不在房间中", notices.notices[1].Text)
}
