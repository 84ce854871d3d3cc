// Package session 干瞪眼的回合状态机。
//
// GameState 是一个普通值对象，本身不加锁；并发控制由上层 table 包负责，
// 所有修改都经过同一个串行更新入口。
package session

import (
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/rule"
	"github.com/palemoky/gan-deng-yan/internal/game/score"
)

// Status 牌局阶段
type Status string

const (
	StatusLobby       Status = "lobby"
	StatusWaiting     Status = "waiting" // 多人房间等待加入
	StatusDealing     Status = "dealing"
	StatusPlaying     Status = "playing"
	StatusCelebrating Status = "celebrating"
	StatusScoring     Status = "scoring"
)

// Action 玩家本轮的最后动作
type Action string

const (
	ActionNone Action = ""
	ActionPlay Action = "PLAY"
	ActionPass Action = "PASS"
)

// Role 座位身份
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
	RoleBot   Role = "bot"
	RoleLocal Role = "local" // 单机模式下的真人
)

// 牌局参数
const (
	MinPlayers       = 2
	MaxPlayers       = 7
	DealerCards      = 6
	OtherCards       = 5
	StalemateRounds  = 2 // 牌堆空后连续多少轮无人出完即流局
	StalemateMessage = "牌堆已空且无人出完，本局流局，重新发牌"
)

// seatColors 按座位分配的显示颜色
var seatColors = []string{"#E74C3C", "#3498DB", "#2ECC71", "#F1C40F", "#9B59B6", "#E67E22", "#1ABC9C"}

// Player 座位上的玩家
type Player struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	IsAI       bool        `json:"isAI"`
	Hand       []card.Card `json:"hand"`
	CardsLeft  int         `json:"cardsLeft"` // 始终等于 len(Hand)
	HasPlayed  bool        `json:"hasPlayed"`
	LastAction Action      `json:"lastAction,omitempty"`
	Role       Role        `json:"role"`
	Color      string      `json:"color"`
	PeerID     string      `json:"peerId,omitempty"`
}

// setHand 替换手牌并同步 CardsLeft
func (p *Player) setHand(hand []card.Card) {
	card.SortHand(hand)
	p.Hand = hand
	p.CardsLeft = len(hand)
}

// PlayedHand 桌面上的一手牌
type PlayedHand struct {
	PlayerID string      `json:"playerId"`
	Cards    []card.Card `json:"cards"`
	rule.Hand
}

// Network 本节点的联网身份，不同节点各自填写
type Network struct {
	Role       Role   `json:"role"`
	RoomID     string `json:"roomId,omitempty"`
	MyPlayerID string `json:"myPlayerId,omitempty"`
}

// GameState 完整的牌局状态
type GameState struct {
	Status                       Status           `json:"status"`
	Players                      []*Player        `json:"players"`
	Deck                         []card.Card      `json:"deck"`
	TablePile                    []PlayedHand     `json:"tablePile"`
	DiscardPile                  []card.Card      `json:"discardPile"` // 已结束轮次打出的牌
	CurrentPlayerIndex           int              `json:"currentPlayerIndex"`
	LastWinnerIndex              int              `json:"lastWinnerIndex"`
	DealerID                     int              `json:"dealerId"` // 庄家座位号
	PassesInARow                 int              `json:"passesInARow"`
	RoundsFinishedAfterDeckEmpty int              `json:"roundsFinishedAfterDeckEmpty"`
	BombCount                    int              `json:"bombCount"`
	Scores                       map[string]int   `json:"scores"`
	GameHistory                  []map[string]int `json:"gameHistory"`
	Network                      Network          `json:"network"`
	HandNumber                   int              `json:"handNumber"`
	WinnerID                     string           `json:"winnerId,omitempty"`
	Message                      string           `json:"message,omitempty"`

	rng *rand.Rand
}

// New 创建处于大厅阶段的空牌局
func New() *GameState {
	return &GameState{
		Status: StatusLobby,
		Scores: make(map[string]int),
	}
}

// SetRand 设置洗牌和选庄使用的随机源，nil 表示全局随机源
func (gs *GameState) SetRand(rng *rand.Rand) {
	gs.rng = rng
}

func (gs *GameState) intN(n int) int {
	if gs.rng == nil {
		return rand.IntN(n)
	}
	return gs.rng.IntN(n)
}

// CurrentPlayer 当前行动的玩家
func (gs *GameState) CurrentPlayer() *Player {
	if gs.CurrentPlayerIndex < 0 || gs.CurrentPlayerIndex >= len(gs.Players) {
		return nil
	}
	return gs.Players[gs.CurrentPlayerIndex]
}

// PlayerIndex 按 ID 查找座位号，找不到返回 -1
func (gs *GameState) PlayerIndex(playerID string) int {
	for i, p := range gs.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Player 按 ID 查找玩家
func (gs *GameState) Player(playerID string) *Player {
	if i := gs.PlayerIndex(playerID); i >= 0 {
		return gs.Players[i]
	}
	return nil
}

// PlayerByPeer 按连接 ID 查找玩家
func (gs *GameState) PlayerByPeer(peerID string) *Player {
	if peerID == "" {
		return nil
	}
	for _, p := range gs.Players {
		if p.PeerID == peerID {
			return p
		}
	}
	return nil
}

// LastPlayed 桌面上最后一手牌，没有时返回 nil
func (gs *GameState) LastPlayed() *PlayedHand {
	if len(gs.TablePile) == 0 {
		return nil
	}
	return &gs.TablePile[len(gs.TablePile)-1]
}

// lastHand 桌面上需要被压过的牌型
func (gs *GameState) lastHand() *rule.Hand {
	if last := gs.LastPlayed(); last != nil {
		return &last.Hand
	}
	return nil
}

// LastHand 桌面上需要被压过的牌型，自由出牌时为 nil
func (gs *GameState) LastHand() *rule.Hand {
	if h := gs.lastHand(); h != nil {
		cp := *h
		return &cp
	}
	return nil
}

// MustPlay 当前玩家是否必须出牌（桌面为空不能不出）
func (gs *GameState) MustPlay() bool {
	return len(gs.TablePile) == 0
}

// Participants 计分需要的玩家信息
func (gs *GameState) Participants() []score.Participant {
	ps := make([]score.Participant, len(gs.Players))
	for i, p := range gs.Players {
		ps[i] = score.Participant{ID: p.ID, CardsLeft: p.CardsLeft, HasPlayed: p.HasPlayed}
	}
	return ps
}

// Clone 深拷贝，用于快照和广播
func (gs *GameState) Clone() *GameState {
	cp := *gs
	if gs.Players != nil {
		cp.Players = make([]*Player, len(gs.Players))
		for i, p := range gs.Players {
			pc := *p
			pc.Hand = slices.Clone(p.Hand)
			cp.Players[i] = &pc
		}
	}
	cp.Deck = slices.Clone(gs.Deck)
	cp.DiscardPile = slices.Clone(gs.DiscardPile)
	if gs.TablePile != nil {
		cp.TablePile = make([]PlayedHand, len(gs.TablePile))
		for i, h := range gs.TablePile {
			h.Cards = slices.Clone(h.Cards)
			cp.TablePile[i] = h
		}
	}
	cp.Scores = maps.Clone(gs.Scores)
	if gs.GameHistory != nil {
		cp.GameHistory = make([]map[string]int, len(gs.GameHistory))
		for i, entry := range gs.GameHistory {
			cp.GameHistory[i] = maps.Clone(entry)
		}
	}
	return &cp
}
