package session

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/palemoky/gan-deng-yan/internal/apperrors"
	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/score"
)

// inLobby 是否还在等人阶段
func (gs *GameState) inLobby() bool {
	return gs.Status == StatusLobby || gs.Status == StatusWaiting
}

// StartWaiting 创建多人房间，进入等待阶段
func (gs *GameState) StartWaiting(roomID string) error {
	if !gs.inLobby() {
		return apperrors.ErrGameStarted
	}
	if roomID == "" {
		roomID = uuid.NewString()
	}
	gs.Status = StatusWaiting
	gs.Network.RoomID = roomID
	return nil
}

// AddPlayer 入座。相同 PeerID 重复加入时返回已有座位。
func (gs *GameState) AddPlayer(p Player) (*Player, error) {
	if existing := gs.PlayerByPeer(p.PeerID); existing != nil {
		return existing, nil
	}
	if !gs.inLobby() {
		return nil, apperrors.ErrGameStarted
	}
	if len(gs.Players) >= MaxPlayers {
		return nil, apperrors.ErrRoomFull
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("玩家%d", len(gs.Players)+1)
	}
	p.Color = seatColors[len(gs.Players)%len(seatColors)]
	p.setHand(nil)
	p.HasPlayed = false
	p.LastAction = ActionNone

	player := &p
	gs.Players = append(gs.Players, player)
	if _, ok := gs.Scores[p.ID]; !ok {
		gs.Scores[p.ID] = 0
	}
	return player, nil
}

// RemovePlayer 开局前离开座位
func (gs *GameState) RemovePlayer(playerID string) error {
	if !gs.inLobby() {
		return apperrors.ErrGameStarted
	}
	i := gs.PlayerIndex(playerID)
	if i < 0 {
		return apperrors.ErrNotInRoom
	}
	gs.Players = append(gs.Players[:i], gs.Players[i+1:]...)
	delete(gs.Scores, playerID)
	return nil
}

// SeatBots 用电脑补足座位
func (gs *GameState) SeatBots(seatCount int) error {
	seatCount = min(max(seatCount, MinPlayers), MaxPlayers)
	for n := 1; len(gs.Players) < seatCount; n++ {
		id := fmt.Sprintf("bot-%d", n)
		if gs.PlayerIndex(id) >= 0 {
			continue
		}
		if _, err := gs.AddPlayer(Player{ID: id, Name: fmt.Sprintf("电脑%d", n), IsAI: true, Role: RoleBot}); err != nil {
			return err
		}
	}
	return nil
}

// ConvertToBot 断线的客人改由电脑托管，返回是否找到该座位
func (gs *GameState) ConvertToBot(peerID string) bool {
	p := gs.PlayerByPeer(peerID)
	if p == nil {
		return false
	}
	p.IsAI = true
	p.Role = RoleBot
	p.PeerID = ""
	p.Name += "(托管)"
	return true
}

// BeginDealing 进入发牌动画阶段
func (gs *GameState) BeginDealing() error {
	switch gs.Status {
	case StatusLobby, StatusWaiting, StatusScoring:
	default:
		return apperrors.ErrWrongPhase
	}
	if len(gs.Players) < MinPlayers {
		return apperrors.ErrNotEnoughPlayers
	}
	gs.Status = StatusDealing
	return nil
}

// StartNewHand 洗牌发牌开始新的一手。
// 首局和流局后随机选庄，否则由上一手的赢家坐庄。rng 为 nil 时沿用已有随机源。
func (gs *GameState) StartNewHand(rng *rand.Rand) error {
	switch gs.Status {
	case StatusLobby, StatusWaiting, StatusDealing, StatusScoring:
	default:
		return apperrors.ErrWrongPhase
	}
	if len(gs.Players) < MinPlayers {
		return apperrors.ErrNotEnoughPlayers
	}
	if rng != nil {
		gs.rng = rng
	}
	gs.deal(gs.PlayerIndex(gs.WinnerID) < 0)
	return nil
}

// deal 发牌：庄家 6 张，其余 5 张，从庄家开始轮流发
func (gs *GameState) deal(randomDealer bool) {
	n := len(gs.Players)
	dealer := gs.PlayerIndex(gs.WinnerID)
	if randomDealer || dealer < 0 {
		dealer = gs.intN(n)
	}

	deck := card.NewDeck()
	deck.Shuffle(gs.rng)

	hands := make([][]card.Card, n)
	pos := 0
	for range OtherCards {
		for i := range n {
			seat := (dealer + i) % n
			hands[seat] = append(hands[seat], deck[pos])
			pos++
		}
	}
	for range DealerCards - OtherCards {
		hands[dealer] = append(hands[dealer], deck[pos])
		pos++
	}

	for i, p := range gs.Players {
		p.setHand(hands[i])
		p.HasPlayed = false
		p.LastAction = ActionNone
	}

	gs.Deck = append([]card.Card(nil), deck[pos:]...)
	gs.TablePile = nil
	gs.DiscardPile = nil
	gs.DealerID = dealer
	gs.CurrentPlayerIndex = dealer
	gs.LastWinnerIndex = dealer
	gs.PassesInARow = 0
	gs.RoundsFinishedAfterDeckEmpty = 0
	gs.BombCount = 0
	gs.HandNumber++
	gs.WinnerID = ""
	gs.Status = StatusPlaying
	gs.Message = fmt.Sprintf("第 %d 手开始，%s 坐庄", gs.HandNumber, gs.Players[dealer].Name)
}

// EnterScoring 结算本手，写入历史并累计总分
func (gs *GameState) EnterScoring() (score.Result, error) {
	if gs.Status != StatusCelebrating {
		return score.Result{}, apperrors.ErrWrongPhase
	}
	res := score.Compute(gs.WinnerID, gs.Participants(), gs.BombCount)
	gs.GameHistory = score.Apply(gs.Scores, gs.GameHistory, res)
	gs.Status = StatusScoring
	gs.Message = fmt.Sprintf("本手结算，倍数 x%d", res.Multiplier)
	return res, nil
}

// Reset 退出牌局回到大厅，只保留本节点的联网身份
func (gs *GameState) Reset() {
	network, rng := gs.Network, gs.rng
	*gs = *New()
	gs.Network = Network{Role: network.Role, MyPlayerID: network.MyPlayerID}
	gs.rng = rng
}
