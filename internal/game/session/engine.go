package session

import (
	"fmt"

	"github.com/palemoky/gan-deng-yan/internal/apperrors"
	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/rule"
)

// checkTurn 校验阶段和出牌顺序，返回当前玩家
func (gs *GameState) checkTurn(playerID string) (*Player, error) {
	if gs.Status != StatusPlaying {
		return nil, apperrors.ErrGameNotStart
	}
	current := gs.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return nil, apperrors.ErrNotYourTurn
	}
	return current, nil
}

// Play 出牌。hint 只在顺子有多种解释时使用，0 表示不指定。
// 失败时状态不变。
func (gs *GameState) Play(playerID string, cards []card.Card, hint int) (*rule.Hand, error) {
	player, err := gs.checkTurn(playerID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, apperrors.ErrInvalidCards
	}
	if !card.ContainsAll(player.Hand, cards) {
		return nil, apperrors.ErrCardsNotInHand
	}

	// 使用手牌中的牌，避免客户端篡改点数
	cards = pickByID(player.Hand, cards)

	h := rule.Analyze(cards, hint)
	if h == nil && gs.isLoneJokerLead(player, cards) {
		h = &rule.Hand{Type: rule.Single, PrimaryRank: int(cards[0].Rank), Length: 1}
	}
	if h == nil {
		return nil, apperrors.ErrInvalidCards
	}
	if !rule.CanBeat(h, gs.lastHand()) {
		return nil, apperrors.ErrCannotBeat
	}

	played := append([]card.Card(nil), cards...)
	card.SortHand(played)

	player.setHand(card.RemoveCards(player.Hand, cards))
	player.HasPlayed = true
	player.LastAction = ActionPlay

	gs.TablePile = append(gs.TablePile, PlayedHand{PlayerID: playerID, Cards: played, Hand: *h})
	gs.BombCount += h.BombWeight()
	gs.PassesInARow = 0
	gs.Message = ""

	if player.CardsLeft == 0 {
		gs.finishHand(player)
		return h, nil
	}

	gs.advance()
	return h, nil
}

// isLoneJokerLead 手里只剩一张王时允许作为单张领出，否则会卡死
func (gs *GameState) isLoneJokerLead(player *Player, cards []card.Card) bool {
	return len(gs.TablePile) == 0 &&
		len(cards) == 1 && cards[0].IsJoker() &&
		player.CardsLeft == 1
}

// Pass 不出。桌面为空（自己领出）时不允许。
func (gs *GameState) Pass(playerID string) error {
	player, err := gs.checkTurn(playerID)
	if err != nil {
		return err
	}
	if gs.MustPlay() {
		return apperrors.ErrMustPlay
	}

	player.LastAction = ActionPass
	gs.PassesInARow++
	gs.Message = ""

	if gs.PassesInARow >= len(gs.Players)-1 {
		gs.resolveRound()
		return nil
	}

	gs.advance()
	return nil
}

// advance 轮到下一位
func (gs *GameState) advance() {
	gs.CurrentPlayerIndex = (gs.CurrentPlayerIndex + 1) % len(gs.Players)
}

// resolveRound 其他人都不要，最后出牌的人赢得本轮并摸一张牌
func (gs *GameState) resolveRound() {
	last := gs.LastPlayed()
	winner := gs.PlayerIndex(last.PlayerID)

	gs.LastWinnerIndex = winner
	gs.CurrentPlayerIndex = winner
	for _, h := range gs.TablePile {
		gs.DiscardPile = append(gs.DiscardPile, h.Cards...)
	}
	gs.TablePile = nil
	gs.PassesInARow = 0
	for _, p := range gs.Players {
		p.LastAction = ActionNone
	}

	if len(gs.Deck) > 0 {
		p := gs.Players[winner]
		drawn := gs.Deck[0]
		gs.Deck = gs.Deck[1:]
		p.setHand(append(p.Hand, drawn))
		gs.RoundsFinishedAfterDeckEmpty = 0
		return
	}

	gs.RoundsFinishedAfterDeckEmpty++
	if gs.RoundsFinishedAfterDeckEmpty >= StalemateRounds {
		gs.deal(true)
		gs.Message = StalemateMessage
	}
}

// finishHand 有人出完手牌，进入庆祝阶段
func (gs *GameState) finishHand(winner *Player) {
	gs.Status = StatusCelebrating
	gs.WinnerID = winner.ID
	gs.Message = fmt.Sprintf("%s 出完了所有牌！", winner.Name)
}

// pickByID 按 ID 从手牌中取出对应的牌
func pickByID(hand, cards []card.Card) []card.Card {
	byID := make(map[int]card.Card, len(hand))
	for _, c := range hand {
		byID[c.ID] = c
	}
	result := make([]card.Card, len(cards))
	for i, c := range cards {
		result[i] = byID[c.ID]
	}
	return result
}
