//go:build !production

package session

import (
	"fmt"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
)

// CardOf 从一副新牌中取出指定花色点数的牌（带正确的 ID）
func CardOf(s card.Suit, r card.Rank) card.Card {
	for _, c := range card.NewDeck() {
		if c.Suit == s && c.Rank == r {
			return c
		}
	}
	panic(fmt.Sprintf("no such card: %v %v", s, r))
}

// NewTestGame 构造一局正在进行的牌局：玩家 p1..pn 持有给定手牌，
// 牌堆为 deck，其余的牌放入弃牌堆以保持整副牌守恒。由 p1 坐庄先出。
func NewTestGame(hands [][]card.Card, deck []card.Card) *GameState {
	gs := New()
	used := make(map[int]bool)
	for i, hand := range hands {
		id := fmt.Sprintf("p%d", i+1)
		p, err := gs.AddPlayer(Player{ID: id, Name: id, Role: RoleLocal})
		if err != nil {
			panic(err)
		}
		p.setHand(append([]card.Card(nil), hand...))
		for _, c := range hand {
			used[c.ID] = true
		}
	}
	gs.Deck = append([]card.Card(nil), deck...)
	for _, c := range deck {
		used[c.ID] = true
	}
	for _, c := range card.NewDeck() {
		if !used[c.ID] {
			gs.DiscardPile = append(gs.DiscardPile, c)
		}
	}
	gs.Status = StatusPlaying
	gs.HandNumber = 1
	return gs
}
