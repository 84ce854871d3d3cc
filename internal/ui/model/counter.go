package model

import (
	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
)

// CountUnseen 记牌器：整副牌去掉自己的手牌、桌面和弃牌堆后，各点数还剩几张
// 在别人手里或牌堆中
func CountUnseen(state session.GameState, myID string) map[card.Rank]int {
	remaining := make(map[card.Rank]int)
	for _, c := range card.NewDeck() {
		remaining[c.Rank]++
	}

	deduct := func(cards []card.Card) {
		for _, c := range cards {
			if remaining[c.Rank] > 0 {
				remaining[c.Rank]--
			}
		}
	}
	if me := state.Player(myID); me != nil {
		deduct(me.Hand)
	}
	for _, h := range state.TablePile {
		deduct(h.Cards)
	}
	deduct(state.DiscardPile)
	return remaining
}
