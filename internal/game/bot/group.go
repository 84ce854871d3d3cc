package bot

import (
	"slices"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
)

// grouped 按点数分组的手牌
type grouped struct {
	natural map[card.Rank][]card.Card
	jokers  []card.Card
}

func group(hand []card.Card) grouped {
	g := grouped{natural: make(map[card.Rank][]card.Card)}
	for _, c := range hand {
		if c.IsJoker() {
			g.jokers = append(g.jokers, c)
			continue
		}
		g.natural[c.Rank] = append(g.natural[c.Rank], c)
	}
	return g
}

// ranks 有普通牌的点数，升序
func (g grouped) ranks() []card.Rank {
	ranks := make([]card.Rank, 0, len(g.natural))
	for r := range g.natural {
		ranks = append(ranks, r)
	}
	slices.Sort(ranks)
	return ranks
}

// take 每个点数取一张，缺的用王补
func (g grouped) take(ranks []card.Rank) ([]card.Card, bool) {
	result := make([]card.Card, 0, len(ranks))
	jokers := 0
	for _, r := range ranks {
		if cards := g.natural[r]; len(cards) > 0 {
			result = append(result, cards[0])
			continue
		}
		if jokers >= len(g.jokers) {
			return nil, false
		}
		result = append(result, g.jokers[jokers])
		jokers++
	}
	return result, true
}

// bomb 取出一个炸弹组合的牌
func (g grouped) bomb(o bombOption) []card.Card {
	natural := g.natural[o.rank]
	n := min(o.size, len(natural))
	cards := append([]card.Card(nil), natural[:n]...)
	return append(cards, g.jokers[:o.jokersUsed]...)
}
