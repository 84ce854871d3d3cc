// Package bot 电脑玩家出牌策略。
//
// 策略是贪心的：领出时按 顺子 > 对子 > 单张 的顺序尽量出小牌，
// 跟牌时找刚好大一级的同型牌，找不到再用最便宜的炸弹。
// 所有函数都是纯函数，不修改传入的手牌。
package bot

import (
	"cmp"
	"slices"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/rule"
)

// Move 电脑的决策结果
type Move struct {
	Cards []card.Card
	Hint  int // 顺子起点提示，传给 rule.Analyze
}

// IsPass 是否选择不出
func (m Move) IsPass() bool {
	return len(m.Cards) == 0
}

// ChooseMove 返回要出的牌，nil 表示不出
func ChooseMove(hand []card.Card, last *rule.Hand) []card.Card {
	return Choose(hand, last).Cards
}

// Choose 根据手牌和桌面上的牌型决定出牌
func Choose(hand []card.Card, last *rule.Hand) Move {
	if len(hand) == 0 {
		return Move{}
	}
	sorted := append([]card.Card(nil), hand...)
	card.SortHand(sorted)

	if last == nil {
		return lead(sorted)
	}
	return follow(sorted, last)
}

// lead 自由出牌
func lead(hand []card.Card) Move {
	low := lowCards(hand)
	for _, find := range []func([]card.Card) Move{leadStraight, leadPair, leadSingle} {
		if m := find(low); !m.IsPass() {
			return m
		}
		if m := find(hand); !m.IsPass() {
			return m
		}
	}
	if m := cheapestBomb(hand, nil); !m.IsPass() {
		return m
	}
	// 只剩单张王之类无法成型的牌
	return Move{Cards: []card.Card{hand[0]}}
}

// follow 跟牌：先找同型刚好大一级的，再找炸弹
func follow(hand []card.Card, last *rule.Hand) Move {
	var m Move
	switch last.Type {
	case rule.Single:
		m = followSingle(hand, last)
	case rule.Pair:
		m = followPair(hand, last)
	case rule.Straight:
		m = followStraight(hand, last)
	}
	if !m.IsPass() {
		return m
	}
	return cheapestBomb(hand, last)
}

// lowCards 返回小于 2 的普通牌，领出时优先消耗
func lowCards(hand []card.Card) []card.Card {
	var low []card.Card
	for _, c := range hand {
		if !c.IsJoker() && c.Rank < card.Rank2 {
			low = append(low, c)
		}
	}
	return low
}

// leadStraight 找起点最小的顺子，并尽量延长
func leadStraight(pool []card.Card) Move {
	g := group(pool)
	for _, primary := range straightStarts() {
		var best Move
		for n := 3; n <= len(pool); n++ {
			ranks := rule.StraightRanks(primary, n)
			if ranks == nil {
				break
			}
			cards, ok := g.take(ranks)
			if !ok {
				break
			}
			if m := (Move{Cards: cards, Hint: primary}); isStraight(m) {
				best = m
			}
		}
		if !best.IsPass() {
			return best
		}
	}
	return Move{}
}

// leadPair 出最小的对子，先找真对子再用王配
func leadPair(pool []card.Card) Move {
	g := group(pool)
	for _, r := range g.ranks() {
		if len(g.natural[r]) >= 2 {
			return Move{Cards: g.natural[r][:2]}
		}
	}
	if ranks := g.ranks(); len(ranks) > 0 && len(g.jokers) > 0 {
		return Move{Cards: []card.Card{g.natural[ranks[0]][0], g.jokers[0]}}
	}
	return Move{}
}

// leadSingle 出最小的普通单张
func leadSingle(pool []card.Card) Move {
	for _, c := range pool {
		if !c.IsJoker() {
			return Move{Cards: []card.Card{c}}
		}
	}
	return Move{}
}

// successors 单张、对子可以用来压 last 的点数，按优先级排列
func successors(last *rule.Hand) []card.Rank {
	var ranks []card.Rank
	if next := last.PrimaryRank + 1; next <= rule.TwoRank {
		ranks = append(ranks, card.Rank(next))
	}
	if last.PrimaryRank+1 < rule.TwoRank {
		ranks = append(ranks, card.Rank2)
	}
	return ranks
}

func followSingle(hand []card.Card, last *rule.Hand) Move {
	g := group(hand)
	for _, r := range successors(last) {
		if cards := g.natural[r]; len(cards) > 0 {
			return Move{Cards: cards[:1]}
		}
	}
	return Move{}
}

func followPair(hand []card.Card, last *rule.Hand) Move {
	g := group(hand)
	for _, r := range successors(last) {
		cards := g.natural[r]
		switch {
		case len(cards) >= 2:
			return Move{Cards: cards[:2]}
		case len(cards) == 1 && len(g.jokers) > 0:
			return Move{Cards: []card.Card{cards[0], g.jokers[0]}}
		}
	}
	return Move{}
}

func followStraight(hand []card.Card, last *rule.Hand) Move {
	target := last.PrimaryRank + 1
	ranks := rule.StraightRanks(target, last.Length)
	if ranks == nil {
		return Move{}
	}
	cards, ok := group(hand).take(ranks)
	if !ok {
		return Move{}
	}
	m := Move{Cards: cards, Hint: target}
	if !isStraight(m) || !valid(m, last) {
		return Move{}
	}
	return m
}

// bombOption 一种可能的炸弹组合
type bombOption struct {
	rank       card.Rank
	size       int
	jokersUsed int
}

// cheapestBomb 找能压过 last 的最便宜炸弹，last 为 nil 时任意炸弹均可。
// 优先不用王，其次级别低，再次点数小，王炸最后。
func cheapestBomb(hand []card.Card, last *rule.Hand) Move {
	g := group(hand)
	var options []bombOption
	for _, r := range g.ranks() {
		n := len(g.natural[r])
		for size := 3; size <= n+len(g.jokers); size++ {
			options = append(options, bombOption{rank: r, size: size, jokersUsed: max(0, size-n)})
		}
	}
	sortBombOptions(options)

	for _, o := range options {
		m := Move{Cards: g.bomb(o)}
		if valid(m, last) {
			return m
		}
	}

	if len(g.jokers) == 2 {
		m := Move{Cards: append([]card.Card(nil), g.jokers...)}
		if valid(m, last) {
			return m
		}
	}
	return Move{}
}

func sortBombOptions(options []bombOption) {
	slices.SortStableFunc(options, func(a, b bombOption) int {
		if (a.jokersUsed > 0) != (b.jokersUsed > 0) {
			if a.jokersUsed == 0 {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.size, b.size), cmp.Compare(a.rank, b.rank))
	})
}

// valid 用规则引擎复核候选牌
func valid(m Move, last *rule.Hand) bool {
	h := rule.Analyze(m.Cards, m.Hint)
	return h != nil && rule.CanBeat(h, last)
}

// isStraight 王补位后可能凑成同点数的炸弹，这种组合不当顺子出
func isStraight(m Move) bool {
	h := rule.Analyze(m.Cards, m.Hint)
	return h != nil && h.Type == rule.Straight
}

// straightStarts 所有顺子起点，从小到大
func straightStarts() []int {
	starts := []int{rule.WrapAceRank, rule.WrapTwoRank}
	for r := card.Rank3; r <= card.RankQ; r++ {
		starts = append(starts, int(r))
	}
	return starts
}
