package bot

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/rule"
)

const (
	sj = card.RankSmallJoker
	bj = card.RankBigJoker
)

// cardsOf 按点数构造测试牌
func cardsOf(ranks ...card.Rank) []card.Card {
	cards := make([]card.Card, 0, len(ranks))
	used := make(map[card.Rank]int)
	for i, r := range ranks {
		c := card.Card{ID: i, Rank: r}
		if r.IsJoker() {
			c.Suit = card.Joker
		} else {
			c.Suit = card.Suit(used[r] % 4)
			used[r]++
		}
		cards = append(cards, c)
	}
	return cards
}

func ranksOf(cards []card.Card) []card.Rank {
	if cards == nil {
		return nil
	}
	ranks := make([]card.Rank, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	return ranks
}

func TestChooseMove_Lead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hand     []card.Rank
		expected []card.Rank
	}{
		{"straight first", []card.Rank{card.Rank9, card.Rank3, card.Rank4, card.Rank5, card.Rank9, card.Rank2}, []card.Rank{card.Rank3, card.Rank4, card.Rank5}},
		{"straight extended", []card.Rank{card.Rank7, card.Rank8, card.Rank9, card.Rank10, card.RankK}, []card.Rank{card.Rank7, card.Rank8, card.Rank9, card.Rank10}},
		{"pair before single", []card.Rank{card.Rank3, card.Rank7, card.Rank7, card.RankK}, []card.Rank{card.Rank7, card.Rank7}},
		{"smallest single", []card.Rank{card.Rank3, card.Rank9, card.RankK}, []card.Rank{card.Rank3}},
		{"keeps the two", []card.Rank{card.Rank2, card.Rank9}, []card.Rank{card.Rank9}},
		{"joker pair when nothing else", []card.Rank{card.Rank2, sj}, []card.Rank{card.Rank2, sj}},
		{"jokers do not turn a two into a straight", []card.Rank{card.Rank2, sj, bj}, []card.Rank{card.Rank2, sj}},
		{"king bomb", []card.Rank{sj, bj}, []card.Rank{sj, bj}},
		{"lone joker", []card.Rank{bj}, []card.Rank{bj}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ranksOf(ChooseMove(cardsOf(tt.hand...), nil)))
		})
	}
}

func TestChooseMove_Follow(t *testing.T) {
	t.Parallel()

	single := func(r card.Rank) *rule.Hand { return &rule.Hand{Type: rule.Single, PrimaryRank: int(r), Length: 1} }
	pair := func(r card.Rank) *rule.Hand { return &rule.Hand{Type: rule.Pair, PrimaryRank: int(r), Length: 2} }
	straight := func(r, n int) *rule.Hand { return &rule.Hand{Type: rule.Straight, PrimaryRank: r, Length: n} }
	bomb := func(r card.Rank, n int) *rule.Hand {
		return &rule.Hand{Type: rule.Bomb, PrimaryRank: int(r), Length: n, BombLevel: n - 2}
	}

	tests := []struct {
		name     string
		hand     []card.Rank
		last     *rule.Hand
		expected []card.Rank
	}{
		{"single successor", []card.Rank{card.Rank5, card.Rank8, card.Rank9, card.Rank2}, single(card.Rank7), []card.Rank{card.Rank8}},
		{"single falls back to two", []card.Rank{card.Rank5, card.Rank9, card.Rank2}, single(card.Rank7), []card.Rank{card.Rank2}},
		{"nothing beats a two but a bomb", []card.Rank{card.RankA, card.RankK}, single(card.Rank2), nil},
		{"bomb over a two", []card.Rank{card.Rank3, card.Rank3, card.Rank3, card.Rank9}, single(card.Rank2), []card.Rank{card.Rank3, card.Rank3, card.Rank3}},
		{"natural pair", []card.Rank{card.Rank10, card.Rank10, sj}, pair(card.Rank9), []card.Rank{card.Rank10, card.Rank10}},
		{"joker completes pair", []card.Rank{card.Rank4, card.Rank10, sj}, pair(card.Rank9), []card.Rank{card.Rank10, sj}},
		{"straight successor", []card.Rank{card.Rank4, card.Rank5, card.Rank6, card.Rank8}, straight(3, 3), []card.Rank{card.Rank4, card.Rank5, card.Rank6}},
		{"joker fills straight gap", []card.Rank{card.Rank4, card.Rank6, bj}, straight(3, 3), []card.Rank{card.Rank4, bj, card.Rank6}},
		{"joker run that is really a bomb", []card.Rank{card.Rank5, card.Rank9, card.Rank9, card.Rank9, sj, bj}, straight(3, 3), []card.Rank{card.Rank9, card.Rank9, card.Rank9}},
		{"wrap straight climbs to three", []card.Rank{card.Rank3, card.Rank4, card.Rank5}, straight(rule.WrapTwoRank, 3), []card.Rank{card.Rank3, card.Rank4, card.Rank5}},
		{"no straight above ace", []card.Rank{card.RankK, card.RankA, card.Rank2}, straight(int(card.RankQ), 3), nil},
		{"higher triple", []card.Rank{card.Rank4, card.Rank4, card.Rank4, card.Rank6, card.Rank6, card.Rank6}, bomb(card.Rank5, 3), []card.Rank{card.Rank6, card.Rank6, card.Rank6}},
		{"quad beats triple", []card.Rank{card.Rank4, card.Rank4, card.Rank4, card.Rank4}, bomb(card.Rank9, 3), []card.Rank{card.Rank4, card.Rank4, card.Rank4, card.Rank4}},
		{"natural bomb before joker bomb", []card.Rank{card.Rank3, card.Rank3, card.Rank7, card.Rank7, card.Rank7, sj}, single(card.Rank2), []card.Rank{card.Rank7, card.Rank7, card.Rank7}},
		{"joker topped bomb", []card.Rank{card.Rank3, card.Rank3, sj, card.Rank9}, pair(card.Rank2), []card.Rank{card.Rank3, card.Rank3, sj}},
		{"king bomb last", []card.Rank{card.Rank3, sj, bj}, bomb(card.Rank2, 4), []card.Rank{sj, bj}},
		{"nothing beats king bomb", []card.Rank{card.Rank3, card.Rank3, card.Rank3, card.Rank3}, &rule.Hand{Type: rule.KingBomb, PrimaryRank: 17, Length: 2, BombLevel: rule.KingBombLevel}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ranksOf(ChooseMove(cardsOf(tt.hand...), tt.last)))
		})
	}
}

func TestChooseMove_DoesNotMutateHand(t *testing.T) {
	t.Parallel()

	hand := cardsOf(card.RankK, card.Rank3, sj, card.Rank5, card.Rank4)
	before := append([]card.Card(nil), hand...)

	_ = ChooseMove(hand, nil)
	assert.Equal(t, before, hand)
}

func TestChoose_AlwaysLegal(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	deck := card.NewDeck()
	for range 3000 {
		deck.Shuffle(rng)
		hand := append([]card.Card(nil), deck[:1+rng.IntN(8)]...)
		last := rule.Analyze(deck[20:20+1+rng.IntN(4)], 0)

		m := Choose(hand, last)
		if m.IsPass() {
			continue
		}
		require.True(t, card.ContainsAll(hand, m.Cards), "move %v not in hand %v", card.Ranks(m.Cards), card.Ranks(hand))

		h := rule.Analyze(m.Cards, m.Hint)
		if h == nil {
			// 只剩一张王时的兜底领出
			require.Nil(t, last)
			require.Len(t, m.Cards, 1)
			require.True(t, m.Cards[0].IsJoker())
			continue
		}
		require.True(t, rule.CanBeat(h, last), "move %s vs %s", h, last)
	}
}
