package rule

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
)

// cardsOf 按点数构造测试牌，同点数自动换花色
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

const (
	sj = card.RankSmallJoker
	bj = card.RankBigJoker
)

func TestAnalyze(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ranks    []card.Rank
		hint     int
		expected *Hand
	}{
		{"king bomb", []card.Rank{sj, bj}, 0, &Hand{Type: KingBomb, PrimaryRank: 17, Length: 2, BombLevel: 99}},
		{"single", []card.Rank{card.Rank7}, 0, &Hand{Type: Single, PrimaryRank: 7, Length: 1}},
		{"lone joker", []card.Rank{sj}, 0, nil},
		{"pair", []card.Rank{card.Rank9, card.Rank9}, 0, &Hand{Type: Pair, PrimaryRank: 9, Length: 2}},
		{"joker pair", []card.Rank{card.RankK, bj}, 0, &Hand{Type: Pair, PrimaryRank: 13, Length: 2}},
		{"two different", []card.Rank{card.Rank3, card.Rank4}, 0, nil},
		{"triple bomb", []card.Rank{card.Rank3, card.Rank3, card.Rank3}, 0, &Hand{Type: Bomb, PrimaryRank: 3, Length: 3, BombLevel: 1}},
		{"quad bomb", []card.Rank{card.Rank3, card.Rank3, card.Rank3, card.Rank3}, 0, &Hand{Type: Bomb, PrimaryRank: 3, Length: 4, BombLevel: 2}},
		{"joker topped bomb", []card.Rank{card.Rank8, card.Rank8, sj, bj}, 0, &Hand{Type: Bomb, PrimaryRank: 8, Length: 4, BombLevel: 2}},
		{"straight", []card.Rank{card.Rank5, card.Rank3, card.Rank4}, 0, &Hand{Type: Straight, PrimaryRank: 3, Length: 3}},
		{"long straight", []card.Rank{card.Rank10, card.RankJ, card.RankQ, card.RankK, card.RankA}, 0, &Hand{Type: Straight, PrimaryRank: 10, Length: 5}},
		{"wrap A-2-3", []card.Rank{card.RankA, card.Rank2, card.Rank3}, 0, &Hand{Type: Straight, PrimaryRank: WrapAceRank, Length: 3}},
		{"wrap 2-3-4", []card.Rank{card.Rank2, card.Rank3, card.Rank4}, 0, &Hand{Type: Straight, PrimaryRank: WrapTwoRank, Length: 3}},
		{"K-A-2 is not a straight", []card.Rank{card.RankK, card.RankA, card.Rank2}, 0, nil},
		{"gap", []card.Rank{card.Rank3, card.Rank5, card.Rank7}, 0, nil},
		{"duplicate in straight", []card.Rank{card.Rank3, card.Rank4, card.Rank4, card.Rank5}, 0, nil},
		{"joker filled gap", []card.Rank{card.Rank3, card.Rank5, sj}, 0, &Hand{Type: Straight, PrimaryRank: 3, Length: 3}},
		{"joker ambiguity picks largest", []card.Rank{card.Rank4, card.Rank5, sj}, 0, &Hand{Type: Straight, PrimaryRank: 4, Length: 3}},
		{"joker ambiguity honors hint", []card.Rank{card.Rank4, card.Rank5, sj}, 3, &Hand{Type: Straight, PrimaryRank: 3, Length: 3}},
		{"hint not matching is ignored", []card.Rank{card.Rank4, card.Rank5, sj}, 9, &Hand{Type: Straight, PrimaryRank: 4, Length: 3}},
		{"wrap with joker", []card.Rank{card.Rank2, card.Rank3, sj}, 0, &Hand{Type: Straight, PrimaryRank: 3, Length: 3}},
		{"wrap with joker and hint", []card.Rank{card.Rank2, card.Rank3, sj}, WrapAceRank, &Hand{Type: Straight, PrimaryRank: WrapAceRank, Length: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Analyze(cardsOf(tt.ranks...), tt.hint))
		})
	}
}

func TestAnalyze_Empty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Analyze(nil, 0))
}

func TestAnalyze_OrderIndependent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	deck := card.NewDeck()
	for range 2000 {
		deck.Shuffle(rng)
		n := 1 + rng.IntN(5)
		hand := append([]card.Card(nil), deck[:n]...)
		want := Analyze(hand, 0)
		if want == nil {
			continue
		}
		for range 5 {
			rng.Shuffle(len(hand), func(i, j int) { hand[i], hand[j] = hand[j], hand[i] })
			require.Equal(t, want, Analyze(hand, 0), "hand %v", card.Ranks(hand))
		}
	}
}

func TestCanBeat(t *testing.T) {
	t.Parallel()

	single := func(r int) *Hand { return &Hand{Type: Single, PrimaryRank: r, Length: 1} }
	pair := func(r int) *Hand { return &Hand{Type: Pair, PrimaryRank: r, Length: 2} }
	straight := func(r, n int) *Hand { return &Hand{Type: Straight, PrimaryRank: r, Length: n} }
	bomb := func(r, n int) *Hand { return &Hand{Type: Bomb, PrimaryRank: r, Length: n, BombLevel: n - 2} }
	king := &Hand{Type: KingBomb, PrimaryRank: 17, Length: 2, BombLevel: KingBombLevel}

	tests := []struct {
		name     string
		move     *Hand
		last     *Hand
		expected bool
	}{
		{"free lead", single(3), nil, true},
		{"nil move", nil, single(3), false},
		{"single +1", single(4), single(3), true},
		{"single +2 is not allowed", single(5), single(3), false},
		{"single lower", single(3), single(4), false},
		{"single same", single(9), single(9), false},
		{"two beats any single", single(15), single(9), true},
		{"ace to two is +1", single(15), single(14), true},
		{"two does not beat two", single(15), single(15), false},
		{"pair +1", pair(8), pair(7), true},
		{"pair of two", pair(15), pair(3), true},
		{"pair vs single", pair(4), single(3), false},
		{"straight +1", straight(4, 3), straight(3, 3), true},
		{"straight same", straight(3, 3), straight(3, 3), false},
		{"straight different length", straight(4, 4), straight(3, 3), false},
		{"wrap climbs", straight(WrapTwoRank, 3), straight(WrapAceRank, 3), true},
		{"wrap 2 to 3", straight(3, 3), straight(WrapTwoRank, 3), true},
		{"bomb beats straight", bomb(3, 3), straight(10, 5), true},
		{"bomb beats two", bomb(3, 3), single(15), true},
		{"quad beats triple", bomb(3, 4), bomb(14, 3), true},
		{"triple vs triple higher", bomb(5, 3), bomb(4, 3), true},
		{"triple vs triple lower", bomb(4, 3), bomb(5, 3), false},
		{"non-bomb vs bomb", single(15), bomb(3, 3), false},
		{"king beats quad", king, bomb(15, 4), true},
		{"nothing beats king", bomb(15, 6), king, false},
		{"king vs king", king, king, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, CanBeat(tt.move, tt.last))
		})
	}
}

func TestBombLevelsScenario(t *testing.T) {
	t.Parallel()

	triple := Analyze(cardsOf(card.Rank3, card.Rank3, card.Rank3), 0)
	quad := Analyze(cardsOf(card.Rank3, card.Rank3, card.Rank3, card.Rank3), 0)

	require.NotNil(t, triple)
	require.NotNil(t, quad)
	assert.Equal(t, Bomb, triple.Type)
	assert.Equal(t, 1, triple.BombLevel)
	assert.Equal(t, 2, quad.BombLevel)
	assert.True(t, CanBeat(quad, triple))
	assert.False(t, CanBeat(triple, quad))
}

func TestKingBombSupremacy(t *testing.T) {
	t.Parallel()

	king := Analyze(cardsOf(sj, bj), 0)
	require.NotNil(t, king)

	rng := rand.New(rand.NewPCG(3, 5))
	deck := card.NewDeck()
	for range 500 {
		deck.Shuffle(rng)
		h := Analyze(deck[:1+rng.IntN(4)], 0)
		if h == nil || h.Type == KingBomb {
			continue
		}
		assert.True(t, CanBeat(king, h))
		assert.False(t, CanBeat(h, king))
	}
}

func TestBombWeight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, (*Hand)(nil).BombWeight())
	assert.Equal(t, 0, (&Hand{Type: Single}).BombWeight())
	assert.Equal(t, 1, (&Hand{Type: KingBomb, BombLevel: 99}).BombWeight())
	assert.Equal(t, 1, (&Hand{Type: Bomb, BombLevel: 1}).BombWeight())
	assert.Equal(t, 2, (&Hand{Type: Bomb, BombLevel: 2}).BombWeight())
}

func TestHandType_TextRoundTrip(t *testing.T) {
	t.Parallel()

	text, err := KingBomb.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "KING_BOMB", string(text))

	var h HandType
	require.NoError(t, h.UnmarshalText([]byte("STRAIGHT")))
	assert.Equal(t, Straight, h)
	assert.Error(t, h.UnmarshalText([]byte("ROCKET")))
}

func TestStraightRanks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []card.Rank{card.RankA, card.Rank2, card.Rank3}, StraightRanks(WrapAceRank, 3))
	assert.Equal(t, []card.Rank{card.Rank2, card.Rank3, card.Rank4, card.Rank5}, StraightRanks(WrapTwoRank, 4))
	assert.Equal(t, []card.Rank{card.RankQ, card.RankK, card.RankA}, StraightRanks(int(card.RankQ), 3))
	assert.Nil(t, StraightRanks(int(card.RankK), 3))
}
