package card

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
)

// Suit 定义花色
type Suit int

// Rank 定义点数
type Rank int

const (
	Spade   Suit = iota // 黑桃
	Heart               // 红心
	Club                // 梅花
	Diamond             // 方块
	Joker               // 王牌
)

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Club:    "♣",
	Diamond: "♦",
	Joker:   "",
}

// suitNames 花色名称，用于序列化
var suitNames = map[Suit]string{
	Spade:   "spades",
	Heart:   "hearts",
	Club:    "clubs",
	Diamond: "diamonds",
	Joker:   "joker",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return ""
}

// Name 返回花色的英文名
func (s Suit) Name() string {
	return suitNames[s]
}

// MarshalText 序列化为 spades/hearts/... 形式
func (s Suit) MarshalText() ([]byte, error) {
	name, ok := suitNames[s]
	if !ok {
		return nil, fmt.Errorf("无效的花色: %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText 解析 spades/hearts/... 形式的花色
func (s *Suit) UnmarshalText(text []byte) error {
	for suit, name := range suitNames {
		if name == string(text) {
			*s = suit
			return nil
		}
	}
	return fmt.Errorf("无效的花色: %s", text)
}

const (
	Rank3 Rank = iota + 3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ // Jack
	RankQ // Queen
	RankK // King
	RankA // Ace
	Rank2
	RankSmallJoker // 小王
	RankBigJoker   // 大王
)

// DeckSize 一副牌的张数
const DeckSize = 54

// rankNames 牌面值字符串映射表
var rankNames = map[Rank]string{
	Rank3:          "3",
	Rank4:          "4",
	Rank5:          "5",
	Rank6:          "6",
	Rank7:          "7",
	Rank8:          "8",
	Rank9:          "9",
	Rank10:         "10",
	RankJ:          "J",
	RankQ:          "Q",
	RankK:          "K",
	RankA:          "A",
	Rank2:          "2",
	RankSmallJoker: "B",
	RankBigJoker:   "R",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return strconv.Itoa(int(r))
}

// IsJoker 是否为大小王
func (r Rank) IsJoker() bool {
	return r == RankSmallJoker || r == RankBigJoker
}

// charToRank 用于快速查找字符对应的 Rank
var charToRank = map[rune]Rank{
	'3': Rank3,
	'4': Rank4,
	'5': Rank5,
	'6': Rank6,
	'7': Rank7,
	'8': Rank8,
	'9': Rank9,
	'T': Rank10,
	'J': RankJ,
	'Q': RankQ,
	'K': RankK,
	'A': RankA,
	'2': Rank2,
	'B': RankSmallJoker,
	'R': RankBigJoker,
}

func RankFromChar(char rune) (Rank, error) {
	if rank, ok := charToRank[char]; ok {
		return rank, nil
	}
	return -1, fmt.Errorf("无法识别的点数: %c", char)
}

// Card 定义一张牌，创建后不可变
type Card struct {
	ID   int  `json:"id"`
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// IsJoker 是否为大小王
func (c Card) IsJoker() bool {
	return c.Suit == Joker
}

// Display 返回牌面展示字符串
func (c Card) Display() string {
	switch c.Rank {
	case RankSmallJoker:
		return "小王"
	case RankBigJoker:
		return "大王"
	}
	return c.Suit.String() + c.Rank.String()
}

func (c Card) String() string {
	return c.Display()
}

// Deck 定义一副牌
type Deck []Card

// NewDeck 按固定顺序生成 54 张牌，ID 为 0..53
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for s := Spade; s <= Diamond; s++ {
		for r := Rank3; r <= Rank2; r++ {
			deck = append(deck, Card{ID: len(deck), Suit: s, Rank: r})
		}
	}
	deck = append(deck,
		Card{ID: len(deck), Suit: Joker, Rank: RankSmallJoker},
		Card{ID: len(deck) + 1, Suit: Joker, Rank: RankBigJoker},
	)
	return deck
}

// Shuffle 使用给定随机源洗牌，rng 为 nil 时使用全局随机源
func (d Deck) Shuffle(rng *rand.Rand) {
	swap := func(i, j int) { d[i], d[j] = d[j], d[i] }
	if rng == nil {
		rand.Shuffle(len(d), swap)
		return
	}
	rng.Shuffle(len(d), swap)
}

// SortHand 手牌按点数升序排列，同点数按花色
func SortHand(hand []Card) {
	slices.SortStableFunc(hand, func(a, b Card) int {
		if a.Rank != b.Rank {
			return int(a.Rank) - int(b.Rank)
		}
		return int(a.Suit) - int(b.Suit)
	})
}
