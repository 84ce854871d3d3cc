package rule

import (
	"fmt"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
)

// HandType 定义牌型
type HandType int

const (
	Invalid  HandType = iota
	Single            // 单张
	Pair              // 对子（可用一张王配对）
	Straight          // 顺子（3张或以上连续单张，可用王补位）
	Bomb              // 炸弹（3张或以上同点数，可用王补足）
	KingBomb          // 王炸（双王）
)

// 虚拟点数：顺子的比较键
const (
	WrapAceRank   = 1  // A-2-3... 绕圈顺子
	WrapTwoRank   = 2  // 2-3-4... 绕圈顺子
	TwoRank       = int(card.Rank2)
	KingBombLevel = 99
)

// handTypeNames 牌型名称映射表
var handTypeNames = map[HandType]string{
	Single:   "单张",
	Pair:     "对子",
	Straight: "顺子",
	Bomb:     "炸弹",
	KingBomb: "王炸",
}

// handTypeCodes 牌型线上编码
var handTypeCodes = map[HandType]string{
	Invalid:  "INVALID",
	Single:   "SINGLE",
	Pair:     "PAIR",
	Straight: "STRAIGHT",
	Bomb:     "BOMB",
	KingBomb: "KING_BOMB",
}

func (h HandType) String() string {
	if name, ok := handTypeNames[h]; ok {
		return name
	}
	return "无效"
}

// MarshalText 以 SINGLE/PAIR/... 形式序列化
func (h HandType) MarshalText() ([]byte, error) {
	return []byte(handTypeCodes[h]), nil
}

// UnmarshalText 解析 SINGLE/PAIR/... 形式的牌型
func (h *HandType) UnmarshalText(text []byte) error {
	for t, code := range handTypeCodes {
		if code == string(text) {
			*h = t
			return nil
		}
	}
	return fmt.Errorf("未知牌型: %s", text)
}

// Hand 牌型分析结果，用于比较大小
type Hand struct {
	Type        HandType `json:"type"`
	PrimaryRank int      `json:"primaryRank"` // 比较键，顺子可能为虚拟点数
	Length      int      `json:"length"`
	BombLevel   int      `json:"bombLevel"`
}

// IsBomb 是否为炸弹或王炸
func (h *Hand) IsBomb() bool {
	return h != nil && (h.Type == Bomb || h.Type == KingBomb)
}

// BombWeight 该手牌对本局炸弹计数的贡献
func (h *Hand) BombWeight() int {
	switch {
	case h == nil:
		return 0
	case h.Type == KingBomb:
		return 1
	case h.Type == Bomb:
		return max(1, h.BombLevel)
	}
	return 0
}

func (h *Hand) String() string {
	if h == nil {
		return "无效"
	}
	switch h.Type {
	case Straight:
		return fmt.Sprintf("%s(%d张,起点%s)", h.Type, h.Length, virtualRankName(h.PrimaryRank))
	case Bomb:
		return fmt.Sprintf("%s(%s x%d)", h.Type, card.Rank(h.PrimaryRank), h.Length)
	case KingBomb:
		return h.Type.String()
	}
	return fmt.Sprintf("%s(%s)", h.Type, card.Rank(h.PrimaryRank))
}

func virtualRankName(r int) string {
	switch r {
	case WrapAceRank:
		return "A"
	case WrapTwoRank:
		return "2"
	}
	return card.Rank(r).String()
}

// analysis 对一组牌做预统计
type analysis struct {
	jokers   int
	counts   map[card.Rank]int
	ordinary int
}

func analyzeCards(cards []card.Card) analysis {
	a := analysis{counts: make(map[card.Rank]int)}
	for _, c := range cards {
		if c.IsJoker() {
			a.jokers++
			continue
		}
		a.counts[c.Rank]++
		a.ordinary++
	}
	return a
}

// onlyRank 返回唯一的普通点数
func (a analysis) onlyRank() card.Rank {
	for r := range a.counts {
		return r
	}
	return 0
}

// Analyze 解析牌型，无法识别时返回 nil。
// hint 只用于顺子有多种解释时选择起点，0 表示不指定。
func Analyze(cards []card.Card, hint int) *Hand {
	n := len(cards)
	if n == 0 {
		return nil
	}
	a := analyzeCards(cards)

	if n == 2 && a.jokers == 2 {
		return &Hand{Type: KingBomb, PrimaryRank: int(card.RankBigJoker), Length: 2, BombLevel: KingBombLevel}
	}

	switch n {
	case 1:
		if a.jokers == 0 {
			return &Hand{Type: Single, PrimaryRank: int(cards[0].Rank), Length: 1}
		}
		return nil
	case 2:
		if len(a.counts) == 1 {
			return &Hand{Type: Pair, PrimaryRank: int(a.onlyRank()), Length: 2}
		}
		return nil
	}

	if len(a.counts) == 1 {
		return &Hand{Type: Bomb, PrimaryRank: int(a.onlyRank()), Length: n, BombLevel: n - 2}
	}
	if len(a.counts) == a.ordinary {
		return analyzeStraight(a, n, hint)
	}
	return nil
}

// CanBeat 判断 move 是否能大过 last，last 为 nil 表示自由出牌
func CanBeat(move, last *Hand) bool {
	if move == nil {
		return false
	}
	if last == nil {
		return true
	}

	// 王炸最大
	if move.Type == KingBomb {
		return last.Type != KingBomb
	}
	if last.Type == KingBomb {
		return false
	}

	// 炸弹压一切非炸弹；炸弹之间先比张数再比点数
	if move.Type == Bomb {
		if last.Type != Bomb {
			return true
		}
		if move.BombLevel != last.BombLevel {
			return move.BombLevel > last.BombLevel
		}
		return move.PrimaryRank > last.PrimaryRank
	}
	if last.Type == Bomb {
		return false
	}

	if move.Type != last.Type || move.Length != last.Length {
		return false
	}

	switch move.Type {
	case Single, Pair:
		// 只能大一点，或者用 2 压任何非 2
		return move.PrimaryRank == last.PrimaryRank+1 ||
			(move.PrimaryRank == TwoRank && last.PrimaryRank < TwoRank)
	case Straight:
		return move.PrimaryRank == last.PrimaryRank+1
	}
	return false
}
