package card

import (
	"fmt"
	"slices"
	"strings"
)

// findKingBombInHand 查找手牌中的双王
func findKingBombInHand(hand []Card) ([]Card, bool) {
	var small, big *Card
	for i := range hand {
		if hand[i].Rank == RankSmallJoker {
			small = &hand[i]
		}
		if hand[i].Rank == RankBigJoker {
			big = &hand[i]
		}
	}
	if small != nil && big != nil {
		return []Card{*small, *big}, true
	}
	return nil, false
}

// parseInputRanks 解析输入字符串为 Rank 计数
func parseInputRanks(input string) (map[Rank]int, error) {
	inputRanks := make(map[Rank]int)
	cleanInput := strings.ReplaceAll(input, "10", "T")

	for _, char := range cleanInput {
		if char == ' ' || char == ',' {
			continue
		}
		rank, err := RankFromChar(char)
		if err != nil {
			return nil, err
		}
		inputRanks[rank]++
	}
	if len(inputRanks) == 0 {
		return nil, fmt.Errorf("不能出空牌")
	}
	return inputRanks, nil
}

// countHandRanks 统计手牌中各 Rank 的数量
func countHandRanks(hand []Card) map[Rank]int {
	counts := make(map[Rank]int)
	for _, c := range hand {
		counts[c.Rank]++
	}
	return counts
}

// extractCards 从手牌中按点数取出指定数量的牌，优先取排在前面的
func extractCards(hand []Card, inputRanks map[Rank]int) []Card {
	var result []Card
	taken := make(map[Rank]int)
	for _, c := range hand {
		if taken[c.Rank] < inputRanks[c.Rank] {
			result = append(result, c)
			taken[c.Rank]++
		}
	}
	return result
}

// FindCardsInHand 从手牌中根据输入字符串找出对应的牌
func FindCardsInHand(hand []Card, input string) ([]Card, error) {
	input = strings.ToUpper(strings.TrimSpace(input))

	if input == "JOKER" {
		if cards, ok := findKingBombInHand(hand); ok {
			return cards, nil
		}
		return nil, fmt.Errorf("你没有双王")
	}

	inputRanks, err := parseInputRanks(input)
	if err != nil {
		return nil, err
	}

	handCounts := countHandRanks(hand)
	for r, count := range inputRanks {
		if handCounts[r] < count {
			return nil, fmt.Errorf("你的 %s 不够", r.String())
		}
	}

	return extractCards(hand, inputRanks), nil
}

// ContainsAll 检查 cards 是否都在 hand 中（按 ID）
func ContainsAll(hand, cards []Card) bool {
	seen := make(map[int]bool, len(cards))
	for _, c := range cards {
		if seen[c.ID] {
			return false
		}
		seen[c.ID] = true
		if !slices.ContainsFunc(hand, func(h Card) bool { return h.ID == c.ID }) {
			return false
		}
	}
	return true
}

// RemoveCards 从手牌中移除指定的牌（按 ID），返回新切片
func RemoveCards(hand, toRemove []Card) []Card {
	result := make([]Card, 0, len(hand))
	for _, hCard := range hand {
		if !slices.ContainsFunc(toRemove, func(c Card) bool { return c.ID == hCard.ID }) {
			result = append(result, hCard)
		}
	}
	return result
}

// Ranks 返回牌的点数列表，便于日志输出
func Ranks(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Display()
	}
	return strings.Join(parts, " ")
}
