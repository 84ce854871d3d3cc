package rule

import (
	"github.com/palemoky/gan-deng-yan/internal/game/card"
)

// run 一条候选顺子
type run struct {
	primary int
	ranks   []card.Rank
}

// candidateRuns 返回所有长度为 n 的候选顺子，按 primary 升序。
// 普通顺子在 3..A 之间；另有 A-2-3... 与 2-3-4... 两种绕圈顺子。
func candidateRuns(n int) []run {
	if n < 3 {
		return nil
	}
	var runs []run

	// A-2-3-...：A、2 之后接 3..(n) 共 n-2 张
	if n-2 <= int(card.RankK-card.Rank3)+1 {
		ranks := []card.Rank{card.RankA, card.Rank2}
		for r := card.Rank3; len(ranks) < n; r++ {
			ranks = append(ranks, r)
		}
		runs = append(runs, run{primary: WrapAceRank, ranks: ranks})
	}

	// 2-3-4-...：2 之后接 3..(n+1) 共 n-1 张
	if n-1 <= int(card.RankA-card.Rank3)+1 {
		ranks := []card.Rank{card.Rank2}
		for r := card.Rank3; len(ranks) < n; r++ {
			ranks = append(ranks, r)
		}
		runs = append(runs, run{primary: WrapTwoRank, ranks: ranks})
	}

	for start := card.Rank3; int(start)+n-1 <= int(card.RankA); start++ {
		ranks := make([]card.Rank, 0, n)
		for r := start; len(ranks) < n; r++ {
			ranks = append(ranks, r)
		}
		runs = append(runs, run{primary: int(start), ranks: ranks})
	}
	return runs
}

// contains 候选顺子是否覆盖给定点数集合
func (r run) contains(counts map[card.Rank]int) bool {
	for rank := range counts {
		found := false
		for _, x := range r.ranks {
			if x == rank {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// analyzeStraight 普通牌点数各不相同时尝试组成顺子，王可补位
func analyzeStraight(a analysis, n int, hint int) *Hand {
	var matched []run
	for _, r := range candidateRuns(n) {
		if r.contains(a.counts) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	chosen := matched[len(matched)-1] // 默认取最大的解释
	if hint != 0 {
		for _, r := range matched {
			if r.primary == hint {
				chosen = r
				break
			}
		}
	}
	return &Hand{Type: Straight, PrimaryRank: chosen.primary, Length: n}
}

// StraightRanks 返回指定起点、长度的顺子所需点数，无效时返回 nil
func StraightRanks(primary, n int) []card.Rank {
	for _, r := range candidateRuns(n) {
		if r.primary == primary {
			return r.ranks
		}
	}
	return nil
}
