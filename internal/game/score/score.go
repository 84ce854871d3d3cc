// Package score 计算一手牌结束时的输赢分
package score

// 罚分规则常量
const (
	FreeCardsLeft     = 1 // 只剩一张不扣分
	ShutoutCardsLeft  = 5 // 一张没出过且剩 5 张时翻倍
	ShutoutMultiplier = 2
)

// Participant 计分所需的玩家信息
type Participant struct {
	ID        string
	CardsLeft int
	HasPlayed bool
}

// Result 一手牌的计分结果
type Result struct {
	WinnerID   string         `json:"winnerId"`
	Deltas     map[string]int `json:"deltas"` // 包含赢家
	Multiplier int            `json:"multiplier"`
}

// Multiplier 倍数 = 2^bombCount
func Multiplier(bombCount int) int {
	if bombCount <= 0 {
		return 1
	}
	return 1 << bombCount
}

// Penalty 返回单个输家的基础罚分
func Penalty(cardsLeft int, hasPlayed bool) int {
	switch {
	case cardsLeft == FreeCardsLeft:
		return 0
	case cardsLeft == ShutoutCardsLeft && !hasPlayed:
		return cardsLeft * ShutoutMultiplier
	}
	return cardsLeft
}

// Compute 根据赢家、剩余手牌和炸弹数计算每位玩家的分数变化
func Compute(winnerID string, players []Participant, bombCount int) Result {
	mult := Multiplier(bombCount)
	res := Result{
		WinnerID:   winnerID,
		Deltas:     make(map[string]int, len(players)),
		Multiplier: mult,
	}

	gain := 0
	for _, p := range players {
		if p.ID == winnerID {
			continue
		}
		delta := -Penalty(p.CardsLeft, p.HasPlayed) * mult
		res.Deltas[p.ID] = delta
		gain -= delta
	}
	res.Deltas[winnerID] = gain
	return res
}

// Apply 把结果累加到总分，并返回追加后的历史记录
func Apply(scores map[string]int, history []map[string]int, r Result) []map[string]int {
	entry := make(map[string]int, len(r.Deltas))
	for id, d := range r.Deltas {
		scores[id] += d
		entry[id] = d
	}
	return append(history, entry)
}

// Totals 按历史记录重新汇总总分，用于校验
func Totals(history []map[string]int) map[string]int {
	totals := make(map[string]int)
	for _, entry := range history {
		for id, d := range entry {
			totals[id] += d
		}
	}
	return totals
}
