// Package input handles keyboard input processing.
package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/rule"
)

// ErrEmptyInput 没有输入任何内容
var ErrEmptyInput = errors.New("请输入要出的牌")

// Command 一次输入解析出的动作
type Command struct {
	Pass  bool
	Cards []card.Card
	Hint  int // 顺子起点，0 表示自动
}

// passWords 表示不出的输入
var passWords = map[string]bool{"PASS": true, "P": true, "不要": true, "过": true}

// ParseCommand 把输入解析为动作，牌从手牌中按点数选取。
//
// 格式: "345"、"10JQ"、"33B"（B 小王, R 大王）、"JOKER"（双王）、"PASS"。
// 王补位的顺子可用 "@起点" 指定解释，如 "4B6@3"；"@A" 和 "@2" 表示绕圈顺子。
func ParseCommand(text string, hand []card.Card) (Command, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return Command{}, ErrEmptyInput
	}
	if passWords[text] {
		return Command{Pass: true}, nil
	}

	body, hintText, hasHint := strings.Cut(text, "@")
	hint := 0
	if hasHint {
		var err error
		if hint, err = parseHint(hintText); err != nil {
			return Command{}, err
		}
	}

	cards, err := card.FindCardsInHand(hand, body)
	if err != nil {
		return Command{}, err
	}
	return Command{Cards: cards, Hint: hint}, nil
}

// parseHint 解析顺子起点
func parseHint(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "A":
		return rule.WrapAceRank, nil
	case "2":
		return rule.WrapTwoRank, nil
	case "10":
		return int(card.Rank10), nil
	}

	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("无法识别的顺子起点: %s", s)
	}
	r, err := card.RankFromChar(runes[0])
	if err != nil || r.IsJoker() {
		return 0, fmt.Errorf("无法识别的顺子起点: %s", s)
	}
	return int(r), nil
}
