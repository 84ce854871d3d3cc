package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/gan-deng-yan/internal/ui/common"
)

// RenderGameRules renders the game rules.
func RenderGameRules() string {
	var sb strings.Builder

	sb.WriteString("【游戏目标】\n")
	sb.WriteString("最先出完手牌的玩家获胜，其余玩家按剩余牌数扣分\n\n")

	sb.WriteString("【牌型说明】\n")
	sb.WriteString("• 单张：任意一张牌\n")
	sb.WriteString("• 对子：两张点数相同的牌，可用一张王配对\n")
	sb.WriteString("• 顺子：三张或以上连续的单张，王可以补位\n")
	sb.WriteString("• 炸弹：三张或以上点数相同的牌，可压任何非炸弹牌型\n")
	sb.WriteString("• 王炸：大王 + 小王（最大的牌型）\n\n")

	sb.WriteString("【出牌规则】\n")
	sb.WriteString("1. 庄家 6 张牌，其他玩家 5 张，庄家先出\n")
	sb.WriteString("2. 跟牌只能大一点：单张对子大 1，顺子起点大 1\n")
	sb.WriteString("3. 2 可以压任何单张或对子，王不能单出（手里只剩一张王时除外）\n")
	sb.WriteString("4. 其他人都不要后，出牌者摸一张并重新出牌\n")
	sb.WriteString("5. 每出一个炸弹，本局分数翻倍\n")
	sb.WriteString("6. 一张牌没出过的输家双倍扣分，只剩一张不扣分\n\n")

	sb.WriteString("【输入示例】\n")
	sb.WriteString("345、33、10JQ、JOKER、PASS；王补位用 B/R，如 4B6\n")
	sb.WriteString("绕圈顺子用 @ 指定起点，如 3B@A\n\n")

	sb.WriteString("【快捷键】\n")
	sb.WriteString("• C：切换记牌器（游戏中）\n")
	sb.WriteString("• H：显示/隐藏帮助（游戏中）\n")
	sb.WriteString("• ESC：离开牌桌\n")

	return common.BoxStyle.Render(sb.String())
}

// RulesView renders the full rules view.
func RulesView(width, height int) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("📖 游戏规则")))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, RenderGameRules()))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "按 H 或 ESC 返回"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, sb.String())
}
