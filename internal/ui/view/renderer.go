// Package view provides UI rendering functions.
package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/score"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/ui/common"
	"github.com/palemoky/gan-deng-yan/internal/ui/model"
)

// CreateViewRenderer creates a view renderer function that can be injected into GameModel.
func CreateViewRenderer() func(model.Model) string {
	return func(m model.Model) string {
		if m.ShowingHelp() {
			return RulesView(m.Width(), m.Height())
		}

		switch m.State().Status {
		case session.StatusLobby, session.StatusWaiting:
			return WaitingView(m)
		case session.StatusDealing:
			return DealingView(m)
		case session.StatusPlaying, session.StatusCelebrating:
			return GameView(m)
		case session.StatusScoring:
			return ScoringView(m)
		default:
			return "Unknown status"
		}
	}
}

// WaitingView 等待开局
func WaitingView(m model.Model) string {
	width := m.Width()
	state := m.State()
	var sb strings.Builder

	title := "🀄 干瞪眼"
	if state.Network.RoomID != "" {
		title = fmt.Sprintf("🏠 房间: %s", state.Network.RoomID)
	}
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle(title)))
	sb.WriteString("\n\n")

	var list strings.Builder
	list.WriteString("玩家列表:\n")
	for _, p := range state.Players {
		fmt.Fprintf(&list, "  %s%s\n", playerLabel(p), meSuffix(p, m.MyID()))
	}
	fmt.Fprintf(&list, "\n座位: %d/%d", len(state.Players), session.MaxPlayers)
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.BoxStyle.Render(list.String())))
	sb.WriteString("\n\n")

	if len(state.GameHistory) > 0 {
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderTotals(state)))
		sb.WriteString("\n")
	}

	sb.WriteString(renderPrompt(m))
	return sb.String()
}

// DealingView 发牌中
func DealingView(m model.Model) string {
	state := m.State()
	msg := fmt.Sprintf("🃏 第 %d 手，正在发牌...", state.HandNumber+1)
	return lipgloss.Place(m.Width(), m.Height(), lipgloss.Center, lipgloss.Center, msg)
}

// GameView 出牌阶段和庆祝阶段
func GameView(m model.Model) string {
	width := m.Width()
	state := m.State()
	var sb strings.Builder

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderTopSection(m)))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderOpponents(state, m.MyID())))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderTable(state)))
	sb.WriteString("\n")

	if me := state.Player(m.MyID()); me != nil {
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderHand(me, state)))
		sb.WriteString("\n")
	}

	if state.Status == session.StatusCelebrating {
		if winner := state.Player(state.WinnerID); winner != nil {
			banner := common.TurnStyle.Render(fmt.Sprintf("%s %s 出完了所有牌！", common.WinnerIcon, winner.Name))
			sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, banner))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(renderPrompt(m))
	return lipgloss.Place(width, m.Height(), lipgloss.Center, lipgloss.Center, sb.String())
}

// ScoringView 本手结算
func ScoringView(m model.Model) string {
	state := m.State()
	var sb strings.Builder

	sb.WriteString(common.TitleStyle(fmt.Sprintf("📊 第 %d 手结算", state.HandNumber)))
	sb.WriteString("\n\n")

	var last map[string]int
	if n := len(state.GameHistory); n > 0 {
		last = state.GameHistory[n-1]
	}
	var rows strings.Builder
	for _, p := range state.Players {
		icon := "  "
		if p.ID == state.WinnerID {
			icon = common.WinnerIcon
		}
		fmt.Fprintf(&rows, "%s %-10s 剩 %2d 张  %+5d  总分 %5d\n",
			icon, common.TruncateName(p.Name, 10), p.CardsLeft, last[p.ID], state.Scores[p.ID])
	}
	fmt.Fprintf(&rows, "\n炸弹 %d 个，倍数 x%d", state.BombCount, score.Multiplier(state.BombCount))
	sb.WriteString(common.BoxStyle.Padding(0, 1).Render(rows.String()))
	sb.WriteString("\n")
	sb.WriteString(renderPrompt(m))

	return lipgloss.Place(m.Width(), m.Height(), lipgloss.Center, lipgloss.Center, sb.String())
}

// --- Helper rendering functions ---

func renderTopSection(m model.Model) string {
	state := m.State()
	info := fmt.Sprintf("第 %d 手 | 牌堆 %d 张 | 炸弹 %d (x%d)",
		state.HandNumber, len(state.Deck), state.BombCount, score.Multiplier(state.BombCount))
	infoBox := common.BoxStyle.Padding(0, 1).Render(info)

	if !m.CardCounterEnabled() {
		return infoBox
	}
	counter := renderCardCounter(model.CountUnseen(state, m.MyID()))
	return lipgloss.JoinHorizontal(lipgloss.Top, counter, "  ", infoBox)
}

// counterRanks 记牌器的显示顺序
var counterRanks = []card.Rank{
	card.RankBigJoker, card.RankSmallJoker, card.Rank2,
	card.RankA, card.RankK, card.RankQ, card.RankJ, card.Rank10,
	card.Rank9, card.Rank8, card.Rank7, card.Rank6,
	card.Rank5, card.Rank4, card.Rank3,
}

func renderCardCounter(remaining map[card.Rank]int) string {
	names := make([]string, len(counterRanks))
	counts := make([]string, len(counterRanks))
	for i, rank := range counterRanks {
		names[i] = fmt.Sprintf("%-2s", rank.String())
		counts[i] = fmt.Sprintf("%-2d", remaining[rank])
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(names, "│") + "\n")
	sb.WriteString(strings.Repeat("─", 44) + "\n")
	sb.WriteString(strings.Join(counts, "│"))
	return common.BoxStyle.Render(sb.String())
}

func renderOpponents(state session.GameState, myID string) string {
	var parts []string
	cur := state.CurrentPlayer()

	for i, p := range state.Players {
		if p.ID == myID {
			continue
		}
		nameStyle := common.PlayerStyle(p.Color)
		if cur != nil && cur.ID == p.ID && state.Status == session.StatusPlaying {
			nameStyle = common.TurnStyle
		}

		var tags []string
		if i == state.DealerID {
			tags = append(tags, common.DealerIcon)
		}
		if p.IsAI {
			tags = append(tags, common.BotIcon)
		}
		info := fmt.Sprintf("%s %s\n🃏 %d张 %s",
			nameStyle.Render(common.TruncateName(p.Name, 8)), strings.Join(tags, ""),
			p.CardsLeft, actionText(p.LastAction))
		parts = append(parts, common.BoxStyle.Width(16).Render(info))
	}
	if len(parts) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func actionText(a session.Action) string {
	if a == session.ActionPass {
		return "不要"
	}
	return ""
}

// renderTable 桌面上最后一手牌
func renderTable(state session.GameState) string {
	last := state.LastPlayed()
	if last == nil {
		return common.BoxStyle.Width(30).Render("(等待出牌...)")
	}

	name := last.PlayerID
	if p := state.Player(last.PlayerID); p != nil {
		name = p.Name
	}
	content := fmt.Sprintf("%s: %s\n%s", name, renderCards(last.Cards), last.Hand.String())
	return common.BoxStyle.Width(30).Render(content)
}

func renderCards(cards []card.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = common.CardStyle(c).Render(c.Display())
	}
	return strings.Join(parts, " ")
}

func renderHand(me *session.Player, state session.GameState) string {
	if len(me.Hand) == 0 {
		return common.BoxStyle.Render("(无手牌)")
	}

	var rankStr, suitStr strings.Builder
	for _, c := range me.Hand {
		style := common.CardStyle(c).Align(lipgloss.Center).Margin(0, 1)
		if c.IsJoker() {
			rankStr.WriteString(style.Render(fmt.Sprintf("%-2s", c.Rank.String())))
			suitStr.WriteString(style.Render("王"))
			continue
		}
		rankStr.WriteString(style.Render(fmt.Sprintf("%-2s", c.Rank.String())))
		suitStr.WriteString(style.Render(fmt.Sprintf("%-2s", c.Suit.String())))
	}

	icon := ""
	if state.PlayerIndex(me.ID) == state.DealerID {
		icon = common.DealerIcon
	}
	title := fmt.Sprintf("我的手牌 %s (%d张)", icon, len(me.Hand))
	content := lipgloss.JoinVertical(lipgloss.Center, title, rankStr.String(), suitStr.String())
	return common.BoxStyle.Render(content)
}

// renderPrompt 轮次提示、输入框和临时提示
func renderPrompt(m model.Model) string {
	state := m.State()
	var sb strings.Builder

	if state.Message != "" {
		sb.WriteString(state.Message)
		sb.WriteString("\n")
	}

	if state.Status == session.StatusPlaying {
		if cur := state.CurrentPlayer(); cur != nil {
			if cur.ID == m.MyID() {
				fmt.Fprintf(&sb, "%s 轮到你出牌!\n", common.TurnIcon)
			} else {
				fmt.Fprintf(&sb, "等待 %s 出牌...\n", cur.Name)
			}
		}
	}

	sb.WriteString(m.Input().View())
	sb.WriteString("\n")

	if n := m.Notice(); n != nil {
		style := common.NoticeStyle
		if n.IsError {
			style = common.ErrorStyle
		}
		sb.WriteString(style.Render(n.Text))
	} else {
		sb.WriteString(common.HintStyle.Render("C 键记牌器, H 键帮助, ESC 离开"))
	}

	centered := lipgloss.NewStyle().Width(m.Width()).AlignHorizontal(lipgloss.Center).Render(sb.String())
	return common.PromptStyle.Render(centered)
}

func renderTotals(state session.GameState) string {
	players := make([]*session.Player, len(state.Players))
	copy(players, state.Players)
	sort.SliceStable(players, func(i, j int) bool {
		return state.Scores[players[i].ID] > state.Scores[players[j].ID]
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "总分 (共 %d 手)\n", state.HandNumber)
	for _, p := range players {
		fmt.Fprintf(&sb, "%-10s %+d\n", common.TruncateName(p.Name, 10), state.Scores[p.ID])
	}
	return common.BoxStyle.Padding(0, 1).Render(strings.TrimRight(sb.String(), "\n"))
}

func playerLabel(p *session.Player) string {
	label := common.PlayerStyle(p.Color).Render(p.Name)
	if p.IsAI {
		label += " " + common.BotIcon
	}
	return label
}

func meSuffix(p *session.Player, myID string) string {
	if p.ID == myID {
		return " (你)"
	}
	return ""
}
