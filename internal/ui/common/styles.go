// Package common provides shared styles and utilities for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
)

// Icon constants
const (
	DealerIcon = "🀄"
	BotIcon    = "🤖"
	TurnIcon   = "👉"
	WinnerIcon = "🏆"
)

// Lipgloss Styles
var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	RedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	BlackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	JokerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8E44AD")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	NoticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	HintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	TurnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

// CardStyle 按花色取牌面样式
func CardStyle(c card.Card) lipgloss.Style {
	switch c.Suit {
	case card.Heart, card.Diamond:
		return RedStyle
	case card.Joker:
		if c.Rank == card.RankBigJoker {
			return RedStyle
		}
		return JokerStyle
	}
	return BlackStyle
}

// PlayerStyle 玩家名字使用座位颜色
func PlayerStyle(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
