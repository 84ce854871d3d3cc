// Package model defines the core types and interfaces for the UI.
package model

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
)

// Controller 界面背后的牌局：本地牌桌（单机或房主）或者连着房主的客人
type Controller interface {
	Snapshot() session.GameState
	Subscribe(fn func(session.GameState)) func()
	ProposePlay(playerID string, cards []card.Card, hint int) error
	ProposePass(playerID string) error
	Leave() error
}

// Starter 能开新一手的控制器，只有持有权威状态的一方实现
type Starter interface {
	StartNewHand(seatCount int) error
}

// SoundPlayer 播放音效
type SoundPlayer interface {
	Play(name string)
}

// Notice 屏幕上的临时提示
type Notice struct {
	Text    string
	IsError bool
}

// --- Tea Messages ---

// StateMsg 控制器推送的新状态
type StateMsg struct {
	State session.GameState
}

// NoticeMsg 显示一条临时提示，Duration 为 0 时使用默认时长
type NoticeMsg struct {
	Text     string
	IsError  bool
	Duration time.Duration
}

// clearNoticeMsg 到期清除提示，seq 不匹配说明已被新的提示替换
type clearNoticeMsg struct {
	seq int
}

// --- Model Interface ---

// Model is the interface used by view/input packages.
type Model interface {
	// State
	State() session.GameState
	MyID() string
	Controller() Controller
	SeatCount() int

	// UI components
	Input() *textinput.Model
	Notice() *Notice
	ShowNotice(text string, isError bool) tea.Cmd

	// Features
	CardCounterEnabled() bool
	SetCardCounterEnabled(bool)
	ShowingHelp() bool
	SetShowingHelp(bool)

	// Dimensions
	Width() int
	Height() int
}
