package model

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/sound"
	"github.com/palemoky/gan-deng-yan/internal/ui/common"
)

// noticeDuration 提示默认展示时长
const noticeDuration = 3 * time.Second

// Options GameModel 的可选配置
type Options struct {
	Seats  int         // 房主开局时的座位数
	Sounds SoundPlayer // nil 表示静音
}

// GameModel 牌桌界面：状态只来自控制器推送，按键转换为出牌请求
type GameModel struct {
	ctrl   Controller
	sounds SoundPlayer
	seats  int

	state       session.GameState
	updates     chan session.GameState
	unsubscribe func()

	input     *textinput.Model
	notice    *Notice
	noticeSeq int

	cardCounterEnabled bool
	showingHelp        bool

	width  int
	height int

	// View renderer (injected to break circular import)
	viewRenderer func(Model) string

	// Key handler (injected to break circular import)
	keyHandler func(Model, tea.KeyMsg) (bool, tea.Cmd)
}

// NewGameModel creates a new GameModel.
func NewGameModel(ctrl Controller, opts Options) *GameModel {
	ti := textinput.New()
	ti.CharLimit = 30
	ti.Width = 36
	ti.Focus()

	m := &GameModel{
		ctrl:    ctrl,
		sounds:  opts.Sounds,
		seats:   opts.Seats,
		updates: make(chan session.GameState, 1),
		input:   &ti,
	}
	// 先订阅再取快照，程序启动前到达的状态留在 updates 里
	m.unsubscribe = ctrl.Subscribe(m.push)
	m.state = ctrl.Snapshot()
	m.refreshPlaceholder()
	return m
}

func (m *GameModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForState())
}

// push 控制器回调，可能在持锁的协程中调用，只保留最新状态且不阻塞
func (m *GameModel) push(s session.GameState) {
	for {
		select {
		case m.updates <- s:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

func (m *GameModel) waitForState() tea.Cmd {
	return func() tea.Msg {
		return StateMsg{State: <-m.updates}
	}
}

// Close 取消订阅
func (m *GameModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// --- Model interface implementation ---

func (m *GameModel) State() session.GameState { return m.state }
func (m *GameModel) MyID() string             { return m.state.Network.MyPlayerID }
func (m *GameModel) Controller() Controller   { return m.ctrl }
func (m *GameModel) SeatCount() int           { return m.seats }
func (m *GameModel) Input() *textinput.Model  { return m.input }
func (m *GameModel) Notice() *Notice          { return m.notice }
func (m *GameModel) Width() int               { return m.width }
func (m *GameModel) Height() int              { return m.height }

func (m *GameModel) CardCounterEnabled() bool           { return m.cardCounterEnabled }
func (m *GameModel) SetCardCounterEnabled(enabled bool) { m.cardCounterEnabled = enabled }
func (m *GameModel) ShowingHelp() bool                  { return m.showingHelp }
func (m *GameModel) SetShowingHelp(showing bool)        { m.showingHelp = showing }

// ShowNotice 显示提示，到期自动清除
func (m *GameModel) ShowNotice(text string, isError bool) tea.Cmd {
	return m.showNotice(text, isError, noticeDuration)
}

func (m *GameModel) showNotice(text string, isError bool, d time.Duration) tea.Cmd {
	if d <= 0 {
		d = noticeDuration
	}
	m.noticeSeq++
	m.notice = &Notice{Text: text, IsError: isError}
	seq := m.noticeSeq
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// SetViewRenderer sets the view rendering function.
func (m *GameModel) SetViewRenderer(fn func(Model) string) {
	m.viewRenderer = fn
}

// SetKeyHandler sets the keyboard event handler function.
func (m *GameModel) SetKeyHandler(fn func(Model, tea.KeyMsg) (bool, tea.Cmd)) {
	m.keyHandler = fn
}

// Update handles tea messages.
func (m *GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case StateMsg:
		m.applyState(msg.State)
		cmds = append(cmds, m.waitForState())

	case NoticeMsg:
		cmds = append(cmds, m.showNotice(msg.Text, msg.IsError, msg.Duration))

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}

	case tea.KeyMsg:
		if m.keyHandler != nil {
			handled, keyCmd := m.keyHandler(m, msg)
			if keyCmd != nil {
				cmds = append(cmds, keyCmd)
			}
			if handled {
				return m, tea.Batch(cmds...)
			}
		}
	}

	newInput, cmd := m.input.Update(msg)
	*m.input = newInput
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// applyState 整体替换状态，按变化播放音效
func (m *GameModel) applyState(next session.GameState) {
	prev := m.state
	m.state = next

	if m.sounds != nil {
		m.sounds.Play(sound.ForTransition(prev, next, m.MyID()))
	}
	if next.HandNumber != prev.HandNumber || next.Status != prev.Status {
		m.input.Reset()
	}
	m.refreshPlaceholder()
}

// refreshPlaceholder 按当前局面提示可以输入什么
func (m *GameModel) refreshPlaceholder() {
	s := &m.state
	switch s.Status {
	case session.StatusLobby, session.StatusWaiting:
		if _, ok := m.ctrl.(Starter); ok {
			m.input.Placeholder = "按回车开始"
		} else {
			m.input.Placeholder = "等待房主开始..."
		}
	case session.StatusPlaying:
		cur := s.CurrentPlayer()
		switch {
		case cur == nil || cur.ID != m.MyID():
			m.input.Placeholder = "等待其他玩家出牌..."
		case s.MustPlay():
			m.input.Placeholder = "你必须出牌 (如 345、33、10JQ、JOKER)"
		default:
			m.input.Placeholder = "出牌或 PASS"
		}
	default:
		m.input.Placeholder = ""
	}
}

// View renders the model.
func (m *GameModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.viewRenderer == nil {
		return "View renderer not initialized"
	}
	return common.DocStyle.Render(m.viewRenderer(m))
}
