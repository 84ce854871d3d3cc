package input

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/gan-deng-yan/internal/apperrors"
	"github.com/palemoky/gan-deng-yan/internal/game/rule"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/ui/model"
)

// HandleKeyPress handles keyboard input and returns whether it was handled.
func HandleKeyPress(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.ShowingHelp() {
		switch msg.Type {
		case tea.KeyEsc:
			m.SetShowingHelp(false)
		case tea.KeyCtrlC:
			return true, leave(m)
		case tea.KeyRunes:
			if isKey(msg, "h") {
				m.SetShowingHelp(false)
			}
		}
		return true, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return true, leave(m)
	case tea.KeyEnter:
		return true, handleEnter(m)
	case tea.KeyRunes:
		// H、C 不会出现在出牌输入里
		switch {
		case isKey(msg, "h"):
			m.SetShowingHelp(true)
			return true, nil
		case isKey(msg, "c"):
			m.SetCardCounterEnabled(!m.CardCounterEnabled())
			return true, nil
		}
	}
	return false, nil
}

func isKey(msg tea.KeyMsg, key string) bool {
	return strings.EqualFold(msg.String(), key)
}

// leave 离开牌局并退出
func leave(m model.Model) tea.Cmd {
	_ = m.Controller().Leave()
	return tea.Quit
}

func handleEnter(m model.Model) tea.Cmd {
	state := m.State()
	in := m.Input()

	switch state.Status {
	case session.StatusLobby, session.StatusWaiting:
		starter, ok := m.Controller().(model.Starter)
		if !ok {
			return m.ShowNotice("等待房主开始", false)
		}
		if err := starter.StartNewHand(m.SeatCount()); err != nil {
			return m.ShowNotice(errorText(err), true)
		}
		return nil

	case session.StatusPlaying:
		cur := state.CurrentPlayer()
		if cur == nil || cur.ID != m.MyID() {
			return m.ShowNotice(apperrors.ErrNotYourTurn.Message, true)
		}
		return submit(m, state, in.Value())
	}
	return nil
}

// submit 解析输入并发给控制器，失败时保留输入方便修改
func submit(m model.Model, state session.GameState, text string) tea.Cmd {
	me := state.Player(m.MyID())
	cmd, err := ParseCommand(text, me.Hand)
	if err != nil {
		return m.ShowNotice(err.Error(), true)
	}

	if cmd.Pass {
		err = m.Controller().ProposePass(me.ID)
	} else {
		if rule.Analyze(cmd.Cards, cmd.Hint) == nil && !loneJokerLead(state, cmd) {
			return m.ShowNotice(apperrors.ErrInvalidCards.Message, true)
		}
		err = m.Controller().ProposePlay(me.ID, cmd.Cards, cmd.Hint)
	}
	if err != nil {
		return m.ShowNotice(errorText(err), true)
	}
	m.Input().Reset()
	return nil
}

// loneJokerLead 最后一张是王时允许单出，交给牌局判断
func loneJokerLead(state session.GameState, cmd Command) bool {
	return len(cmd.Cards) == 1 && cmd.Cards[0].IsJoker() && state.MustPlay()
}

func errorText(err error) string {
	var ge *apperrors.GameError
	if errors.As(err, &ge) {
		return ge.Message
	}
	return err.Error()
}
