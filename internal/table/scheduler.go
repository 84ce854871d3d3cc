package table

import (
	"time"

	"github.com/palemoky/gan-deng-yan/internal/game/bot"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/logger"
)

// schedule 根据当前状态安排下一个延时动作，调用时持有锁
func (t *Table) schedule() {
	t.stopTimer()

	var (
		delay  time.Duration
		action func(gs *session.GameState) error
	)

	switch t.gs.Status {
	case session.StatusPlaying:
		p := t.gs.CurrentPlayer()
		if p == nil || !p.IsAI {
			return
		}
		delay, action = t.opts.BotThink, botMove
	case session.StatusCelebrating:
		delay, action = t.opts.Celebrate, t.enterScoring
	case session.StatusScoring:
		delay, action = t.opts.Scoring, nextHand
	case session.StatusDealing:
		delay, action = t.opts.Deal, func(gs *session.GameState) error {
			return gs.StartNewHand(nil)
		}
	default:
		return
	}

	version := t.version
	t.timer = time.AfterFunc(delay, func() {
		t.updateIf(version, action)
	})
}

// botMove 电脑替当前玩家出牌或不出
func botMove(gs *session.GameState) error {
	p := gs.CurrentPlayer()
	move := bot.Choose(p.Hand, gs.LastHand())
	if move.IsPass() {
		return gs.Pass(p.ID)
	}
	if _, err := gs.Play(p.ID, move.Cards, move.Hint); err != nil {
		logger.LogError("🤖 %s 出牌失败: %v", p.Name, err)
		if gs.MustPlay() {
			return err
		}
		return gs.Pass(p.ID)
	}
	return nil
}

// enterScoring 庆祝结束进入结算，战报回调在锁外执行
func (t *Table) enterScoring(gs *session.GameState) error {
	res, err := gs.EnterScoring()
	if err != nil {
		return err
	}
	logger.LogInfo("🏆 第 %d 手结束，%s 获胜，倍数 x%d", gs.HandNumber, res.WinnerID, res.Multiplier)

	if t.opts.OnScored != nil {
		state := *gs.Clone()
		state.SetRand(nil)
		go t.opts.OnScored(state, res)
	}
	return nil
}

// nextHand 结算展示完毕，进入下一手的发牌阶段
func nextHand(gs *session.GameState) error {
	return gs.BeginDealing()
}
