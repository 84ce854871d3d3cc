package table

import (
	"errors"

	"github.com/palemoky/gan-deng-yan/internal/apperrors"
	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/logger"
)

// SeatLocal 为本机的真人玩家入座，并记录本节点的身份。
// role 为 RoleHost（联机房主）或 RoleLocal（单机）。
func (t *Table) SeatLocal(name string, role session.Role) (string, error) {
	var id string
	err := t.update(func(gs *session.GameState) error {
		p, err := gs.AddPlayer(session.Player{Name: name, Role: role})
		if err != nil {
			return err
		}
		id = p.ID
		gs.Network.Role = role
		gs.Network.MyPlayerID = p.ID
		return nil
	})
	return id, err
}

// OpenRoom 开放房间等待客人加入
func (t *Table) OpenRoom(roomID string) error {
	return t.update(func(gs *session.GameState) error {
		return gs.StartWaiting(roomID)
	})
}

// Join 客人入座，同一个 peerID 重复加入返回原座位
func (t *Table) Join(name, peerID string) (session.Player, error) {
	var seated session.Player
	err := t.update(func(gs *session.GameState) error {
		if p := gs.PlayerByPeer(peerID); p != nil {
			seated = *p
			return errAlreadySeated
		}
		p, err := gs.AddPlayer(session.Player{Name: name, PeerID: peerID, Role: session.RoleGuest})
		if err != nil {
			return err
		}
		seated = *p
		logger.LogInfo("✅ %s (%s) 加入牌桌", p.Name, peerID)
		return nil
	})
	if errors.Is(err, errAlreadySeated) {
		return seated, nil
	}
	return seated, err
}

// errAlreadySeated 重复加入不算修改，不需要广播
var errAlreadySeated = errors.New("already seated")

// Disconnect 客人断线。开局前让出座位，开局后由电脑托管。
func (t *Table) Disconnect(peerID string) {
	err := t.update(func(gs *session.GameState) error {
		p := gs.PlayerByPeer(peerID)
		if p == nil {
			return apperrors.ErrNotInRoom
		}
		switch gs.Status {
		case session.StatusLobby, session.StatusWaiting:
			logger.LogInfo("👋 %s 离开牌桌", p.Name)
			return gs.RemovePlayer(p.ID)
		}
		logger.LogInfo("🤖 %s 断线，由电脑托管", p.Name)
		gs.ConvertToBot(peerID)
		return nil
	})
	if err != nil && !errors.Is(err, apperrors.ErrNotInRoom) {
		logger.LogError("❌ 处理断线失败 (%s): %v", peerID, err)
	}
}

// StartNewHand 用电脑补足 seatCount 个座位并进入发牌阶段
func (t *Table) StartNewHand(seatCount int) error {
	return t.update(func(gs *session.GameState) error {
		// 先校验再补座，失败时不留下半截修改
		if gs.Status != session.StatusLobby && gs.Status != session.StatusWaiting {
			return apperrors.ErrGameStarted
		}
		if err := gs.SeatBots(seatCount); err != nil {
			return err
		}
		return gs.BeginDealing()
	})
}

// ProposePlay 出牌，失败时返回原因且状态不变
func (t *Table) ProposePlay(playerID string, cards []card.Card, hint int) error {
	return t.update(func(gs *session.GameState) error {
		_, err := gs.Play(playerID, cards, hint)
		return err
	})
}

// ProposePass 不出
func (t *Table) ProposePass(playerID string) error {
	return t.update(func(gs *session.GameState) error {
		return gs.Pass(playerID)
	})
}

// Leave 退出牌局回到大厅
func (t *Table) Leave() error {
	return t.update(func(gs *session.GameState) error {
		gs.Reset()
		return nil
	})
}
