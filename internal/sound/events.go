// Package sound 牌局音效。
package sound

import "github.com/palemoky/gan-deng-yan/internal/game/session"

// 音效名，对应音效目录下的文件名
const (
	Deal = "deal"
	Play = "play"
	Bomb = "bomb"
	Pass = "pass"
	Win  = "win"
	Turn = "turn"
)

// ForTransition 比较前后两个状态，返回应播放的音效，没有则返回空串。
// myID 为本节点的玩家，轮到他时提示。
func ForTransition(prev, next session.GameState, myID string) string {
	switch {
	case next.Status == session.StatusCelebrating && prev.Status != session.StatusCelebrating:
		return Win
	case next.Status == session.StatusPlaying && next.HandNumber != prev.HandNumber:
		return Deal
	case next.Status != session.StatusPlaying:
		return ""
	}

	if len(next.TablePile) > len(prev.TablePile) {
		if next.LastPlayed().IsBomb() {
			return Bomb
		}
		return Play
	}
	if next.PassesInARow > prev.PassesInARow || len(next.TablePile) < len(prev.TablePile) {
		return Pass
	}

	cur, before := next.CurrentPlayer(), prev.CurrentPlayer()
	if cur != nil && cur.ID == myID && (before == nil || before.ID != myID) {
		return Turn
	}
	return ""
}
