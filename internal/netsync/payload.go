// Package netsync 房主权威的状态同步。
//
// 房主执行所有动作，每次修改后把完整状态广播给所有客人；
// 客人只发送出牌/不出的请求，收到 SYNC_STATE 后整体替换本地状态。
package netsync

import (
	"time"

	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/protocol"
)

// SyncHistoryLimit SYNC_STATE 只带最近这么多手的分数变化，
// 总分在 scores 里，完整历史由房主的 /report 提供
const SyncHistoryLimit = 32

// SyncStatePayload 全量状态快照
type SyncStatePayload struct {
	State session.GameState `json:"state"`
}

// newSyncState 构造带序号的 SYNC_STATE 消息
func newSyncState(state session.GameState, seq uint64) (*protocol.Message, error) {
	if n := len(state.GameHistory); n > SyncHistoryLimit {
		state.GameHistory = state.GameHistory[n-SyncHistoryLimit:]
	}
	msg, err := protocol.NewMessage(protocol.MsgSyncState, SyncStatePayload{State: state})
	if err != nil {
		return nil, err
	}
	msg.Seq = seq
	return msg, nil
}

// newShowMessage 构造提示文字消息
func newShowMessage(text string, d time.Duration) *protocol.Message {
	return protocol.MustNewMessage(protocol.MsgShowMessage, protocol.ShowMessagePayload{
		Text:     text,
		Duration: int(d / time.Millisecond),
	})
}

// newHeartbeat 构造心跳消息
func newHeartbeat(now time.Time) *protocol.Message {
	return protocol.MustNewMessage(protocol.MsgHeartbeat, protocol.HeartbeatPayload{Timestamp: now.UnixMilli()})
}
