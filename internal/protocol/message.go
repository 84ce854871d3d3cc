package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Seq     uint64          `json:"seq,omitempty"` // 仅 SYNC_STATE 使用，单调递增
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 房主 → 客人 消息类型
const (
	MsgSyncState   MessageType = "SYNC_STATE"   // 全量状态快照
	MsgShowMessage MessageType = "SHOW_MESSAGE" // 提示文字
	MsgHeartbeat   MessageType = "HEARTBEAT"    // 保活
	MsgError       MessageType = "ERROR"        // 操作被拒绝，只发给出错的客人
)

// 客人 → 房主 消息类型
const (
	MsgPlayerJoin MessageType = "PLAYER_JOIN" // 加入房间
	MsgActionPlay MessageType = "ACTION_PLAY" // 出牌
	MsgActionPass MessageType = "ACTION_PASS" // 不出
)

// Known 是否为已知的消息类型
func (t MessageType) Known() bool {
	switch t {
	case MsgSyncState, MsgShowMessage, MsgHeartbeat, MsgError,
		MsgPlayerJoin, MsgActionPlay, MsgActionPass:
		return true
	}
	return false
}
