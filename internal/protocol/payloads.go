package protocol

import "github.com/palemoky/gan-deng-yan/internal/game/rule"

// PlayerJoinPayload 加入房间请求
type PlayerJoinPayload struct {
	Name   string `json:"name"`
	PeerID string `json:"peerId"`
}

// ActionPlayPayload 出牌请求
type ActionPlayPayload struct {
	Cards    []CardInfo `json:"cards"`
	Analysis *rule.Hand `json:"analysis,omitempty"` // 客人本地的牌型判断，房主会重新计算
	Hint     int        `json:"hint,omitempty"`     // 顺子起点提示
}

// ShowMessagePayload 提示文字
type ShowMessagePayload struct {
	Text     string `json:"text"`
	Duration int    `json:"duration"` // 毫秒
}

// HeartbeatPayload 心跳
type HeartbeatPayload struct {
	Timestamp int64 `json:"timestamp"` // 毫秒
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CardInfo 牌信息
type CardInfo struct {
	ID      int    `json:"id"`
	Suit    string `json:"suit"`
	Rank    int    `json:"rank"`
	Display string `json:"display"`
}
