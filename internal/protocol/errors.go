package protocol

// 错误码
const (
	ErrCodeUnknown        = 1000
	ErrCodeInvalidMsg     = 1001
	ErrCodeRateLimit      = 1002
	ErrCodeRoomFull       = 2002
	ErrCodeNotInRoom      = 2003
	ErrCodeGameStarted    = 2004 // 游戏已开始
	ErrCodeNotEnough      = 2005 // 人数不足
	ErrCodeGameNotStart   = 3001
	ErrCodeNotYourTurn    = 3002
	ErrCodeInvalidCards   = 3003
	ErrCodeCannotBeat     = 3004
	ErrCodeMustPlay       = 3005
	ErrCodeCardsNotInHand = 3006
	ErrCodeWrongPhase     = 3007 // 当前阶段不允许
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:        "未知错误",
	ErrCodeInvalidMsg:     "无效的消息格式",
	ErrCodeRateLimit:      "操作过于频繁，请稍后再试",
	ErrCodeRoomFull:       "房间已满",
	ErrCodeNotInRoom:      "您不在房间中",
	ErrCodeGameStarted:    "游戏已开始",
	ErrCodeNotEnough:      "玩家人数不足",
	ErrCodeGameNotStart:   "游戏尚未开始",
	ErrCodeNotYourTurn:    "还没轮到您",
	ErrCodeInvalidCards:   "无效的牌型",
	ErrCodeCannotBeat:     "您的牌大不过上家",
	ErrCodeMustPlay:       "您必须出牌",
	ErrCodeCardsNotInHand: "您没有这些牌",
	ErrCodeWrongPhase:     "当前阶段不能这样操作",
}
