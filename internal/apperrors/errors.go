package apperrors

import (
	"errors"
	"fmt"

	"github.com/palemoky/gan-deng-yan/internal/protocol"
)

// GameError 游戏错误，可直接转换为 ERROR 消息
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomFull         = &GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrNotInRoom        = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrGameStarted      = &GameError{Code: protocol.ErrCodeGameStarted, Message: "游戏已开始"}
	ErrNotEnoughPlayers = &GameError{Code: protocol.ErrCodeNotEnough, Message: "至少需要两名玩家"}
	ErrGameNotStart     = &GameError{Code: protocol.ErrCodeGameNotStart, Message: "游戏尚未开始"}
	ErrNotYourTurn      = &GameError{Code: protocol.ErrCodeNotYourTurn, Message: "还没轮到您"}
	ErrInvalidCards     = &GameError{Code: protocol.ErrCodeInvalidCards, Message: "无效的牌型"}
	ErrCannotBeat       = &GameError{Code: protocol.ErrCodeCannotBeat, Message: "您的牌大不过上家"}
	ErrMustPlay         = &GameError{Code: protocol.ErrCodeMustPlay, Message: "您必须出牌"}
	ErrCardsNotInHand   = &GameError{Code: protocol.ErrCodeCardsNotInHand, Message: "您没有这些牌"}
	ErrWrongPhase       = &GameError{Code: protocol.ErrCodeWrongPhase, Message: "当前阶段不能这样操作"}
	ErrInvalidMessage   = &GameError{Code: protocol.ErrCodeInvalidMsg, Message: "无效的消息格式"}
	ErrRateLimited      = &GameError{Code: protocol.ErrCodeRateLimit, Message: "操作过于频繁，请稍后再试"}
)

// NewInvalidMessage 带具体原因的消息格式错误，errors.Is 仍能匹配 ErrInvalidMessage
func NewInvalidMessage(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidMessage, detail)
}

// Code 取出错误码，非 GameError 返回 ErrCodeUnknown
func Code(err error) int {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return protocol.ErrCodeUnknown
}

// ToMessage 将错误转换为 ERROR 消息
func ToMessage(err error) *protocol.Message {
	var ge *GameError
	if errors.As(err, &ge) {
		return protocol.NewErrorMessageWithText(ge.Code, ge.Message)
	}
	return protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error())
}
