package apperrors

import (
	"github.com/palemoky/crazy-eights/internal/protocol"
)

// GameError 游戏错误（房间和回合控制共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrRoomNotFound      = newError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull          = newError(protocol.ErrCodeRoomFull)
	ErrNotInRoom         = newError(protocol.ErrCodeNotInRoom)
	ErrAlreadyInRoom     = newError(protocol.ErrCodeAlreadyInRoom)
	ErrGameStarted       = newError(protocol.ErrCodeGameStarted)
	ErrNotHost           = newError(protocol.ErrCodeNotHost)
	ErrNotEnoughPlayers  = newError(protocol.ErrCodeNotEnoughPlayers)
	ErrInvalidMaxPlayers = newError(protocol.ErrCodeInvalidMaxPlayers)
	ErrNameTaken         = newError(protocol.ErrCodeNameTaken)
	ErrGameNotStart      = newError(protocol.ErrCodeGameNotStart)
	ErrGameOver          = newError(protocol.ErrCodeGameOver)
	ErrNotYourTurn       = newError(protocol.ErrCodeNotYourTurn)
	ErrIllegalMove       = newError(protocol.ErrCodeIllegalMove)
	ErrInvalidCard       = newError(protocol.ErrCodeInvalidCard)
	ErrSuitPending       = newError(protocol.ErrCodeSuitPending)
	ErrNoSuitPending     = newError(protocol.ErrCodeNoSuitPending)
	ErrInvalidSuit       = newError(protocol.ErrCodeInvalidSuit)
	ErrStaleIntent       = newError(protocol.ErrCodeStaleIntent)
)
