package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrPhaseClosed         = errors.New("room is no longer accepting players")
	ErrNotHost             = errors.New("only host can perform this action")
	ErrTooFewPlayers       = errors.New("not enough players to start")
	ErrWrongPhase          = errors.New("invalid action for current phase")
	ErrInsufficientContent = errors.New("not enough questions or answers submitted")
	ErrNotCurrentAsker     = errors.New("only the current asker can vote")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrRoomFull            = errors.New("room is full")
)
