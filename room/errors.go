package room

import "errors"

// Command errors. All of these are recoverable: they are reported to the
// originating connection only and never terminate the room.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomNotJoinable     = errors.New("room is no longer accepting players")
	ErrRoomFull            = errors.New("room is full")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInsufficientPlayers = errors.New("at least two players are required to start")
	ErrNotAllReady         = errors.New("all players must be ready to start")
	ErrNotYourTurn         = errors.New("it is not your turn")
	ErrAlreadyEliminated   = errors.New("you are already eliminated")
	ErrSelfTargetForbidden = errors.New("you cannot call your own secret")
	ErrInvalidValue        = errors.New("value must be a number within the room's range")
	ErrInvalidRange        = errors.New("range minimum must be less than maximum")
)
