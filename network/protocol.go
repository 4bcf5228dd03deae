package network

// Wire message IDs. 1xx are commands (client -> server), 2xx are outcomes
// (server -> client). Outcomes are broadcast room-wide except where noted.
const (
	MsgTypeHeartbeat = 1

	// Commands.
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeRejoinRoom = 103
	MsgTypeSetReady   = 104
	MsgTypeStartGame  = 105
	MsgTypeEliminate  = 106

	// Outcomes.
	MsgTypeRoomCreated       = 201 // unicast to the creator
	MsgTypeRoomJoined        = 202 // unicast to the joiner
	MsgTypeRoomRejoined      = 203 // unicast to the rejoiner
	MsgTypePlayersChanged    = 204
	MsgTypeReadyChanged      = 205
	MsgTypeGameStarted       = 206
	MsgTypeEliminationResult = 207
	MsgTypeGameOver          = 208
	MsgTypePlayerLeft        = 209
	MsgTypeRoomDeleted       = 210
	MsgTypeCommandError      = 211 // unicast to the offending connection
)
