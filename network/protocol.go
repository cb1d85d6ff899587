package network

const (
	MsgTypeHeartbeat = 1

	MsgTypeJoinRoom   = 101
	MsgTypeLeaveRoom  = 102
	MsgTypeCreateRoom = 103

	MsgTypePlayerAction = 202

	MsgTypeRoomState  = 301
	MsgTypeObjective  = 302
	MsgTypeTradeOffer = 303
	MsgTypeGameStart  = 304
	MsgTypeGameSync   = 305
	MsgTypeGameEnd    = 306
	MsgTypeError      = 307
)
