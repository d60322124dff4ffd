// internal/room/events.go
package room

// Wire message types. Each message is a JSON object with a "type" field plus
// type-specific fields; clients match on these exact strings, so the values
// are load-bearing.
const (
	// Client -> server
	MsgRoomCreate       = "ROOM_CREATE"
	MsgRoomJoin         = "ROOM_JOIN"
	MsgRoomLeave        = "ROOM_LEAVE"
	MsgGameRequestStart = "GAME_REQUEST_START"
	MsgChatClient       = "CHAT_PUBLIC_CLIENT_MESSAGE"
	MsgCanvasUpdate     = "CANVAS_UPDATE"
	MsgCanvasClear      = "CANVAS_CLEAR"

	// Server -> client
	MsgRoomCreateSuccess = "ROOM_CREATE_SUCCESS"
	MsgRoomJoinSuccess   = "ROOM_JOIN_SUCCESS"
	MsgRoomJoinFailure   = "ROOM_JOIN_FAILURE"
	MsgRoomDoesNotExist  = "ROOM_DOES_NOT_EXIST"
	MsgRoomMemberJoin    = "ROOM_MEMBER_JOIN"
	MsgRoomMemberLeave   = "ROOM_MEMBER_LEAVE"
	MsgRoomAppointHost   = "ROOM_APPOINT_AS_HOST"
	MsgGameStart         = "GAME_START"
	MsgGameEnd           = "GAME_END"
	MsgGameNextWord      = "GAME_NEXT_WORD"
	MsgGameStartTurn     = "GAME_START_TURN"
	MsgGameEndTurn       = "GAME_END_TURN"
	MsgSuccessfulGuess   = "GAME_SUCCESSFUL_GUESS"
	MsgChatServer        = "CHAT_PUBLIC_SERVER_MESSAGE"
)

// Game phases as they appear on the wire in ROOM_MEMBER_JOIN status fields.
const (
	PhaseWaiting = "GAME_WAITING"
	PhaseOngoing = "GAME_ONGOING"
)
