package ws

import (
	"encoding/json"
	"time"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgJoinRoom           MessageType = "join-room"
	MsgStartGame          MessageType = "start-game"
	MsgAddQuestions       MessageType = "add-questions"
	MsgCastVote           MessageType = "cast-vote"
	MsgFinishPresentation MessageType = "finish-presentation"
	MsgRestartGame        MessageType = "restart-game"
	MsgPing               MessageType = "ping"
)

// Server → Client message types for direct responses. Broadcast types are
// the domain event names and pass through unchanged.
const (
	MsgRoomJoined MessageType = "room-joined"
	MsgAck        MessageType = "ack"
	MsgError      MessageType = "error"
	MsgPong       MessageType = "pong"
)

// ClientMessage is the inbound action envelope. Payload stays raw until
// the type-specific decoder validates its shape.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is a direct response to the originating caller
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// JoinRoomPayload is the payload for join-room. An empty code creates a
// fresh room with the caller as host.
type JoinRoomPayload struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

// CastVotePayload is the payload for cast-vote
type CastVotePayload struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

// AddQuestionsPayload is the payload for add-questions
type AddQuestionsPayload struct {
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

// Server message payloads

// RoomJoinedPayload is the direct response to a successful join
type RoomJoinedPayload struct {
	Status   string      `json:"status"`
	RoomCode string      `json:"roomcode"`
	Players  interface{} `json:"players"`
	Host     string      `json:"host"`
}

// AckPayload is the direct response to a successful mutation
type AckPayload struct {
	Status string      `json:"status"`
	Action MessageType `json:"action"`
}

// ErrorPayload is the uniform error envelope, sent to the originating
// caller only and never broadcast
type ErrorPayload struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Error reasons
const (
	ReasonRoomNotFound        = "room-not-found"
	ReasonPhaseClosed         = "phase-closed"
	ReasonNotHost             = "not-host"
	ReasonTooFewPlayers       = "too-few-players"
	ReasonWrongPhase          = "wrong-phase"
	ReasonInsufficientContent = "insufficient-content"
	ReasonNotCurrentAsker     = "not-current-asker"
	ReasonInvalidPayload      = "invalid-payload"
	ReasonRoomFull            = "room-full"
	ReasonInternalError       = "internal-error"
)
