package domain

import "time"

// EventType identifies an outbound notification. Values double as the
// wire message type.
type EventType string

const (
	EventPlayerJoined       EventType = "player-joined"
	EventPlayerLeft         EventType = "player-left"
	EventPreparationStarted EventType = "preparation-started"
	EventPlayerReady        EventType = "player-ready"
	EventTurnStarted        EventType = "turn-started"
	EventPresentationDone   EventType = "presentation-done"
	EventPlayerVoted        EventType = "player-voted"
	EventGameOver           EventType = "game-over"
	EventRoomReset          EventType = "room-reset"
)

// Event is a state delta to be delivered to a room's players. PlayerID
// targets a single recipient; ExcludeID withholds the event from one
// player while broadcasting to the rest; with neither set the event goes
// to everyone in the room.
type Event struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode"`
	PlayerID  string      `json:"playerId,omitempty"`
	ExcludeID string      `json:"-"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a room-wide broadcast event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *Event {
	return &Event{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates an event targeted at a single player
func NewPlayerEvent(eventType EventType, roomCode, playerID string, payload interface{}) *Event {
	return &Event{
		Type:      eventType,
		RoomCode:  roomCode,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewBroadcastExcluding creates a room-wide event withheld from one player
func NewBroadcastExcluding(eventType EventType, roomCode, excludeID string, payload interface{}) *Event {
	return &Event{
		Type:      eventType,
		RoomCode:  roomCode,
		ExcludeID: excludeID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for the different events

// PlayerJoinedPayload is sent to existing members when a player joins.
// The joiner learns the roster from the join response instead, so they
// never see a duplicate entry.
type PlayerJoinedPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// PlayerLeftPayload is sent when a player disconnects. HostID reflects any
// host reassignment caused by the departure.
type PlayerLeftPayload struct {
	ID     string `json:"id"`
	HostID string `json:"hostId"`
}

// PreparationStartedPayload carries the full roster so clients can compute
// the minimum-contribution thresholds
type PreparationStartedPayload struct {
	Players []PlayerInfo `json:"players"`
}

// PlayerReadyPayload is sent when a player's submission is accepted
type PlayerReadyPayload struct {
	PlayerID string `json:"playerId"`
}

// TurnStartedPayload is the per-player view of a new turn. The asker gets
// the candidate answerers to vote between; everyone else gets the single
// answer they are to perform.
type TurnStartedPayload struct {
	CurrentPlayer string       `json:"currentPlayer"`
	Question      string       `json:"question"`
	Players       []PlayerInfo `json:"players,omitempty"`
	Answer        string       `json:"answer,omitempty"`
}

// PresentationDonePayload marks an audience member as finished
type PresentationDonePayload struct {
	PlayerID string `json:"playerId"`
}

// PlayerVotedPayload carries the asker's pick for the turn
type PlayerVotedPayload struct {
	PlayerID string `json:"playerId"`
}

// RoomResetPayload is sent when the host returns a finished room to the
// lobby
type RoomResetPayload struct {
	Players []PlayerInfo `json:"players"`
	HostID  string       `json:"hostId"`
}
