package domain

import (
	"math/rand"
	"time"
)

// RoomSettings holds configurable room parameters
type RoomSettings struct {
	MinPlayers int `json:"minPlayers"`
	MaxPlayers int `json:"maxPlayers"`
}

// DefaultRoomSettings returns the default room settings. A game needs at
// least one asker, one answer source, and one other participant's question
// to route, hence the floor of three.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		MinPlayers: 3,
		MaxPlayers: 10,
	}
}

// Room is one isolated game session identified by a short code. It owns
// the roster, the question pool, the phase machine and the turn sequence.
// Rooms are not safe for concurrent use; the app layer serializes access.
type Room struct {
	Code      string
	HostID    string
	Phase     Phase
	Settings  RoomSettings
	Pool      *Pool
	Turns     *TurnState
	CreatedAt time.Time

	players []*Player // insertion order preserved for display
	byID    map[string]*Player
	rng     *rand.Rand
}

// NewRoom creates a room in the lobby phase with the given code
func NewRoom(code string) *Room {
	return &Room{
		Code:      code,
		Phase:     PhaseLobby,
		Settings:  DefaultRoomSettings(),
		Pool:      NewPool(),
		CreatedAt: time.Now(),
		players:   make([]*Player, 0),
		byID:      make(map[string]*Player),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddPlayer adds a player to the roster. Late joins are rejected: the game
// does not support joining after the lobby closes.
func (r *Room) AddPlayer(playerID, username string) (*Player, error) {
	if r.Phase != PhaseLobby {
		return nil, ErrPhaseClosed
	}

	if len(r.players) >= r.Settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	player := NewPlayer(playerID, username)
	r.players = append(r.players, player)
	r.byID[playerID] = player

	// The creator becomes the host
	if r.HostID == "" {
		r.HostID = playerID
	}

	return player, nil
}

// RemovePlayer removes a player from the roster. If the host leaves, the
// longest-joined remaining player inherits the room.
func (r *Room) RemovePlayer(playerID string) error {
	if _, ok := r.byID[playerID]; !ok {
		return ErrPlayerNotFound
	}

	delete(r.byID, playerID)
	for i, p := range r.players {
		if p.ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}

	r.Pool.Remove(playerID)

	if r.HostID == playerID && len(r.players) > 0 {
		r.HostID = r.players[0].ID
	}

	return nil
}

// GetPlayer returns a player by ID
func (r *Room) GetPlayer(playerID string) (*Player, error) {
	player, ok := r.byID[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// PlayerIDs returns all player IDs in roster order
func (r *Room) PlayerIDs() []string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.ID)
	}
	return ids
}

// PlayerCount returns the roster size
func (r *Room) PlayerCount() int {
	return len(r.players)
}

// Players returns the roster as wire views, in join order
func (r *Room) Players() []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, p.ToInfo())
	}
	return infos
}

// IsHost checks if the given player is the host
func (r *Room) IsHost(playerID string) bool {
	return r.HostID == playerID
}

// Start moves the room from the lobby into preparation. Host only.
func (r *Room) Start(callerID string) error {
	if r.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if !r.IsHost(callerID) {
		return ErrNotHost
	}
	if len(r.players) < r.Settings.MinPlayers {
		return ErrTooFewPlayers
	}

	r.Phase = PhasePreparation
	return nil
}

// Submit stores a player's questions and answers. Resubmission replaces
// the prior entry; it never duplicates.
func (r *Room) Submit(callerID string, questions, answers []string) error {
	if r.Phase != PhasePreparation {
		return ErrWrongPhase
	}
	if _, ok := r.byID[callerID]; !ok {
		return ErrPlayerNotFound
	}
	if !Meets(len(questions), len(answers), len(r.players)) {
		return ErrInsufficientContent
	}

	r.Pool.Put(callerID, questions, answers)
	return nil
}

// ReadyToPlay reports whether every roster member has a qualifying
// submission. Re-evaluated after each submission and each departure; no
// other action triggers the transition out of preparation.
func (r *Room) ReadyToPlay() bool {
	return r.Phase == PhasePreparation && r.Pool.Covers(r.PlayerIDs())
}

// BeginPlaying builds the turn sequence and enters the playing phase
func (r *Room) BeginPlaying() error {
	if r.Phase != PhasePreparation {
		return ErrWrongPhase
	}

	r.Turns = NewTurnState(BuildTurns(r.PlayerIDs(), r.Pool, r.rng))
	r.Phase = PhasePlaying
	return nil
}

// CurrentTurn returns the turn in play, or nil
func (r *Room) CurrentTurn() *Turn {
	if r.Turns == nil {
		return nil
	}
	return r.Turns.Current()
}

// AdvanceTurn pops the next turn into play. When the sequence is
// exhausted the room enters the game-over phase and gameOver is true.
func (r *Room) AdvanceTurn() (turn *Turn, gameOver bool) {
	if r.Phase != PhasePlaying || r.Turns == nil {
		return nil, false
	}

	turn = r.Turns.Advance()
	if turn == nil {
		r.Phase = PhaseGameOver
		return nil, true
	}

	return turn, false
}

// CastVote records the asker's vote for the presenter they believe gave
// the best answer. The vote is a terminal per-turn signal for the asker;
// it never gates turn advancement.
func (r *Room) CastVote(callerID, targetID string) error {
	turn := r.CurrentTurn()
	if r.Phase != PhasePlaying || turn == nil {
		return ErrWrongPhase
	}
	if callerID != turn.AskerID {
		return ErrNotCurrentAsker
	}
	if _, ok := r.byID[targetID]; !ok {
		return ErrPlayerNotFound
	}

	turn.VotedFor = targetID
	return nil
}

// FinishPresentation records that an audience member finished presenting
// their answer. The asker has no presentation obligation: their call is
// accepted but nothing is recorded, and recorded reports the difference
// so callers can skip announcing a no-op.
func (r *Room) FinishPresentation(callerID string) (recorded bool, err error) {
	turn := r.CurrentTurn()
	if r.Phase != PhasePlaying || turn == nil {
		return false, ErrWrongPhase
	}
	if _, ok := r.byID[callerID]; !ok {
		return false, ErrPlayerNotFound
	}
	if callerID == turn.AskerID {
		return false, nil
	}

	turn.MarkDone(callerID)
	return true, nil
}

// TurnComplete reports whether every current roster member other than the
// asker has finished the current turn
func (r *Room) TurnComplete() bool {
	turn := r.CurrentTurn()
	if turn == nil {
		return false
	}
	return turn.IsComplete(r.PlayerIDs())
}

// Reset returns a finished room to the lobby, keeping the roster but
// discarding all submitted content and turn state. Host only.
func (r *Room) Reset(callerID string) error {
	if r.Phase != PhaseGameOver {
		return ErrWrongPhase
	}
	if !r.IsHost(callerID) {
		return ErrNotHost
	}

	r.Pool.Reset()
	r.Turns = nil
	r.Phase = PhaseLobby
	return nil
}
