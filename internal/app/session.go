package app

import (
	"log/slog"
	"sync"
	"time"

	"quizparty/internal/domain"
)

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetPlayerID() string
	Close() error
}

// RoomSnapshot is what a joining player gets back: the authoritative
// roster at the moment of joining
type RoomSnapshot struct {
	Code    string              `json:"roomcode"`
	Players []domain.PlayerInfo `json:"players"`
	HostID  string              `json:"host"`
}

// RoomSession wraps a room with concurrency control and client
// management. All state-mutating actions for a room pass through its
// mutex, so concurrent actions against the same room apply one at a time
// in arrival order; actions against different rooms are independent.
type RoomSession struct {
	room      *domain.Room
	mu        sync.RWMutex
	clients   map[string]ClientConnection // playerID -> client
	clientsMu sync.RWMutex
	logger    *slog.Logger

	// Event channel for broadcasting
	events chan *delivery
	done   chan struct{}
}

// NewRoomSession creates a session around the given room
func NewRoomSession(room *domain.Room, logger *slog.Logger) *RoomSession {
	session := &RoomSession{
		room:    room,
		clients: make(map[string]ClientConnection),
		logger:  logger,
		events:  make(chan *delivery, 100),
		done:    make(chan struct{}),
	}

	go session.eventLoop()

	return session
}

// Code returns the room code
func (s *RoomSession) Code() string {
	return s.room.Code
}

// CreatedAt returns when the room was created
func (s *RoomSession) CreatedAt() time.Time {
	return s.room.CreatedAt
}

// PlayerCount returns the number of players in the room
func (s *RoomSession) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room.PlayerCount()
}

// Phase returns the current room phase
func (s *RoomSession) Phase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room.Phase
}

// CanJoin checks if a new player can join the room
func (s *RoomSession) CanJoin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room.Phase == domain.PhaseLobby && s.room.PlayerCount() < s.room.Settings.MaxPlayers
}

// RegisterClient registers a client connection for a player
func (s *RoomSession) RegisterClient(playerID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[playerID] = client
}

// UnregisterClient removes a client connection
func (s *RoomSession) UnregisterClient(playerID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, playerID)
}

// Join adds a player to the room and notifies the existing members. The
// joiner is excluded from the broadcast: they get the roster in the
// returned snapshot, so including them would duplicate their own entry.
func (s *RoomSession) Join(playerID, username string) (*RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.room.AddPlayer(playerID, username)
	if err != nil {
		return nil, err
	}

	s.queueEvent(domain.NewBroadcastExcluding(domain.EventPlayerJoined, s.room.Code, playerID, &domain.PlayerJoinedPayload{
		ID:       player.ID,
		Username: player.Username,
	}))

	return &RoomSnapshot{
		Code:    s.room.Code,
		Players: s.room.Players(),
		HostID:  s.room.HostID,
	}, nil
}

// StartGame moves the room into preparation (host only)
func (s *RoomSession) StartGame(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.Start(playerID); err != nil {
		return err
	}

	s.queueEvent(domain.NewEvent(domain.EventPreparationStarted, s.room.Code, &domain.PreparationStartedPayload{
		Players: s.room.Players(),
	}))

	return nil
}

// SubmitQuestions stores a player's contribution. When the last
// qualifying submission arrives the room deterministically enters the
// playing phase and the first turn is dealt.
func (s *RoomSession) SubmitQuestions(playerID string, questions, answers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.Submit(playerID, questions, answers); err != nil {
		return err
	}

	s.queueEvent(domain.NewEvent(domain.EventPlayerReady, s.room.Code, &domain.PlayerReadyPayload{
		PlayerID: playerID,
	}))

	if s.room.ReadyToPlay() {
		s.beginPlaying()
	}

	return nil
}

// CastVote records the current asker's vote and relays it to the room
func (s *RoomSession) CastVote(playerID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.CastVote(playerID, targetID); err != nil {
		return err
	}

	s.queueEvent(domain.NewEvent(domain.EventPlayerVoted, s.room.Code, &domain.PlayerVotedPayload{
		PlayerID: targetID,
	}))

	return nil
}

// FinishPresentation marks an audience member as done. Full audience
// coverage is the sole automatic-progression trigger of the playing
// phase; turns never time out.
func (s *RoomSession) FinishPresentation(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recorded, err := s.room.FinishPresentation(playerID)
	if err != nil {
		return err
	}
	if !recorded {
		// The asker has nothing to present, so there is nothing to announce
		return nil
	}

	s.queueEvent(domain.NewEvent(domain.EventPresentationDone, s.room.Code, &domain.PresentationDonePayload{
		PlayerID: playerID,
	}))

	if s.room.TurnComplete() {
		s.advanceTurn()
	}

	return nil
}

// ResetGame returns a finished room to the lobby (host only)
func (s *RoomSession) ResetGame(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.Reset(playerID); err != nil {
		return err
	}

	s.queueEvent(domain.NewEvent(domain.EventRoomReset, s.room.Code, &domain.RoomResetPayload{
		Players: s.room.Players(),
		HostID:  s.room.HostID,
	}))

	return nil
}

// Disconnect removes a player and re-evaluates whatever their departure
// unblocks: a pending preparation threshold, an outstanding done
// obligation, or a forfeited vote when the asker leaves mid-turn. The
// game never stalls waiting on a departed player.
func (s *RoomSession) Disconnect(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasAsker := false
	if turn := s.room.CurrentTurn(); turn != nil {
		wasAsker = turn.AskerID == playerID
	}

	if err := s.room.RemovePlayer(playerID); err != nil {
		return
	}

	s.queueEvent(domain.NewEvent(domain.EventPlayerLeft, s.room.Code, &domain.PlayerLeftPayload{
		ID:     playerID,
		HostID: s.room.HostID,
	}))

	if s.room.PlayerCount() == 0 {
		return
	}

	switch s.room.Phase {
	case domain.PhasePreparation:
		// The departed player may have been the last one missing
		if s.room.ReadyToPlay() {
			s.beginPlaying()
		}
	case domain.PhasePlaying:
		if wasAsker {
			// A departed asker forfeits their vote
			s.advanceTurn()
		} else if s.room.TurnComplete() {
			// A departed non-asker counts as done
			s.advanceTurn()
		}
	}
}

// beginPlaying builds the turn sequence and deals the first turn.
// Caller must hold the lock.
func (s *RoomSession) beginPlaying() {
	if err := s.room.BeginPlaying(); err != nil {
		s.logger.Error("failed to begin playing", "roomCode", s.room.Code, "error", err)
		return
	}

	s.advanceTurn()
}

// advanceTurn pops turns until one with a live asker and outstanding
// audience obligations is in play, broadcasting the per-player views.
// When the queue runs dry the room enters game over. Caller must hold
// the lock.
func (s *RoomSession) advanceTurn() {
	for {
		turn, gameOver := s.room.AdvanceTurn()
		if gameOver {
			s.queueEvent(domain.NewEvent(domain.EventGameOver, s.room.Code, nil))
			return
		}
		if turn == nil {
			return
		}

		// The asker may have disconnected after the sequence was built
		if _, err := s.room.GetPlayer(turn.AskerID); err != nil {
			continue
		}

		// With no remaining audience the turn has nothing to present
		if s.room.TurnComplete() {
			continue
		}

		s.broadcastTurn(turn)
		return
	}
}

// broadcastTurn sends each player their view of the new turn: the asker
// gets the candidate answerers to vote between, every audience member
// gets the answer they are to perform. Caller must hold the lock.
func (s *RoomSession) broadcastTurn(turn *domain.Turn) {
	audience := make([]domain.PlayerInfo, 0, s.room.PlayerCount()-1)
	for _, info := range s.room.Players() {
		if info.ID != turn.AskerID {
			audience = append(audience, info)
		}
	}

	s.queueEvent(domain.NewPlayerEvent(domain.EventTurnStarted, s.room.Code, turn.AskerID, &domain.TurnStartedPayload{
		CurrentPlayer: turn.AskerID,
		Question:      turn.Question.Text,
		Players:       audience,
	}))

	for _, info := range audience {
		answer := turn.Answers[info.ID]
		s.queueEvent(domain.NewPlayerEvent(domain.EventTurnStarted, s.room.Code, info.ID, &domain.TurnStartedPayload{
			CurrentPlayer: turn.AskerID,
			Question:      turn.Question.Text,
			Answer:        answer.Text,
		}))
	}
}

// delivery pairs an event with the recipients resolved when it was
// queued. Pinning the audience at queue time keeps the event with the
// membership that produced it; clients registered later never see it.
type delivery struct {
	event   *domain.Event
	targets []ClientConnection
}

// queueEvent resolves the event's recipients against the current client
// set and queues the delivery. Events with nobody to notify are dropped.
func (s *RoomSession) queueEvent(event *domain.Event) {
	s.clientsMu.RLock()
	var targets []ClientConnection
	if event.PlayerID != "" {
		// Player-specific events go to that player only
		if client, ok := s.clients[event.PlayerID]; ok {
			targets = append(targets, client)
		}
	} else {
		for playerID, client := range s.clients {
			if playerID == event.ExcludeID {
				continue
			}
			targets = append(targets, client)
		}
	}
	s.clientsMu.RUnlock()

	if len(targets) == 0 {
		return
	}

	select {
	case s.events <- &delivery{event: event, targets: targets}:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop processes queued deliveries on a dedicated goroutine
func (s *RoomSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case d := <-s.events:
			s.deliver(d)
		}
	}
}

func (s *RoomSession) deliver(d *delivery) {
	for _, client := range d.targets {
		if err := client.Send(d.event); err != nil {
			s.logger.Debug("failed to send to client", "playerID", client.GetPlayerID(), "error", err)
		}
	}
}

// Close shuts down the session
func (s *RoomSession) Close() {
	select {
	case <-s.done:
		return // Already closed
	default:
		close(s.done)
	}

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
