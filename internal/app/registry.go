package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"quizparty/internal/domain"
)

const (
	// MinCodeLength and MaxCodeLength bound room code sizes
	MinCodeLength = 4
	MaxCodeLength = 6

	// StaleRoomTimeout is how long an empty room may linger before the
	// sweep removes it. Rooms normally die with their last disconnect;
	// this catches rooms that were created over HTTP but never joined.
	StaleRoomTimeout = 15 * time.Minute
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Registry maps short human-enterable room codes to live room sessions
type Registry struct {
	sessions   map[string]*RoomSession
	mu         sync.RWMutex
	codeLength int
	settings   domain.RoomSettings
	logger     *slog.Logger
	done       chan struct{}
}

// NewRegistry creates a registry generating codes of the given length,
// clamped to the 4-6 character protocol range. New rooms inherit the
// given settings.
func NewRegistry(codeLength int, settings domain.RoomSettings, logger *slog.Logger) *Registry {
	if codeLength < MinCodeLength {
		codeLength = MinCodeLength
	}
	if codeLength > MaxCodeLength {
		codeLength = MaxCodeLength
	}

	r := &Registry{
		sessions:   make(map[string]*RoomSession),
		codeLength: codeLength,
		settings:   settings,
		logger:     logger,
		done:       make(chan struct{}),
	}

	go r.sweepLoop()

	return r
}

// NormalizeCode canonicalizes a room code: codes are case-insensitive on
// input and stored uppercase
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom creates a new room under a code not currently in use. Codes
// free up when rooms are destroyed and are only collision-checked against
// live rooms.
func (r *Registry) CreateRoom() (*RoomSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for attempts := 0; attempts < 10; attempts++ {
		code = r.generateCode()
		if _, exists := r.sessions[code]; !exists {
			break
		}
	}

	if _, exists := r.sessions[code]; exists {
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	room := domain.NewRoom(code)
	room.Settings = r.settings
	session := NewRoomSession(room, r.logger)
	r.sessions[code] = session

	r.logger.Info("room created", "roomCode", code)

	return session, nil
}

// Lookup returns the live room session for a code
func (r *Registry) Lookup(code string) (*RoomSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[NormalizeCode(code)]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return session, nil
}

// DestroyIfEmpty removes the room once its player set is empty, freeing
// the code. Invoked on every disconnect.
func (r *Registry) DestroyIfEmpty(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code = NormalizeCode(code)
	session, ok := r.sessions[code]
	if !ok {
		return
	}

	if session.PlayerCount() > 0 {
		return
	}

	session.Close()
	delete(r.sessions, code)
	r.logger.Info("room destroyed", "roomCode", code)
}

// RoomCount returns the number of live rooms
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// PlayerCount returns the total number of players across all rooms
func (r *Registry) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, session := range r.sessions {
		total += session.PlayerCount()
	}
	return total
}

// Close shuts down the registry and all sessions
func (r *Registry) Close() {
	close(r.done)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		session.Close()
	}
	r.sessions = make(map[string]*RoomSession)
}

// generateCode generates a random room code
func (r *Registry) generateCode() string {
	b := make([]byte, r.codeLength)
	rand.Read(b)

	code := make([]byte, r.codeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

// sweepLoop periodically removes rooms nobody ever joined
func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.sweepStaleRooms()
		}
	}
}

func (r *Registry) sweepStaleRooms() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	for code, session := range r.sessions {
		if session.PlayerCount() == 0 && now.Sub(session.CreatedAt()) > StaleRoomTimeout {
			session.Close()
			delete(r.sessions, code)
			r.logger.Info("stale room swept", "roomCode", code)
		}
	}
}
