package domain

import "time"

// Player represents a player in a room. The ID is the opaque connection
// identifier assigned when the socket is accepted and is the only handle
// used for ownership checks.
type Player struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

// NewPlayer creates a new player with the given ID and username
func NewPlayer(id, username string) *Player {
	return &Player{
		ID:       id,
		Username: username,
		JoinedAt: time.Now(),
	}
}

// PlayerInfo is the wire view of a player
type PlayerInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ToInfo converts a Player to PlayerInfo
func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{
		ID:       p.ID,
		Username: p.Username,
	}
}
