package domain

// Phase represents the current phase of a room
type Phase string

const (
	PhaseLobby       Phase = "LOBBY"       // Waiting for players to join
	PhasePreparation Phase = "PREPARATION" // Players writing questions and answers
	PhasePlaying     Phase = "PLAYING"     // Turns being presented and voted on
	PhaseGameOver    Phase = "GAME_OVER"   // All turns consumed
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseLobby:       {PhasePreparation},
		PhasePreparation: {PhasePlaying},
		PhasePlaying:     {PhaseGameOver},
		PhaseGameOver:    {PhaseLobby}, // Explicit reset back to the lobby
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
