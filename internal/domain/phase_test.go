package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseTransitions(t *testing.T) {
	phases := []Phase{PhaseLobby, PhasePreparation, PhasePlaying, PhaseGameOver}

	allowed := map[Phase]Phase{
		PhaseLobby:       PhasePreparation,
		PhasePreparation: PhasePlaying,
		PhasePlaying:     PhaseGameOver,
		PhaseGameOver:    PhaseLobby,
	}

	// Only the forward edges plus the explicit game-over reset are legal
	for _, from := range phases {
		for _, to := range phases {
			got := from.CanTransitionTo(to)
			want := allowed[from] == to
			assert.Equal(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestPhaseUnknown(t *testing.T) {
	assert.False(t, Phase("BOGUS").CanTransitionTo(PhaseLobby))
}
