package domain

import "math/rand"

// AuthoredText is a question or answer string together with the player who
// submitted it
type AuthoredText struct {
	AuthorID string `json:"authorId"`
	Text     string `json:"text"`
}

// Turn is one asker plus an audience-presented question/answer pairing.
// Each audience member receives their own candidate answer; the done set
// tracks which of them have acknowledged finishing their presentation.
type Turn struct {
	AskerID  string                  `json:"askerId"`
	Question AuthoredText            `json:"question"`
	Answers  map[string]AuthoredText `json:"answers"` // presenter ID -> answer
	Done     map[string]struct{}     `json:"-"`
	VotedFor string                  `json:"votedFor,omitempty"`
}

// MarkDone records that an audience member finished their presentation.
// The asker has no presentation obligation and is never added.
func (t *Turn) MarkDone(playerID string) {
	if playerID == t.AskerID {
		return
	}
	t.Done[playerID] = struct{}{}
}

// IsComplete reports whether every roster member other than the asker has
// finished. Evaluated against the current roster, so departed players no
// longer count toward the obligation.
func (t *Turn) IsComplete(rosterIDs []string) bool {
	for _, id := range rosterIDs {
		if id == t.AskerID {
			continue
		}
		if _, ok := t.Done[id]; !ok {
			return false
		}
	}
	return true
}

// TurnState holds the fixed turn sequence built at game start and the turn
// currently in play
type TurnState struct {
	remaining []*Turn
	current   *Turn
}

// NewTurnState creates a turn state over the given sequence
func NewTurnState(turns []*Turn) *TurnState {
	return &TurnState{remaining: turns}
}

// Current returns the turn in play, or nil between turns
func (ts *TurnState) Current() *Turn {
	return ts.current
}

// Remaining returns the number of turns not yet started
func (ts *TurnState) Remaining() int {
	return len(ts.remaining)
}

// Advance pops the next queued turn into play with a fresh done set.
// Returns nil when the sequence is exhausted.
func (ts *TurnState) Advance() *Turn {
	if len(ts.remaining) == 0 {
		ts.current = nil
		return nil
	}

	next := ts.remaining[0]
	ts.remaining = ts.remaining[1:]
	next.Done = make(map[string]struct{})
	ts.current = next

	return next
}

// BuildTurns constructs the full turn sequence from the submitted pool.
// The sequence is built once, at the Preparation to Playing transition,
// and iterated strictly in order afterwards.
//
// Guarantees, given sufficient pool volume:
//   - the asker never authored the presented question
//   - no answer was authored by the asker or by the presenter receiving it
//   - every player appears as asker exactly once
//   - no question or answer is used more than once across turns
//
// A player is skipped as asker only when no eligible content remains.
func BuildTurns(rosterIDs []string, pool *Pool, rng *rand.Rand) []*Turn {
	askerOrder := make([]string, len(rosterIDs))
	copy(askerOrder, rosterIDs)
	rng.Shuffle(len(askerOrder), func(i, j int) {
		askerOrder[i], askerOrder[j] = askerOrder[j], askerOrder[i]
	})

	// Mutable per-author supplies, shuffled so draws are unpredictable
	questions := make(map[string][]string)
	answers := make(map[string][]string)
	for _, id := range rosterIDs {
		c, ok := pool.Get(id)
		if !ok {
			continue
		}
		questions[id] = shuffled(c.Questions, rng)
		answers[id] = shuffled(c.Answers, rng)
	}

	turns := make([]*Turn, 0, len(askerOrder))

	for _, askerID := range askerOrder {
		question, ok := draw(questions, func(authorID string) bool {
			return authorID != askerID
		})
		if !ok {
			continue
		}

		// Allocate one answer per audience member before committing the
		// turn, so a partially-servable turn never consumes content
		turnAnswers := make(map[string]AuthoredText, len(rosterIDs)-1)
		drawn := make(map[string][]string)
		servable := true

		for _, presenterID := range rosterIDs {
			if presenterID == askerID {
				continue
			}
			answer, ok := draw(answers, func(authorID string) bool {
				return authorID != askerID && authorID != presenterID
			})
			if !ok {
				servable = false
				break
			}
			turnAnswers[presenterID] = answer
			drawn[answer.AuthorID] = append(drawn[answer.AuthorID], answer.Text)
		}

		if !servable {
			// Roll back everything drawn for this turn, the question
			// included, so later askers see the full remaining supply
			questions[question.AuthorID] = append(questions[question.AuthorID], question.Text)
			for authorID, texts := range drawn {
				answers[authorID] = append(answers[authorID], texts...)
			}
			continue
		}

		turns = append(turns, &Turn{
			AskerID:  askerID,
			Question: question,
			Answers:  turnAnswers,
		})
	}

	return turns
}

// draw pops one entry from the eligible author with the largest remaining
// supply. Draining the fullest pool first keeps later turns servable.
func draw(supply map[string][]string, eligible func(authorID string) bool) (AuthoredText, bool) {
	best := ""
	for authorID, texts := range supply {
		if len(texts) == 0 || !eligible(authorID) {
			continue
		}
		if best == "" || len(texts) > len(supply[best]) || (len(texts) == len(supply[best]) && authorID < best) {
			best = authorID
		}
	}
	if best == "" {
		return AuthoredText{}, false
	}

	texts := supply[best]
	text := texts[len(texts)-1]
	supply[best] = texts[:len(texts)-1]

	return AuthoredText{AuthorID: best, Text: text}, true
}

func shuffled(in []string, rng *rand.Rand) []string {
	out := make([]string, len(in))
	copy(out, in)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
