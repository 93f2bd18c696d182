package domain

// MinQuestions is the minimum number of questions each player must submit.
// It also scales the answer minimum: every other player's question needs a
// candidate answer from every non-asking participant.
const MinQuestions = 3

// Contribution holds one player's submitted questions and answers.
// Authorship is kept so the turn builder can enforce that nobody is ever
// paired with their own content.
type Contribution struct {
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

// Pool is the per-room collection of player contributions, keyed by the
// submitting player's ID.
type Pool struct {
	contributions map[string]Contribution
}

// NewPool creates an empty question pool
func NewPool() *Pool {
	return &Pool{
		contributions: make(map[string]Contribution),
	}
}

// MinAnswers returns the answer minimum for the given roster size
func MinAnswers(playerCount int) int {
	return MinQuestions * (playerCount - 1)
}

// Meets reports whether a submission of the given sizes satisfies the
// minimums for the given roster size
func Meets(questionCount, answerCount, playerCount int) bool {
	return questionCount >= MinQuestions && answerCount >= MinAnswers(playerCount)
}

// Put stores a player's contribution, replacing any prior submission from
// the same player. Resubmission is last write wins.
func (p *Pool) Put(playerID string, questions, answers []string) {
	qs := make([]string, len(questions))
	copy(qs, questions)
	as := make([]string, len(answers))
	copy(as, answers)

	p.contributions[playerID] = Contribution{
		Questions: qs,
		Answers:   as,
	}
}

// Get returns a player's contribution
func (p *Pool) Get(playerID string) (Contribution, bool) {
	c, ok := p.contributions[playerID]
	return c, ok
}

// Has reports whether the player has a stored contribution
func (p *Pool) Has(playerID string) bool {
	_, ok := p.contributions[playerID]
	return ok
}

// Remove drops a player's contribution, e.g. when they disconnect during
// preparation
func (p *Pool) Remove(playerID string) {
	delete(p.contributions, playerID)
}

// Size returns the number of players with a stored contribution
func (p *Pool) Size() int {
	return len(p.contributions)
}

// Covers reports whether every player in the roster has a contribution
// meeting the minimums for the roster's size. This is the sole trigger for
// the Preparation to Playing transition.
func (p *Pool) Covers(playerIDs []string) bool {
	for _, id := range playerIDs {
		c, ok := p.contributions[id]
		if !ok {
			return false
		}
		if !Meets(len(c.Questions), len(c.Answers), len(playerIDs)) {
			return false
		}
	}
	return len(playerIDs) > 0
}

// Reset clears all contributions
func (p *Pool) Reset() {
	p.contributions = make(map[string]Contribution)
}
