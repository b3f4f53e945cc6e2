package bet

import "time"

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusWon      Status = "WON"
	StatusLost     Status = "LOST"
	StatusRefunded Status = "REFUNDED"
)

// Bet is a wager locked at placement time. The odds and potential
// winnings stored here are the quoted price the user accepted; later
// quote changes never touch an existing bet.
type Bet struct {
	ID                string
	UserID            string
	MatchID           string
	Amount            int64
	PredictedWinner   string
	PredictedScore    string
	Odds              float64
	PotentialWinnings int64
	Status            Status
	CreatedAt         time.Time
	SettledAt         *time.Time
}

// Settled reports whether the bet has reached a terminal state.
func (b Bet) Settled() bool {
	return b.Status != StatusPending
}

// ScoreBet reports whether the wager rides on an exact score line rather
// than on the series winner.
func (b Bet) ScoreBet() bool {
	return b.PredictedScore != ""
}

// Wins resolves the win condition against the final result. Exact-score
// bets ignore winner-only correctness.
func (b Bet) Wins(actualWinner, actualScore string) bool {
	if b.ScoreBet() {
		return b.PredictedScore == actualScore
	}
	return b.PredictedWinner == actualWinner
}
