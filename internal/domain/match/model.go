package match

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusFinished  Status = "FINISHED"
)

// Team is one side of a match as reported by the match feed.
type Team struct {
	ID      string
	Name    string
	LogoURL string
}

type Tournament struct {
	ID   string
	Name string
	Game string
}

type Score struct {
	Home int
	Away int
}

// Line renders the score the way bet slips key exact-score prices ("2-1").
func (s Score) Line() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

type Stream struct {
	Platform string
	URL      string
}

// Match is a snapshot of one fixture. The arena only reads matches; the
// feed sync owns their lifecycle.
type Match struct {
	ID         string
	HomeTeam   Team
	AwayTeam   Team
	Tournament Tournament
	StartTime  time.Time
	Status     Status
	Score      *Score
	Streams    []Stream
}

// WinnerName returns the name of the winning team once a score is known.
// Empty string means no winner can be derived (missing score or a tie).
func (m Match) WinnerName() string {
	if m.Score == nil {
		return ""
	}
	switch {
	case m.Score.Home > m.Score.Away:
		return m.HomeTeam.Name
	case m.Score.Away > m.Score.Home:
		return m.AwayTeam.Name
	default:
		return ""
	}
}
