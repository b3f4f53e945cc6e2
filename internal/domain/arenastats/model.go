package arenastats

import "time"

// Stats is one user's aggregate betting record. It is created lazily on
// the first settled bet and recomputed in place on every settlement.
type Stats struct {
	UserID         string
	Username       string
	TotalBets      int
	WonBets        int
	Accuracy       float64
	TotalPointsWon int64
	Badges         []string
	UpdatedAt      time.Time
}

func (s Stats) HasBadge(name string) bool {
	for _, badge := range s.Badges {
		if badge == name {
			return true
		}
	}
	return false
}

func accuracy(wonBets, totalBets int) float64 {
	if totalBets == 0 {
		return 0
	}
	return float64(wonBets) / float64(totalBets)
}
