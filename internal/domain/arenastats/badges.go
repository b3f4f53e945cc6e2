package arenastats

import "time"

const (
	BadgeFirstWin         = "First Win"
	BadgeGoodPredictor    = "Good Predictor"
	BadgeEliteAnalyst     = "Elite Analyst"
	BadgeFrequent         = "Frequent"
	BadgeVeteran          = "Veteran"
	BadgeConsistentWinner = "Consistent Winner"
	BadgeBettingMaster    = "Betting Master"
)

type badgeRule struct {
	name      string
	qualifies func(s Stats) bool
}

// badgeRules is evaluated in order on every settlement. First Win is
// absent on purpose; it is only seeded when the stats record is created,
// so a user whose first bet lost never earns it later. Known quirk,
// kept to match the shipped behavior.
var badgeRules = []badgeRule{
	{BadgeGoodPredictor, func(s Stats) bool { return s.Accuracy >= 0.6 && s.TotalBets >= 5 }},
	{BadgeEliteAnalyst, func(s Stats) bool { return s.Accuracy >= 0.7 && s.TotalBets >= 10 }},
	{BadgeFrequent, func(s Stats) bool { return s.TotalBets >= 20 }},
	{BadgeVeteran, func(s Stats) bool { return s.TotalBets >= 50 }},
	{BadgeConsistentWinner, func(s Stats) bool { return s.WonBets >= 10 }},
	{BadgeBettingMaster, func(s Stats) bool { return s.WonBets >= 25 }},
}

// NewFromFirstSettlement creates the stats record for a user's very
// first settled bet.
func NewFromFirstSettlement(userID, username string, won bool, pointsWon int64, now time.Time) Stats {
	s := Stats{
		UserID:    userID,
		Username:  username,
		TotalBets: 1,
		UpdatedAt: now,
	}
	if won {
		s.WonBets = 1
		s.TotalPointsWon = pointsWon
		s.Badges = []string{BadgeFirstWin}
	}
	s.Accuracy = accuracy(s.WonBets, s.TotalBets)
	return s
}

// ApplySettlement folds one settled bet into an existing record and
// appends any newly earned badges. Badges are never removed.
func ApplySettlement(s Stats, won bool, pointsWon int64, now time.Time) Stats {
	s.TotalBets++
	if won {
		s.WonBets++
		s.TotalPointsWon += pointsWon
	}
	s.Accuracy = accuracy(s.WonBets, s.TotalBets)
	s.UpdatedAt = now

	for _, rule := range badgeRules {
		if rule.qualifies(s) && !s.HasBadge(rule.name) {
			s.Badges = append(s.Badges, rule.name)
		}
	}
	return s
}
