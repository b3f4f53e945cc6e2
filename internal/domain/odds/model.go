package odds

// BetOdds is a value object quoted from a single match snapshot. It is
// never persisted; every quote is recomputed from the current match state.
type BetOdds struct {
	HomeWin     float64
	AwayWin     float64
	Draw        float64
	ExactScores map[string]float64
}

const (
	// MinPrice and MaxPrice bound every win/draw price to practical
	// payout multipliers.
	MinPrice = 1.2
	MaxPrice = 5.0

	// DrawExcludedPrice is the fixed draw price for games whose format
	// cannot end level.
	DrawExcludedPrice = 15.0

	// FallbackScorePrice is the catch-all price for a predicted score
	// line that is absent from the quoted table.
	FallbackScorePrice = 10.0
)
