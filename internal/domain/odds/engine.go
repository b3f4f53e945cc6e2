package odds

import (
	"math"
	"strings"

	"github.com/clutchpoint/arena/internal/domain/match"
)

type gameFamily int

const (
	gameCS2 gameFamily = iota
	gameValorant
	gameLoL
	gameOther
)

// Engine quotes prices for a single match snapshot. Quoting is pure
// computation; every lookup and division has a defined fallback so the
// engine never returns an error.
type Engine struct {
	strengths StrengthResolver
}

func NewEngine(strengths StrengthResolver) *Engine {
	return &Engine{strengths: strengths}
}

// Calculate quotes win, draw and exact-score prices for the given match.
func (e *Engine) Calculate(m match.Match) BetOdds {
	home := e.strengths.Strength(m.HomeTeam.Name)
	away := e.strengths.Strength(m.AwayTeam.Name)
	diff := home - away

	homeOdds := 2.5 - clamp(diff*0.5, -0.7, 0.7)
	awayOdds := 2.5 + clamp(diff*0.5, -0.7, 0.7)

	// Major takes precedence when a tournament name matches both stages.
	stage := stageModifier(m.Tournament.Name)
	homeOdds *= stage
	awayOdds *= stage

	family := familyOf(m.Tournament.Game)
	game := gameModifier(family)
	homeOdds *= game
	awayOdds *= game

	return BetOdds{
		HomeWin:     clamp(homeOdds, MinPrice, MaxPrice),
		AwayWin:     clamp(awayOdds, MinPrice, MaxPrice),
		Draw:        drawOdds(family, diff),
		ExactScores: exactScoreOdds(family, isBestOfFive(m.Tournament.Name), diff),
	}
}

func stageModifier(tournamentName string) float64 {
	name := strings.ToLower(tournamentName)
	switch {
	case strings.Contains(name, "major"):
		return 0.9
	case strings.Contains(name, "final"):
		return 0.85
	default:
		return 1.0
	}
}

func gameModifier(family gameFamily) float64 {
	switch family {
	case gameValorant:
		return 0.95
	case gameLoL:
		return 0.9
	default:
		return 1.0
	}
}

// drawOdds prices the draw market. Valorant and LoL series cannot end
// level, so their draw price is pinned high enough to exclude the market.
func drawOdds(family gameFamily, diff float64) float64 {
	if family == gameValorant || family == gameLoL {
		return DrawExcludedPrice
	}
	drawFactor := 1.0 - clamp(math.Abs(diff), 0.0, 0.5)
	return 3.0 + drawFactor*2.0
}

// isBestOfFive infers the series format from the tournament name. Finals
// and playoff brackets run Bo5; everything else is quoted as Bo3.
func isBestOfFive(tournamentName string) bool {
	name := strings.ToLower(tournamentName)
	return strings.Contains(name, "final") || strings.Contains(name, "playoff")
}

type scoreTable struct {
	base map[string]float64
	// coefficient scaling the strength difference into a price shift
	coefficient float64
	min, max    float64
}

// exactScoreOdds builds the per-line price table for the match format.
// Lines won by the home side get cheaper as the home team's strength
// advantage grows; away lines move the opposite way.
func exactScoreOdds(family gameFamily, bestOfFive bool, diff float64) map[string]float64 {
	table := scoreTableFor(family, bestOfFive)

	prices := make(map[string]float64, len(table.base))
	for line, base := range table.base {
		shift := diff * table.coefficient
		if awayWinsLine(line) {
			shift = -shift
		}
		prices[line] = clamp(base-shift, table.min, table.max)
	}
	return prices
}

func awayWinsLine(line string) bool {
	h, a, ok := strings.Cut(line, "-")
	return ok && a > h
}

func scoreTableFor(family gameFamily, bestOfFive bool) scoreTable {
	switch family {
	case gameCS2:
		if bestOfFive {
			return scoreTable{
				base: map[string]float64{
					"3-0": 5.5, "3-1": 4.6, "3-2": 4.8,
					"2-3": 5.0, "1-3": 4.9, "0-3": 6.0,
				},
				coefficient: 1.5, min: 1.8, max: 9.0,
			}
		}
		return scoreTable{
			base: map[string]float64{
				"2-0": 2.6, "2-1": 3.4, "1-2": 3.6, "0-2": 2.9,
			},
			coefficient: 1.5, min: 1.8, max: 9.0,
		}
	case gameValorant:
		if bestOfFive {
			return scoreTable{
				base: map[string]float64{
					"3-0": 5.8, "3-1": 4.7, "3-2": 4.9,
					"2-3": 5.1, "1-3": 5.0, "0-3": 6.2,
				},
				coefficient: 1.8, min: 1.9, max: 9.5,
			}
		}
		return scoreTable{
			base: map[string]float64{
				"2-0": 2.7, "2-1": 3.3, "1-2": 3.5, "0-2": 3.0,
			},
			coefficient: 1.8, min: 1.9, max: 9.5,
		}
	case gameLoL:
		if bestOfFive {
			return scoreTable{
				base: map[string]float64{
					"3-0": 5.0, "3-1": 4.4, "3-2": 4.7,
					"2-3": 4.9, "1-3": 4.6, "0-3": 5.4,
				},
				coefficient: 1.2, min: 2.0, max: 10.0,
			}
		}
		return scoreTable{
			base: map[string]float64{
				"2-0": 2.5, "2-1": 3.6, "1-2": 3.8, "0-2": 2.8,
			},
			coefficient: 1.2, min: 2.0, max: 10.0,
		}
	default:
		// Unlisted games get a flat Bo3 table regardless of format.
		return scoreTable{
			base: map[string]float64{
				"2-0": 3.0, "2-1": 3.5, "1-2": 3.5, "0-2": 3.0,
			},
			coefficient: 0, min: 1.8, max: 10.0,
		}
	}
}

func familyOf(game string) gameFamily {
	name := strings.ToLower(game)
	switch {
	case strings.Contains(name, "cs2"), strings.Contains(name, "csgo"), strings.Contains(name, "counter"):
		return gameCS2
	case strings.Contains(name, "valorant"):
		return gameValorant
	case strings.Contains(name, "league of legends"), name == "lol":
		return gameLoL
	default:
		return gameOther
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
