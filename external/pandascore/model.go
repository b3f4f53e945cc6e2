package pandascore

import (
	"strconv"
	"time"

	"github.com/clutchpoint/arena/internal/domain/match"
)

type providerMatch struct {
	ID       int64  `json:"id"`
	Status   string `json:"status"`
	BeginAt  string `json:"begin_at"`
	NumGames int    `json:"number_of_games"`

	Opponents []struct {
		Opponent struct {
			ID       int64  `json:"id"`
			Name     string `json:"name"`
			ImageURL string `json:"image_url"`
		} `json:"opponent"`
	} `json:"opponents"`

	Results []struct {
		TeamID int64 `json:"team_id"`
		Score  int   `json:"score"`
	} `json:"results"`

	Videogame struct {
		Name string `json:"name"`
	} `json:"videogame"`

	Tournament struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"tournament"`

	League struct {
		Name string `json:"name"`
	} `json:"league"`

	Serie struct {
		FullName string `json:"full_name"`
	} `json:"serie"`

	StreamsList []struct {
		RawURL   string `json:"raw_url"`
		Language string `json:"language"`
		Main     bool   `json:"main"`
	} `json:"streams_list"`
}

// mapProviderMatch converts one provider record into the domain shape.
// Matches without two opponents or a start time are dropped; the arena
// cannot price them.
func mapProviderMatch(item providerMatch) (match.Match, bool) {
	if item.ID <= 0 || len(item.Opponents) < 2 {
		return match.Match{}, false
	}

	startTime, err := time.Parse(time.RFC3339, item.BeginAt)
	if err != nil {
		return match.Match{}, false
	}

	home := item.Opponents[0].Opponent
	away := item.Opponents[1].Opponent

	mapped := match.Match{
		ID:       "ps-" + strconv.FormatInt(item.ID, 10),
		HomeTeam: match.Team{ID: strconv.FormatInt(home.ID, 10), Name: home.Name, LogoURL: home.ImageURL},
		AwayTeam: match.Team{ID: strconv.FormatInt(away.ID, 10), Name: away.Name, LogoURL: away.ImageURL},
		Tournament: match.Tournament{
			ID:   strconv.FormatInt(item.Tournament.ID, 10),
			Name: tournamentName(item),
			Game: item.Videogame.Name,
		},
		StartTime: startTime.UTC(),
		Status:    mapStatus(item.Status),
	}

	if score, ok := mapScore(item, home.ID, away.ID); ok {
		mapped.Score = &score
	}

	for _, stream := range item.StreamsList {
		if stream.RawURL == "" {
			continue
		}
		mapped.Streams = append(mapped.Streams, match.Stream{
			Platform: stream.Language,
			URL:      stream.RawURL,
		})
	}

	return mapped, true
}

// tournamentName joins league, serie and bracket names into the single
// display name the odds engine inspects for stage keywords.
func tournamentName(item providerMatch) string {
	name := item.League.Name
	if item.Serie.FullName != "" {
		if name != "" {
			name += " "
		}
		name += item.Serie.FullName
	}
	if item.Tournament.Name != "" {
		if name != "" {
			name += " "
		}
		name += item.Tournament.Name
	}
	return name
}

func mapStatus(status string) match.Status {
	switch status {
	case "running":
		return match.StatusLive
	case "finished":
		return match.StatusFinished
	default:
		return match.StatusScheduled
	}
}

func mapScore(item providerMatch, homeID, awayID int64) (match.Score, bool) {
	if len(item.Results) == 0 {
		return match.Score{}, false
	}

	var score match.Score
	matched := false
	for _, result := range item.Results {
		switch result.TeamID {
		case homeID:
			score.Home = result.Score
			matched = true
		case awayID:
			score.Away = result.Score
			matched = true
		}
	}
	return score, matched
}
