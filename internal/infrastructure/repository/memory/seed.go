package memory

import (
	"time"

	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/domain/user"
)

const (
	TournamentIDKatowice  = "iem-katowice-2026"
	TournamentIDChampions = "vct-champions-2026"
	TournamentIDWorlds    = "lol-worlds-2026"
)

// SeedMatches is the development fixture set used when no database is
// configured. Start times are relative so seeded matches stay bettable.
func SeedMatches(now time.Time) []match.Match {
	return []match.Match{
		{
			ID:       "cs2-furia-mibr",
			HomeTeam: match.Team{ID: "team-furia", Name: "FURIA"},
			AwayTeam: match.Team{ID: "team-mibr", Name: "MIBR"},
			Tournament: match.Tournament{
				ID:   TournamentIDKatowice,
				Name: "IEM Katowice",
				Game: "CS2",
			},
			StartTime: now.Add(2 * time.Hour),
			Status:    match.StatusScheduled,
			Streams:   []match.Stream{{Platform: "twitch", URL: "https://twitch.tv/esl_csgo"}},
		},
		{
			ID:       "cs2-navi-vitality",
			HomeTeam: match.Team{ID: "team-navi", Name: "Natus Vincere"},
			AwayTeam: match.Team{ID: "team-vitality", Name: "Team Vitality"},
			Tournament: match.Tournament{
				ID:   TournamentIDKatowice,
				Name: "IEM Katowice Grand Final",
				Game: "CS2",
			},
			StartTime: now.Add(26 * time.Hour),
			Status:    match.StatusScheduled,
		},
		{
			ID:       "val-sentinels-prx",
			HomeTeam: match.Team{ID: "team-sen", Name: "Sentinels"},
			AwayTeam: match.Team{ID: "team-prx", Name: "Paper Rex"},
			Tournament: match.Tournament{
				ID:   TournamentIDChampions,
				Name: "VCT Champions Playoff",
				Game: "Valorant",
			},
			StartTime: now.Add(5 * time.Hour),
			Status:    match.StatusScheduled,
		},
		{
			ID:       "lol-t1-geng",
			HomeTeam: match.Team{ID: "team-t1", Name: "T1"},
			AwayTeam: match.Team{ID: "team-geng", Name: "Gen.G"},
			Tournament: match.Tournament{
				ID:   TournamentIDWorlds,
				Name: "Worlds Group Stage",
				Game: "League of Legends",
			},
			StartTime: now.Add(-1 * time.Hour),
			Status:    match.StatusLive,
		},
		{
			ID:       "cs2-heroic-astralis",
			HomeTeam: match.Team{ID: "team-heroic", Name: "Heroic"},
			AwayTeam: match.Team{ID: "team-astralis", Name: "Astralis"},
			Tournament: match.Tournament{
				ID:   TournamentIDKatowice,
				Name: "IEM Katowice",
				Game: "CS2",
			},
			StartTime: now.Add(-6 * time.Hour),
			Status:    match.StatusFinished,
			Score:     &match.Score{Home: 2, Away: 1},
		},
	}
}

func SeedUsers() []user.User {
	return []user.User{
		{ID: "user-ana", Username: "ana", Points: 1000},
		{ID: "user-bardo", Username: "bardo", Points: 500},
		{ID: "user-cal", Username: "cal", Points: 250},
	}
}
