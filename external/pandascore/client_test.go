package pandascore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/platform/logging"
	"github.com/clutchpoint/arena/internal/platform/resilience"
)

const upcomingPayload = `[
  {
    "id": 101,
    "status": "not_started",
    "begin_at": "2026-09-01T18:00:00Z",
    "number_of_games": 3,
    "opponents": [
      {"opponent": {"id": 1, "name": "FURIA", "image_url": "https://cdn/f.png"}},
      {"opponent": {"id": 2, "name": "MIBR", "image_url": "https://cdn/m.png"}}
    ],
    "videogame": {"name": "Counter-Strike 2"},
    "tournament": {"id": 7, "name": "Playoffs"},
    "league": {"name": "IEM"},
    "serie": {"full_name": "Katowice 2026"},
    "streams_list": [{"raw_url": "https://twitch.tv/esl", "language": "en", "main": true}]
  },
  {"id": 0, "status": "not_started", "begin_at": "2026-09-01T18:00:00Z", "opponents": []}
]`

const runningPayload = `[
  {
    "id": 102,
    "status": "running",
    "begin_at": "2026-08-31T12:00:00Z",
    "opponents": [
      {"opponent": {"id": 3, "name": "T1"}},
      {"opponent": {"id": 4, "name": "Gen.G"}}
    ],
    "results": [
      {"team_id": 3, "score": 1},
      {"team_id": 4, "score": 1}
    ],
    "videogame": {"name": "League of Legends"},
    "tournament": {"id": 8, "name": "Group Stage"},
    "league": {"name": "Worlds"}
  }
]`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Token:   "test-token",
		Logger:  logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			ProbeLimit:       1,
		},
	})
	return client, server
}

func TestClient_FetchMatches(t *testing.T) {
	t.Parallel()

	handler := http.NewServeMux()
	handler.HandleFunc("/matches/upcoming", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		_, _ = w.Write([]byte(upcomingPayload))
	})
	handler.HandleFunc("/matches/running", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(runningPayload))
	})
	handler.HandleFunc("/matches/past", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	client, _ := newTestClient(t, handler)
	matches, err := client.FetchMatches(context.Background())
	if err != nil {
		t.Fatalf("FetchMatches error: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches (malformed row dropped), got %d", len(matches))
	}

	live := matches[0]
	if live.ID != "ps-102" || live.Status != match.StatusLive {
		t.Fatalf("unexpected first match: %+v", live)
	}
	if live.Score == nil || live.Score.Home != 1 || live.Score.Away != 1 {
		t.Fatalf("expected mapped score, got %+v", live.Score)
	}

	upcoming := matches[1]
	if upcoming.ID != "ps-101" || upcoming.Status != match.StatusScheduled {
		t.Fatalf("unexpected second match: %+v", upcoming)
	}
	if upcoming.Tournament.Name != "IEM Katowice 2026 Playoffs" {
		t.Fatalf("unexpected tournament name: %q", upcoming.Tournament.Name)
	}
	if upcoming.Tournament.Game != "Counter-Strike 2" {
		t.Fatalf("unexpected game: %q", upcoming.Tournament.Game)
	}
	if len(upcoming.Streams) != 1 || upcoming.Streams[0].URL != "https://twitch.tv/esl" {
		t.Fatalf("unexpected streams: %+v", upcoming.Streams)
	}
}

func TestClient_FetchMatches_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, _ := newTestClient(t, handler)
	client.maxRetries = 3

	if _, err := client.FetchMatches(context.Background()); err == nil {
		t.Fatal("expected error for 401 response")
	}
	// Three parallel windows, one attempt each; 401 is never retried.
	if got := calls.Load(); got > 3 {
		t.Fatalf("non-retryable status was retried: %d calls", got)
	}
}

func TestClient_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client, _ := newTestClient(t, handler)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		var out []providerMatch
		if err := client.doJSON(ctx, "/matches/upcoming", nil, &out); err == nil {
			t.Fatal("expected failure from 502")
		}
	}

	if state := client.breaker.State(); state != resilience.CircuitStateOpen {
		t.Fatalf("expected open circuit, got %s", state)
	}
}
