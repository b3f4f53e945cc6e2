package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/infrastructure/repository/memory"
	"github.com/clutchpoint/arena/internal/platform/logging"
)

type feedMock struct {
	mock.Mock
}

func (m *feedMock) FetchMatches(ctx context.Context) ([]match.Match, error) {
	args := m.Called(ctx)
	return args.Get(0).([]match.Match), args.Error(1)
}

func TestMatchService_SyncFromFeed_FetchesExactlyOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewMatchRepository(nil)

	feed := &feedMock{}
	feed.
		On("FetchMatches", mock.MatchedBy(func(v context.Context) bool { return v != nil })).
		Return([]match.Match{
			{ID: "m-1", HomeTeam: match.Team{Name: "FURIA"}, AwayTeam: match.Team{Name: "MIBR"}, Status: match.StatusScheduled, StartTime: fixedNow.Add(2 * time.Hour)},
		}, nil).
		Once()

	svc := NewMatchService(repo, feed, logging.NewNop())
	synced, err := svc.SyncFromFeed(ctx)
	if err != nil {
		t.Fatalf("sync from feed: %v", err)
	}
	if synced != 1 {
		t.Fatalf("expected 1 synced, got %d", synced)
	}

	feed.AssertExpectations(t)
}
