package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Tracklist/internal/core/mocks"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGuard_PassesThrough(t *testing.T) {
	g := NewGuard(NewMemory(), time.Second, nil)
	ctx := context.Background()

	out, err := g.CastVote(ctx, "AB12", "t1", "u1")
	require.NoError(t, err)
	assert.True(t, out.Recorded)

	top, err := g.TopForRoom(ctx, "AB12", 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.LeaderboardEntry{{TrackID: "t1", Count: 1}}, top)
}

func TestGuard_WrapsStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	l := mocks.NewMockLedger(ctrl)
	boom := errors.New("connection refused")

	l.EXPECT().VotesForRoom(gomock.Any(), domain.RoomCode("AB12")).Return(nil, boom)

	g := NewGuard(l, time.Second, metrics.NoOp{})
	_, err := g.VotesForRoom(context.Background(), "AB12")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, boom)

	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "votes_for_room", se.Op)
}

func TestGuard_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	l := mocks.NewMockLedger(ctrl)

	l.EXPECT().
		CastVote(gomock.Any(), domain.RoomCode("AB12"), domain.TrackID("t1"), domain.VoterID("u1")).
		DoAndReturn(func(ctx context.Context, _ domain.RoomCode, _ domain.TrackID, _ domain.VoterID) (domain.VoteOutcome, error) {
			<-ctx.Done()
			return domain.VoteOutcome{}, ctx.Err()
		})

	g := NewGuard(l, 20*time.Millisecond, nil)
	start := time.Now()
	_, err := g.CastVote(context.Background(), "AB12", "t1", "u1")
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
