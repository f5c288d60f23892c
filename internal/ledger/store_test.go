package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/leaderboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func newMemoryStore(t *testing.T) Store {
	t.Helper()
	return NewMemory()
}

func TestMemoryStore(t *testing.T) { runStoreSuite(t, newMemoryStore) }

func TestSQLiteStore(t *testing.T) { runStoreSuite(t, newSQLiteStore) }

// runStoreSuite checks the behaviour every Store must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("first vote records", func(t *testing.T) {
		s := newStore(t)
		out, err := s.CastVote(ctx, "AB12", "t1", "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.VoteOutcome{TrackID: "t1", Count: 1, Recorded: true}, out)

		votes, err := s.VotesForRoom(ctx, "AB12")
		require.NoError(t, err)
		assert.Equal(t, map[domain.TrackID]int{"t1": 1}, votes)

		voted, err := s.VotedTracks(ctx, "AB12", "u1")
		require.NoError(t, err)
		assert.Equal(t, []domain.TrackID{"t1"}, voted)
	})

	t.Run("repeat vote is a no-op", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CastVote(ctx, "AB12", "t1", "u1")
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			out, err := s.CastVote(ctx, "AB12", "t1", "u1")
			require.NoError(t, err)
			assert.Equal(t, domain.VoteOutcome{TrackID: "t1", Count: 1}, out)
		}
		votes, err := s.VotesForRoom(ctx, "AB12")
		require.NoError(t, err)
		assert.Equal(t, 1, votes["t1"])
	})

	t.Run("distinct voters increment", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CastVote(ctx, "AB12", "t1", "u1")
		require.NoError(t, err)
		out, err := s.CastVote(ctx, "AB12", "t1", "u2")
		require.NoError(t, err)
		assert.Equal(t, domain.VoteOutcome{TrackID: "t1", Count: 2, Recorded: true}, out)
		_, err = s.CastVote(ctx, "AB12", "t2", "u1")
		require.NoError(t, err)

		top, err := s.TopForRoom(ctx, "AB12", 10)
		require.NoError(t, err)
		assert.Equal(t, []domain.LeaderboardEntry{{TrackID: "t1", Count: 2}, {TrackID: "t2", Count: 1}}, top)

		voted, err := s.VotedTracks(ctx, "AB12", "u1")
		require.NoError(t, err)
		assert.Equal(t, []domain.TrackID{"t1", "t2"}, voted)
	})

	t.Run("rooms are isolated", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CastVote(ctx, "AB12", "t1", "u1")
		require.NoError(t, err)
		out, err := s.CastVote(ctx, "CD34", "t1", "u1")
		require.NoError(t, err)
		assert.True(t, out.Recorded)
		assert.Equal(t, 1, out.Count)

		votes, err := s.VotesForRoom(ctx, "ZZ99")
		require.NoError(t, err)
		assert.Empty(t, votes)
		voted, err := s.VotedTracks(ctx, "ZZ99", "u1")
		require.NoError(t, err)
		assert.Empty(t, voted)
	})

	t.Run("top matches projector", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 14; i++ {
			track := domain.TrackID(fmt.Sprintf("track-%02d", i))
			for v := 0; v <= i%4; v++ {
				_, err := s.CastVote(ctx, "AB12", track, domain.VoterID(fmt.Sprintf("u%d", v)))
				require.NoError(t, err)
			}
		}
		votes, err := s.VotesForRoom(ctx, "AB12")
		require.NoError(t, err)

		top, err := s.TopForRoom(ctx, "AB12", 0)
		require.NoError(t, err)
		assert.Len(t, top, leaderboard.DefaultLimit)
		assert.Equal(t, leaderboard.Project(votes, 0), top)

		again, err := s.TopForRoom(ctx, "AB12", 0)
		require.NoError(t, err)
		assert.Equal(t, top, again)
	})

	t.Run("concurrent distinct voters", func(t *testing.T) {
		s := newStore(t)
		const n = 40
		var g errgroup.Group
		for i := 0; i < n; i++ {
			voter := domain.VoterID(fmt.Sprintf("u%d", i))
			g.Go(func() error {
				_, err := s.CastVote(ctx, "AB12", "t1", voter)
				return err
			})
		}
		require.NoError(t, g.Wait())

		votes, err := s.VotesForRoom(ctx, "AB12")
		require.NoError(t, err)
		assert.Equal(t, n, votes["t1"])
	})

	t.Run("concurrent repeats of one voter", func(t *testing.T) {
		s := newStore(t)
		const n = 20
		recorded := make(chan bool, n)
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				out, err := s.CastVote(ctx, "AB12", "t1", "u1")
				recorded <- out.Recorded
				return err
			})
		}
		require.NoError(t, g.Wait())
		close(recorded)

		hits := 0
		for r := range recorded {
			if r {
				hits++
			}
		}
		assert.Equal(t, 1, hits)
		votes, err := s.VotesForRoom(ctx, "AB12")
		require.NoError(t, err)
		assert.Equal(t, 1, votes["t1"])
	})

	t.Run("room directory", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateRoom(ctx, domain.Room{Code: "XY9", HostID: "host"}))
		assert.ErrorIs(t, s.CreateRoom(ctx, domain.Room{Code: "XY9", HostID: "other"}), domain.ErrRoomExists)

		r, err := s.GetRoom(ctx, "XY9")
		require.NoError(t, err)
		assert.Equal(t, domain.RoomCode("XY9"), r.Code)
		assert.Equal(t, domain.VoterID("host"), r.HostID)
		assert.False(t, r.CreatedAt.IsZero())

		_, err = s.GetRoom(ctx, "NOPE")
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.IsType(t, &SQLite{}, s)

	_, err = Open(ctx, "mongo", "")
	assert.Error(t, err)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory()
	_, err := m.CastVote(ctx, "AB12", "t1", "u1")
	require.ErrorIs(t, err, context.Canceled)

	votes, err := m.VotesForRoom(context.Background(), "AB12")
	require.NoError(t, err)
	assert.Empty(t, votes)
}
