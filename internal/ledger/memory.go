package ledger

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/leaderboard"
)

type voteRecord struct {
	count  int
	voters map[domain.VoterID]struct{}
}

// Memory is a process-local Store. Votes are lost on restart; use it for
// development and tests.
type Memory struct {
	mu    sync.RWMutex
	votes map[domain.RoomCode]map[domain.TrackID]*voteRecord
	rooms map[domain.RoomCode]domain.Room
}

func NewMemory() *Memory {
	return &Memory{
		votes: make(map[domain.RoomCode]map[domain.TrackID]*voteRecord),
		rooms: make(map[domain.RoomCode]domain.Room),
	}
}

func (m *Memory) Migrate(context.Context) error { return nil }
func (m *Memory) Close() error                  { return nil }

func (m *Memory) CastVote(ctx context.Context, room domain.RoomCode, track domain.TrackID, voter domain.VoterID) (domain.VoteOutcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.VoteOutcome{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tracks, ok := m.votes[room]
	if !ok {
		tracks = make(map[domain.TrackID]*voteRecord)
		m.votes[room] = tracks
	}
	rec, ok := tracks[track]
	if !ok {
		rec = &voteRecord{voters: make(map[domain.VoterID]struct{})}
		tracks[track] = rec
	}
	if _, dup := rec.voters[voter]; dup {
		return domain.VoteOutcome{TrackID: track, Count: rec.count}, nil
	}
	rec.voters[voter] = struct{}{}
	rec.count = len(rec.voters)
	return domain.VoteOutcome{TrackID: track, Count: rec.count, Recorded: true}, nil
}

func (m *Memory) VotesForRoom(ctx context.Context, room domain.RoomCode) (map[domain.TrackID]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[domain.TrackID]int, len(m.votes[room]))
	for track, rec := range m.votes[room] {
		out[track] = rec.count
	}
	return out, nil
}

func (m *Memory) VotedTracks(ctx context.Context, room domain.RoomCode, voter domain.VoterID) ([]domain.TrackID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.TrackID{}
	for track, rec := range m.votes[room] {
		if _, ok := rec.voters[voter]; ok {
			out = append(out, track)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *Memory) TopForRoom(ctx context.Context, room domain.RoomCode, limit int) ([]domain.LeaderboardEntry, error) {
	counts, err := m.VotesForRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	return leaderboard.Project(counts, limit), nil
}

func (m *Memory) CreateRoom(ctx context.Context, room domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.Code]; ok {
		return domain.ErrRoomExists
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	m.rooms[room.Code] = room
	return nil
}

func (m *Memory) GetRoom(ctx context.Context, code domain.RoomCode) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return r, nil
}
