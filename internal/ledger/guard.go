package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultTimeout = 3 * time.Second

// Guard bounds every ledger call with a timeout and converts failures
// into *domain.StorageError. A slow store fails the one call, never the
// handler that made it.
type Guard struct {
	next    core.Ledger
	timeout time.Duration
	metrics metrics.Metrics
	tracer  trace.Tracer
}

func NewGuard(next core.Ledger, timeout time.Duration, m metrics.Metrics) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if m == nil {
		m = metrics.NoOp{}
	}
	return &Guard{
		next:    next,
		timeout: timeout,
		metrics: m,
		tracer:  otel.Tracer("github.com/dkeye/Tracklist/internal/ledger"),
	}
}

func (g *Guard) CastVote(ctx context.Context, room domain.RoomCode, track domain.TrackID, voter domain.VoterID) (domain.VoteOutcome, error) {
	var out domain.VoteOutcome
	err := g.do(ctx, "cast_vote", room, func(ctx context.Context) (err error) {
		out, err = g.next.CastVote(ctx, room, track, voter)
		return err
	})
	return out, err
}

func (g *Guard) VotesForRoom(ctx context.Context, room domain.RoomCode) (map[domain.TrackID]int, error) {
	var out map[domain.TrackID]int
	err := g.do(ctx, "votes_for_room", room, func(ctx context.Context) (err error) {
		out, err = g.next.VotesForRoom(ctx, room)
		return err
	})
	return out, err
}

func (g *Guard) VotedTracks(ctx context.Context, room domain.RoomCode, voter domain.VoterID) ([]domain.TrackID, error) {
	var out []domain.TrackID
	err := g.do(ctx, "voted_tracks", room, func(ctx context.Context) (err error) {
		out, err = g.next.VotedTracks(ctx, room, voter)
		return err
	})
	return out, err
}

func (g *Guard) TopForRoom(ctx context.Context, room domain.RoomCode, limit int) ([]domain.LeaderboardEntry, error) {
	var out []domain.LeaderboardEntry
	err := g.do(ctx, "top_for_room", room, func(ctx context.Context) (err error) {
		out, err = g.next.TopForRoom(ctx, room, limit)
		return err
	})
	return out, err
}

func (g *Guard) do(ctx context.Context, op string, room domain.RoomCode, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	ctx, span := g.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attribute.String("room", string(room))))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	g.metrics.LedgerCall(op, time.Since(start), err)
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}
