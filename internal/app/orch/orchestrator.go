// Package orch coordinates room sessions: it keeps the connection
// registry, the room multicast groups, membership and the vote ledger in
// step and emits the room events.
package orch

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/Tracklist/internal/app"
	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/leaderboard"
	"github.com/dkeye/Tracklist/internal/metrics"
	"github.com/rs/zerolog/log"
)

var ErrNoSession = errors.New("no session for connection")

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Members  core.Membership
	Ledger   core.Ledger
	Policy   app.Policy
	Metrics  metrics.Metrics
	// LeaderboardLimit caps leaderboardUpdate; <= 0 uses leaderboard.DefaultLimit.
	LeaderboardLimit int

	// voteLocks holds one *sync.Mutex per room. A vote and the leaderboard
	// it triggers are emitted under it, so two votes in one room never
	// interleave their broadcasts.
	voteLocks sync.Map
	// memberLocks holds one *sync.Mutex per room guarding group attach,
	// detach and the membership change that goes with it.
	memberLocks sync.Map
}

func lockFor(locks *sync.Map, room domain.RoomCode) *sync.Mutex {
	if l, ok := locks.Load(room); ok {
		return l.(*sync.Mutex)
	}
	l, _ := locks.LoadOrStore(room, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (o *Orchestrator) roomLock(room domain.RoomCode) *sync.Mutex {
	return lockFor(&o.voteLocks, room)
}

func (o *Orchestrator) memberLock(room domain.RoomCode) *sync.Mutex {
	return lockFor(&o.memberLocks, room)
}

func (o *Orchestrator) metrics() metrics.Metrics {
	if o.Metrics == nil {
		return metrics.NoOp{}
	}
	return o.Metrics
}

func (o *Orchestrator) limit() int {
	if o.LeaderboardLimit <= 0 {
		return leaderboard.DefaultLimit
	}
	return o.LeaderboardLimit
}

// Leaderboard reads the current top list for a room.
func (o *Orchestrator) Leaderboard(ctx context.Context, room domain.RoomCode, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = o.limit()
	}
	return o.Ledger.TopForRoom(ctx, room, limit)
}

// publishLeaderboardLocked must run under roomLock(room).
func (o *Orchestrator) publishLeaderboardLocked(ctx context.Context, room domain.RoomCode) error {
	top, err := o.Ledger.TopForRoom(ctx, room, o.limit())
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(room)).Msg("leaderboard read failed")
		return err
	}
	if group, ok := o.Rooms.Get(room); ok {
		o.broadcast(group, LeaderboardEvent{Type: EventLeaderboardUpdate, RoomCode: room, Entries: top})
	}
	return nil
}

func (o *Orchestrator) send(sess core.MemberSession, v any) {
	frame, err := encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode event")
		return
	}
	if err := sess.Signal().TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("direct send failed")
	}
}

// broadcast delivers to the whole room. Recipients that could not take
// the frame are handed to the Policy; the rest are unaffected.
func (o *Orchestrator) broadcast(group core.RoomService, v any) {
	frame, err := encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode event")
		return
	}
	res := group.Broadcast(frame)
	if len(res.Dropped) == 0 {
		return
	}
	o.metrics().BroadcastDropped(len(res.Dropped))
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(group, slow) {
		case app.KickMember:
			if sid, ok := o.Registry.SIDOf(slow); ok {
				log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("room", string(group.Code())).Msg("kicking slow session")
				o.KickBySID(sid)
			}
		case app.DropFrame, app.NoAction:
		}
	}
}
