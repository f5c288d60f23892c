package orch

import (
	"context"

	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Vote casts voter's vote for track in room. A duplicate vote emits
// nothing. A recorded vote broadcasts trackVoted and then the refreshed
// leaderboard, both before the next vote of the room is handled.
//
// The ledger write is detached from ctx cancellation: a voter who drops
// mid-vote still has the vote recorded and announced to the room.
func (o *Orchestrator) Vote(ctx context.Context, sid core.SessionID, room domain.RoomCode, track domain.TrackID, voter domain.VoterID) error {
	if err := room.Validate(); err != nil {
		return domain.Invalid(err)
	}
	if err := track.Validate(); err != nil {
		return domain.Invalid(err)
	}
	if err := voter.Validate(); err != nil {
		return domain.Invalid(err)
	}
	cur, curVoter, ok := o.Registry.RoomOf(sid)
	if !ok || cur != room || curVoter != voter {
		return domain.ErrNotJoined
	}

	ctx = context.WithoutCancel(ctx)
	lock := o.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	out, err := o.Ledger.CastVote(ctx, room, track, voter)
	if err != nil {
		o.metrics().VoteCast(metrics.OutcomeFailed)
		log.Error().Err(err).Str("module", "orch").Str("room", string(room)).Str("track", string(track)).Msg("cast vote failed")
		return err
	}
	if !out.Recorded {
		o.metrics().VoteCast(metrics.OutcomeDuplicate)
		log.Debug().Str("module", "orch").Str("room", string(room)).Str("track", string(track)).Str("voter", string(voter)).Msg("duplicate vote ignored")
		return nil
	}
	o.metrics().VoteCast(metrics.OutcomeRecorded)

	if group, ok := o.Rooms.Get(room); ok {
		o.broadcast(group, TrackVotedEvent{Type: EventTrackVoted, RoomCode: room, TrackID: track, Count: out.Count})
	}
	// The vote itself stands even if the leaderboard cannot be refreshed;
	// the next vote or join republishes it.
	_ = o.publishLeaderboardLocked(ctx, room)
	return nil
}

// VotedTracks answers a getVotedTracks request. It does not depend on the
// connection being joined. On failure the list is empty, never nil.
func (o *Orchestrator) VotedTracks(ctx context.Context, room domain.RoomCode, voter domain.VoterID) ([]domain.TrackID, error) {
	if err := room.Validate(); err != nil {
		return []domain.TrackID{}, domain.Invalid(err)
	}
	if err := voter.Validate(); err != nil {
		return []domain.TrackID{}, domain.Invalid(err)
	}
	tracks, err := o.Ledger.VotedTracks(ctx, room, voter)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(room)).Str("voter", string(voter)).Msg("voted tracks query failed")
		return []domain.TrackID{}, err
	}
	if tracks == nil {
		tracks = []domain.TrackID{}
	}
	return tracks, nil
}
