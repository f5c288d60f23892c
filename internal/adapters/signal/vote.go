package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Tracklist/internal/app/orch"
	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/metrics"
	"github.com/rs/zerolog/log"
)

type votePayload struct {
	RoomCode      domain.RoomCode `json:"roomCode"`
	TrackID       domain.TrackID  `json:"trackId"`
	VoterIdentity domain.VoterID  `json:"voterIdentity"`
}

type votedTracksPayload struct {
	RequestID     string          `json:"requestId"`
	RoomCode      domain.RoomCode `json:"roomCode"`
	VoterIdentity domain.VoterID  `json:"voterIdentity"`
}

func (ctl *SignalWSController) handleVote(
	ctx context.Context,
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	var p votePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad vote payload")
		ctl.sendError(conn, MsgVoteTrack, codeBadPayload, "")
		return
	}
	// Tokens are spent only by a connection joined to the room as this voter.
	room, voter, joined := ctl.Orch.Registry.RoomOf(sid)
	owner := joined && room == p.RoomCode && voter == p.VoterIdentity
	if owner && ctl.Limiter != nil && !ctl.Limiter.Allow(voter) {
		ctl.Metrics.VoteCast(metrics.OutcomeRateLimited)
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("voter", string(p.VoterIdentity)).Msg("vote rate limited")
		ctl.sendError(conn, MsgVoteTrack, codeRateLimited, "")
		return
	}

	if err := ctl.Orch.Vote(ctx, sid, p.RoomCode, p.TrackID, p.VoterIdentity); err != nil {
		ctl.sendError(conn, MsgVoteTrack, errorCode(err), "")
	}
}

// handleGetVotedTracks answers with a votedTracks event carrying the
// caller's requestId. Failures still answer, with an empty list, followed
// by an error event.
func (ctl *SignalWSController) handleGetVotedTracks(
	ctx context.Context,
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	var p votedTracksPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad getVotedTracks payload")
		ctl.sendError(conn, MsgGetVotedTracks, codeBadPayload, "")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, ctl.Opts.QueryTimeout)
	defer cancel()
	tracks, err := ctl.Orch.VotedTracks(ctx, p.RoomCode, p.VoterIdentity)
	ctl.sendJSON(conn, orch.VotedTracksEvent{
		Type:      orch.EventVotedTracks,
		RequestID: p.RequestID,
		RoomCode:  p.RoomCode,
		TrackIDs:  tracks,
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("getVotedTracks failed")
		ctl.sendError(conn, MsgGetVotedTracks, errorCode(err), p.RequestID)
	}
}
