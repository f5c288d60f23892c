package orch

import (
	"context"
	"errors"

	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join attaches the connection to room as voter. A connection already
// joined elsewhere (or as another voter) leaves first; a repeat join of
// the same room refreshes the label and replays the joiner's view.
//
// Membership is updated even when the ledger reads fail; the returned
// StorageError only means initialVotes/votedTracks/leaderboard were not
// sent.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, room domain.RoomCode, voter domain.VoterID, label string) error {
	if err := room.Validate(); err != nil {
		return domain.Invalid(err)
	}
	v, err := domain.NewVoter(voter, label)
	if err != nil {
		return domain.Invalid(err)
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return ErrNoSession
	}

	if cur, curVoter, joined := o.Registry.RoomOf(sid); joined && (cur != room || curVoter != v.ID) {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(cur)).Str("room", string(room)).Msg("implicit leave before join")
		o.detach(sid, cur, curVoter)
	}

	sess.UpdateMeta(domain.NewMember(v, room))
	ml := o.memberLock(room)
	ml.Lock()
	group := o.attach(room, sid, sess)
	o.Registry.UpdateRoom(sid, room, v.ID)
	members := o.Members.Join(room, v.ID, v.Label)
	o.broadcast(group, ActiveUsersEvent{Type: EventActiveUsers, RoomCode: room, Users: members})
	ml.Unlock()
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Str("voter", string(v.ID)).Msg("joined room")

	var errs []error
	if votes, err := o.Ledger.VotesForRoom(ctx, room); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(room)).Msg("initial votes read failed")
		errs = append(errs, err)
	} else {
		o.send(sess, InitialVotesEvent{Type: EventInitialVotes, RoomCode: room, Votes: votes})
	}

	if tracks, err := o.Ledger.VotedTracks(ctx, room, v.ID); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(room)).Str("voter", string(v.ID)).Msg("voted tracks read failed")
		errs = append(errs, err)
	} else {
		o.send(sess, VotedTracksEvent{Type: EventVotedTracks, RoomCode: room, TrackIDs: tracks})
	}

	lock := o.roomLock(room)
	lock.Lock()
	if err := o.publishLeaderboardLocked(ctx, room); err != nil {
		errs = append(errs, err)
	}
	lock.Unlock()

	return errors.Join(errs...)
}

// attach adds the session to the room group, retrying if a concurrent
// StopRoom dropped the group between lookup and insert.
func (o *Orchestrator) attach(room domain.RoomCode, sid core.SessionID, sess core.MemberSession) core.RoomService {
	for {
		group := o.Rooms.GetOrCreate(room)
		group.AddSession(sid, sess)
		if cur, ok := o.Rooms.Get(room); ok && cur == group {
			return group
		}
		group.RemoveSession(sid)
	}
}

// Leave detaches the connection from room. An empty room means "whatever
// room the connection is in".
func (o *Orchestrator) Leave(sid core.SessionID, room domain.RoomCode) error {
	cur, voter, ok := o.Registry.RoomOf(sid)
	if !ok || (room != "" && room != cur) {
		return domain.ErrNotJoined
	}
	o.detach(sid, cur, voter)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(cur)).Msg("left room")
	return nil
}

// OnDisconnect is called by the transport once the connection is gone.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	if room, voter, ok := o.Registry.RoomOf(sid); ok {
		o.detach(sid, room, voter)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("disconnected from room")
	}
	o.Registry.Unbind(sid)
}

// detach removes the session from the room group and, unless the same
// voter is still present through another connection, from membership.
// The presence check and the leave happen under the room's member lock.
func (o *Orchestrator) detach(sid core.SessionID, room domain.RoomCode, voter domain.VoterID) {
	ml := o.memberLock(room)
	ml.Lock()
	defer ml.Unlock()

	group, hasGroup := o.Rooms.Get(room)
	if hasGroup {
		group.RemoveSession(sid)
	}
	o.Registry.RemoveRoom(sid)

	if hasGroup && group.VoterSessions(voter, sid) > 0 {
		return
	}
	members := o.Members.Leave(room, voter)
	if hasGroup {
		o.broadcast(group, ActiveUsersEvent{Type: EventActiveUsers, RoomCode: room, Users: members})
		o.Rooms.StopRoom(room)
	}
}

// KickBySID closes the connection. The transport's read loop then reports
// the disconnect, which does the room cleanup.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	o.Registry.Cancel(sid)
	sess.Signal().Close()
}

func (o *Orchestrator) EvictRoom(room domain.RoomCode) {
	for _, snap := range o.Registry.MembersOfRoom(room) {
		o.KickBySID(snap.SID)
	}
}
