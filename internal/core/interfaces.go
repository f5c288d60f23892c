package core

import (
	"context"

	"github.com/dkeye/Tracklist/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_ledger.go -package=mocks github.com/dkeye/Tracklist/internal/core Ledger,RoomDirectory

// Ledger is the durable vote store. It is the only shared mutable
// resource and must make CastVote atomic per (room, track, voter).
type Ledger interface {
	// CastVote records voter's vote for track. A repeated vote is not an
	// error: it returns the current count with Recorded == false.
	CastVote(ctx context.Context, room domain.RoomCode, track domain.TrackID, voter domain.VoterID) (domain.VoteOutcome, error)
	VotesForRoom(ctx context.Context, room domain.RoomCode) (map[domain.TrackID]int, error)
	// VotedTracks returns the voter's tracks in ascending order.
	VotedTracks(ctx context.Context, room domain.RoomCode, voter domain.VoterID) ([]domain.TrackID, error)
	// TopForRoom ranks by count desc, track id asc. limit <= 0 means the default.
	TopForRoom(ctx context.Context, room domain.RoomCode, limit int) ([]domain.LeaderboardEntry, error)
}

// RoomDirectory stores created room codes.
type RoomDirectory interface {
	CreateRoom(ctx context.Context, room domain.Room) error
	GetRoom(ctx context.Context, code domain.RoomCode) (domain.Room, error)
}

// Membership tracks who is present in each room. It is a liveness signal
// and is never persisted. Every method returns the resulting member list
// in join order.
type Membership interface {
	Join(room domain.RoomCode, voter domain.VoterID, label string) []MemberDTO
	Leave(room domain.RoomCode, voter domain.VoterID) []MemberDTO
	MembersOf(room domain.RoomCode) []MemberDTO
}
