package core

import (
	"github.com/dkeye/Tracklist/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID    domain.VoterID `json:"voterIdentity"`
	Label string         `json:"label"`
}

// RoomService is the multicast group of one room.
// It owns the session set but never touches transport resources.
type RoomService interface {
	Code() domain.RoomCode
	SessionCount() int
	// VoterSessions counts sessions of the voter other than except.
	VoterSessions(voter domain.VoterID, except SessionID) int

	AddSession(sid SessionID, ms MemberSession)
	RemoveSession(sid SessionID)
	Broadcast(data Frame) PublishResult
}

type RoomInfo struct {
	Code         domain.RoomCode `json:"roomCode"`
	SessionCount int             `json:"connections"`
}

type RoomManager interface {
	GetOrCreate(code domain.RoomCode) RoomService
	Get(code domain.RoomCode) (RoomService, bool)
	List() []RoomInfo
	// StopRoom drops the group only if it has no sessions left.
	StopRoom(code domain.RoomCode)
}
