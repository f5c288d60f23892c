package orch

import (
	"encoding/json"

	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
)

// Outbound event types.
const (
	EventActiveUsers       = "activeUsers"
	EventInitialVotes      = "initialVotes"
	EventVotedTracks       = "votedTracks"
	EventTrackVoted        = "trackVoted"
	EventLeaderboardUpdate = "leaderboardUpdate"
)

type ActiveUsersEvent struct {
	Type     string           `json:"type"`
	RoomCode domain.RoomCode  `json:"roomCode"`
	Users    []core.MemberDTO `json:"users"`
}

type InitialVotesEvent struct {
	Type     string                 `json:"type"`
	RoomCode domain.RoomCode        `json:"roomCode"`
	Votes    map[domain.TrackID]int `json:"votes"`
}

type VotedTracksEvent struct {
	Type      string           `json:"type"`
	RequestID string           `json:"requestId,omitempty"`
	RoomCode  domain.RoomCode  `json:"roomCode"`
	TrackIDs  []domain.TrackID `json:"trackIds"`
}

type TrackVotedEvent struct {
	Type     string          `json:"type"`
	RoomCode domain.RoomCode `json:"roomCode"`
	TrackID  domain.TrackID  `json:"trackId"`
	Count    int             `json:"count"`
}

type LeaderboardEvent struct {
	Type     string                    `json:"type"`
	RoomCode domain.RoomCode           `json:"roomCode"`
	Entries  []domain.LeaderboardEntry `json:"entries"`
}

func encode(v any) (core.Frame, error) {
	return json.Marshal(v)
}
