package domain

import "errors"

var ErrTrackEmpty = errors.New("track id empty")

type TrackID string

func (t TrackID) Validate() error {
	if len(t) == 0 {
		return ErrTrackEmpty
	}
	return nil
}

// VoteOutcome is the result of casting a vote. Recorded is false when the
// voter had already voted for the track; Count is then the unchanged tally.
type VoteOutcome struct {
	TrackID  TrackID
	Count    int
	Recorded bool
}

// LeaderboardEntry is a derived (track, count) pair.
type LeaderboardEntry struct {
	TrackID TrackID `json:"trackId"`
	Count   int     `json:"count"`
}
