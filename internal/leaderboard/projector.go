// Package leaderboard ranks a room's vote tallies.
package leaderboard

import (
	"cmp"
	"slices"

	"github.com/dkeye/Tracklist/internal/domain"
)

// DefaultLimit is the leaderboard length used when callers pass limit <= 0.
const DefaultLimit = 10

// Project orders counts by count descending and breaks ties by track id
// ascending, so equal tallies never depend on map iteration order.
// Tracks without votes are skipped.
func Project(counts map[domain.TrackID]int, limit int) []domain.LeaderboardEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]domain.LeaderboardEntry, 0, len(counts))
	for track, n := range counts {
		if n <= 0 {
			continue
		}
		out = append(out, domain.LeaderboardEntry{TrackID: track, Count: n})
	}
	slices.SortFunc(out, Compare)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Compare is the ranking order used by Project and by stores that rank in SQL.
func Compare(a, b domain.LeaderboardEntry) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return cmp.Compare(a.TrackID, b.TrackID)
}
