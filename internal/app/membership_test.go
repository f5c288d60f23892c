package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Tracklist/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipTracker_JoinIsIdempotent(t *testing.T) {
	m := NewMembershipTracker()
	m.Join("XY9", "u1", "Alice")
	got := m.Join("XY9", "u1", "Alice")
	assert.Equal(t, []core.MemberDTO{{ID: "u1", Label: "Alice"}}, got)
}

func TestMembershipTracker_RejoinReplacesLabel(t *testing.T) {
	m := NewMembershipTracker()
	m.Join("XY9", "u1", "Alice")
	m.Join("XY9", "u2", "Bob")
	got := m.Join("XY9", "u1", "AliceUpdated")
	assert.Equal(t, []core.MemberDTO{
		{ID: "u1", Label: "AliceUpdated"},
		{ID: "u2", Label: "Bob"},
	}, got)
}

func TestMembershipTracker_JoinLeaveSymmetry(t *testing.T) {
	m := NewMembershipTracker()
	m.Join("XY9", "u1", "Alice")
	before := m.MembersOf("XY9")

	m.Join("XY9", "u2", "Bob")
	after := m.Leave("XY9", "u2")

	assert.ElementsMatch(t, before, after)
	assert.Equal(t, before, m.MembersOf("XY9"))
}

func TestMembershipTracker_LeaveAbsentIsNoop(t *testing.T) {
	m := NewMembershipTracker()
	assert.Empty(t, m.Leave("XY9", "ghost"))

	m.Join("XY9", "u1", "Alice")
	got := m.Leave("XY9", "ghost")
	assert.Equal(t, []core.MemberDTO{{ID: "u1", Label: "Alice"}}, got)
}

func TestMembershipTracker_RoomsAreIsolated(t *testing.T) {
	m := NewMembershipTracker()
	m.Join("AAA", "u1", "Alice")
	m.Join("BBB", "u2", "Bob")
	assert.Equal(t, []core.MemberDTO{{ID: "u1", Label: "Alice"}}, m.MembersOf("AAA"))
	assert.Equal(t, []core.MemberDTO{{ID: "u2", Label: "Bob"}}, m.MembersOf("BBB"))
	assert.Empty(t, m.MembersOf("CCC"))
}

func TestMembershipTracker_EmptyRoomDropped(t *testing.T) {
	m := NewMembershipTracker()
	m.Join("XY9", "u1", "Alice")
	m.Leave("XY9", "u1")
	m.mu.RLock()
	_, ok := m.rooms["XY9"]
	m.mu.RUnlock()
	assert.False(t, ok)

	got := m.Join("XY9", "u1", "Alice")
	assert.Len(t, got, 1)
}

func TestMembershipTracker_Concurrent(t *testing.T) {
	m := NewMembershipTracker()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voter := fmt.Sprintf("u%d", i)
			m.Join("XY9", domainVoter(voter), voter)
			m.Join("XY9", domainVoter(voter), voter+"!")
			if i%2 == 0 {
				m.Leave("XY9", domainVoter(voter))
			}
		}(i)
	}
	wg.Wait()

	members := m.MembersOf("XY9")
	require.Len(t, members, n/2)
	seen := map[string]bool{}
	for _, mb := range members {
		assert.False(t, seen[string(mb.ID)], "duplicate member %s", mb.ID)
		seen[string(mb.ID)] = true
		assert.Equal(t, string(mb.ID)+"!", mb.Label)
	}
}
