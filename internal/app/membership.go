package app

import (
	"sync"

	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomMembers struct {
	mu     sync.Mutex
	order  []domain.VoterID
	labels map[domain.VoterID]string
}

func (m *roomMembers) snapshotLocked() []core.MemberDTO {
	out := make([]core.MemberDTO, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, core.MemberDTO{ID: id, Label: m.labels[id]})
	}
	return out
}

// MembershipTracker is the in-process core.Membership. Members are keyed
// by voter identity and listed in first-join order; a repeat join only
// replaces the label.
type MembershipTracker struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*roomMembers
}

func NewMembershipTracker() *MembershipTracker {
	return &MembershipTracker{rooms: make(map[domain.RoomCode]*roomMembers)}
}

var _ core.Membership = (*MembershipTracker)(nil)

func (t *MembershipTracker) room(code domain.RoomCode, create bool) *roomMembers {
	t.mu.RLock()
	m, ok := t.rooms[code]
	t.mu.RUnlock()
	if ok || !create {
		return m
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok = t.rooms[code]; ok {
		return m
	}
	m = &roomMembers{labels: make(map[domain.VoterID]string)}
	t.rooms[code] = m
	return m
}

func (t *MembershipTracker) Join(code domain.RoomCode, voter domain.VoterID, label string) []core.MemberDTO {
	for {
		m := t.room(code, true)
		m.mu.Lock()
		if !t.attached(code, m) {
			// Dropped as empty between lookup and lock; retry on a fresh entry.
			m.mu.Unlock()
			continue
		}
		if _, ok := m.labels[voter]; !ok {
			m.order = append(m.order, voter)
		}
		m.labels[voter] = label
		out := m.snapshotLocked()
		m.mu.Unlock()
		log.Debug().Str("module", "app.membership").Str("room", string(code)).Str("voter", string(voter)).Int("members", len(out)).Msg("joined")
		return out
	}
}

func (t *MembershipTracker) Leave(code domain.RoomCode, voter domain.VoterID) []core.MemberDTO {
	m := t.room(code, false)
	if m == nil {
		return []core.MemberDTO{}
	}
	m.mu.Lock()
	if _, ok := m.labels[voter]; ok {
		delete(m.labels, voter)
		for i, id := range m.order {
			if id == voter {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	out := m.snapshotLocked()
	empty := len(m.order) == 0
	if empty {
		t.mu.Lock()
		if t.rooms[code] == m {
			delete(t.rooms, code)
		}
		t.mu.Unlock()
	}
	m.mu.Unlock()
	log.Debug().Str("module", "app.membership").Str("room", string(code)).Str("voter", string(voter)).Int("members", len(out)).Msg("left")
	return out
}

func (t *MembershipTracker) MembersOf(code domain.RoomCode) []core.MemberDTO {
	m := t.room(code, false)
	if m == nil {
		return []core.MemberDTO{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (t *MembershipTracker) attached(code domain.RoomCode, m *roomMembers) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rooms[code] == m
}
