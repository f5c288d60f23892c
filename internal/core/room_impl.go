package core

import (
	"sync"

	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory multicast group.
// It never closes adapter-owned resources.
type roomImpl struct {
	code    domain.RoomCode
	mu      sync.RWMutex
	bySID   map[SessionID]MemberSession
	byVoter map[domain.VoterID]map[SessionID]struct{}
}

func NewRoomService(code domain.RoomCode) RoomService {
	return &roomImpl{
		code:    code,
		bySID:   make(map[SessionID]MemberSession),
		byVoter: make(map[domain.VoterID]map[SessionID]struct{}),
	}
}

func (r *roomImpl) Code() domain.RoomCode { return r.code }

func (r *roomImpl) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) VoterSessions(voter domain.VoterID, except SessionID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for sid := range r.byVoter[voter] {
		if sid != except {
			n++
		}
	}
	return n
}

func (r *roomImpl) AddSession(sid SessionID, ms MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropVoterLocked(sid)
	r.bySID[sid] = ms
	if meta := ms.Meta(); meta != nil && meta.Voter != nil {
		v := meta.Voter.ID
		if r.byVoter[v] == nil {
			r.byVoter[v] = make(map[SessionID]struct{})
		}
		r.byVoter[v][sid] = struct{}{}
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(sid)).Msg("session added")
}

func (r *roomImpl) RemoveSession(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropVoterLocked(sid)
	delete(r.bySID, sid)
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(sid)).Msg("session removed")
}

func (r *roomImpl) dropVoterLocked(sid SessionID) {
	for v, sids := range r.byVoter {
		if _, ok := sids[sid]; !ok {
			continue
		}
		delete(sids, sid)
		if len(sids) == 0 {
			delete(r.byVoter, v)
		}
	}
}

// Broadcast delivers to every session of the room. A failed recipient is
// reported in Dropped and does not stop delivery to the rest.
func (r *roomImpl) Broadcast(data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for _, m := range r.bySID {
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
