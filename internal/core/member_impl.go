package core

import (
	"sync"

	"github.com/dkeye/Tracklist/internal/domain"
)

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	mu   sync.RWMutex
	meta *domain.Member
	conn SignalConnection
}

func NewMemberSession(conn SignalConnection) MemberSession {
	return &memberSession{conn: conn}
}

func (m *memberSession) Meta() *domain.Member {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

func (m *memberSession) Signal() SignalConnection { return m.conn }

func (m *memberSession) UpdateMeta(meta *domain.Member) MemberSession {
	m.mu.Lock()
	m.meta = meta
	m.mu.Unlock()
	return m
}
