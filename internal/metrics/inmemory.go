package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginStatesIssued    uint64
	LoginStatesConsumed  uint64
	LoginStatesRejected  uint64
	SessionsCreated      uint64
	InvitesCreated       uint64
	InvitesAccepted      uint64
	InvitesDeclined      uint64
	InvitesExpired       uint64
	MembersAdded         uint64
	MembersRemoved       uint64
	MemberRolesUpdated   uint64
	AuthzRejections      map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginStatesIssued   uint64
	loginStatesConsumed uint64
	loginStatesRejected uint64
	sessionsCreated     uint64
	invitesCreated      uint64
	invitesAccepted     uint64
	invitesDeclined     uint64
	invitesExpired      uint64
	membersAdded        uint64
	membersRemoved      uint64
	memberRolesUpdated  uint64

	mu              sync.Mutex
	authzRejections map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		authzRejections: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	rejections := make(map[string]uint64, len(m.authzRejections))
	for reason, count := range m.authzRejections {
		rejections[reason] = count
	}
	m.mu.Unlock()

	return Snapshot{
		LoginStatesIssued:   atomic.LoadUint64(&m.loginStatesIssued),
		LoginStatesConsumed: atomic.LoadUint64(&m.loginStatesConsumed),
		LoginStatesRejected: atomic.LoadUint64(&m.loginStatesRejected),
		SessionsCreated:     atomic.LoadUint64(&m.sessionsCreated),
		InvitesCreated:      atomic.LoadUint64(&m.invitesCreated),
		InvitesAccepted:     atomic.LoadUint64(&m.invitesAccepted),
		InvitesDeclined:     atomic.LoadUint64(&m.invitesDeclined),
		InvitesExpired:      atomic.LoadUint64(&m.invitesExpired),
		MembersAdded:        atomic.LoadUint64(&m.membersAdded),
		MembersRemoved:      atomic.LoadUint64(&m.membersRemoved),
		MemberRolesUpdated:  atomic.LoadUint64(&m.memberRolesUpdated),
		AuthzRejections:     rejections,
	}
}

// IncLoginStateIssued increments the issued-state counter.
func (m *InMemoryRecorder) IncLoginStateIssued() {
	atomic.AddUint64(&m.loginStatesIssued, 1)
}

// IncLoginStateConsumed increments the consumed or rejected counter.
func (m *InMemoryRecorder) IncLoginStateConsumed(ok bool) {
	if ok {
		atomic.AddUint64(&m.loginStatesConsumed, 1)
	} else {
		atomic.AddUint64(&m.loginStatesRejected, 1)
	}
}

// IncSessionCreated increments the session counter.
func (m *InMemoryRecorder) IncSessionCreated() {
	atomic.AddUint64(&m.sessionsCreated, 1)
}

// IncInviteCreated increments the invite-created counter.
func (m *InMemoryRecorder) IncInviteCreated() {
	atomic.AddUint64(&m.invitesCreated, 1)
}

// IncInviteAccepted increments the invite-accepted counter.
func (m *InMemoryRecorder) IncInviteAccepted() {
	atomic.AddUint64(&m.invitesAccepted, 1)
}

// IncInviteDeclined increments the invite-declined counter.
func (m *InMemoryRecorder) IncInviteDeclined() {
	atomic.AddUint64(&m.invitesDeclined, 1)
}

// IncInviteExpired increments the invite-expired counter.
func (m *InMemoryRecorder) IncInviteExpired() {
	atomic.AddUint64(&m.invitesExpired, 1)
}

// IncMemberAdded increments the member-added counter.
func (m *InMemoryRecorder) IncMemberAdded() {
	atomic.AddUint64(&m.membersAdded, 1)
}

// IncMemberRemoved increments the member-removed counter.
func (m *InMemoryRecorder) IncMemberRemoved() {
	atomic.AddUint64(&m.membersRemoved, 1)
}

// IncMemberRoleUpdated increments the role-updated counter.
func (m *InMemoryRecorder) IncMemberRoleUpdated() {
	atomic.AddUint64(&m.memberRolesUpdated, 1)
}

// IncAuthzRejected tallies a gate rejection by reason.
func (m *InMemoryRecorder) IncAuthzRejected(reason string) {
	m.mu.Lock()
	m.authzRejections[reason]++
	m.mu.Unlock()
}
