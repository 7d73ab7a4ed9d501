// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Login flow metrics
	IncLoginStateIssued()
	IncLoginStateConsumed(ok bool)
	IncSessionCreated()

	// Invite lifecycle metrics
	IncInviteCreated()
	IncInviteAccepted()
	IncInviteDeclined()
	IncInviteExpired()

	// Membership metrics
	IncMemberAdded()
	IncMemberRemoved()
	IncMemberRoleUpdated()
	IncAuthzRejected(reason string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
