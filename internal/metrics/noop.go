package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLoginStateIssued is a no-op.
func (n *NoopRecorder) IncLoginStateIssued() {}

// IncLoginStateConsumed is a no-op.
func (n *NoopRecorder) IncLoginStateConsumed(ok bool) {}

// IncSessionCreated is a no-op.
func (n *NoopRecorder) IncSessionCreated() {}

// IncInviteCreated is a no-op.
func (n *NoopRecorder) IncInviteCreated() {}

// IncInviteAccepted is a no-op.
func (n *NoopRecorder) IncInviteAccepted() {}

// IncInviteDeclined is a no-op.
func (n *NoopRecorder) IncInviteDeclined() {}

// IncInviteExpired is a no-op.
func (n *NoopRecorder) IncInviteExpired() {}

// IncMemberAdded is a no-op.
func (n *NoopRecorder) IncMemberAdded() {}

// IncMemberRemoved is a no-op.
func (n *NoopRecorder) IncMemberRemoved() {}

// IncMemberRoleUpdated is a no-op.
func (n *NoopRecorder) IncMemberRoleUpdated() {}

// IncAuthzRejected is a no-op.
func (n *NoopRecorder) IncAuthzRejected(reason string) {}
