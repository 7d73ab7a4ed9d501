package model

import (
	"testing"
	"time"
)

func TestParseInviteStatus(t *testing.T) {
	t.Parallel()

	valid := []InviteStatus{InviteStatusPending, InviteStatusAccepted, InviteStatusDeclined, InviteStatusExpired}
	for _, s := range valid {
		got, err := ParseInviteStatus(string(s))
		if err != nil {
			t.Errorf("ParseInviteStatus(%q) error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseInviteStatus(%q) = %q", s, got)
		}
	}

	for _, bad := range []string{"", "rejected", "PENDING", "open"} {
		if _, err := ParseInviteStatus(bad); err == nil {
			t.Errorf("ParseInviteStatus(%q) should fail", bad)
		}
	}
}

func TestInviteStatusTerminal(t *testing.T) {
	t.Parallel()

	if InviteStatusPending.IsTerminal() {
		t.Error("pending should not be terminal")
	}
	for _, s := range []InviteStatus{InviteStatusAccepted, InviteStatusDeclined, InviteStatusExpired} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestInviteEffectiveStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    InviteStatus
		expiresAt time.Time
		want      InviteStatus
	}{
		{"pending before expiry", InviteStatusPending, now.Add(time.Hour), InviteStatusPending},
		{"pending past expiry", InviteStatusPending, now.Add(-time.Second), InviteStatusExpired},
		{"accepted past expiry keeps state", InviteStatusAccepted, now.Add(-time.Hour), InviteStatusAccepted},
		{"declined past expiry keeps state", InviteStatusDeclined, now.Add(-time.Hour), InviteStatusDeclined},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inv := &Invite{Status: tt.status, ExpiresAt: tt.expiresAt}
			if got := inv.EffectiveStatus(now); got != tt.want {
				t.Errorf("EffectiveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
