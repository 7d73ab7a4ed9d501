package model

import (
	"fmt"
	"time"
)

// InviteStatus represents the state of a chat invite.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusExpired  InviteStatus = "expired"
)

// ParseInviteStatus converts a stored status string to an InviteStatus.
// Unknown input is an error, never a silent default.
func ParseInviteStatus(s string) (InviteStatus, error) {
	switch InviteStatus(s) {
	case InviteStatusPending, InviteStatusAccepted, InviteStatusDeclined, InviteStatusExpired:
		return InviteStatus(s), nil
	default:
		return "", fmt.Errorf("unknown invite status %q", s)
	}
}

// IsTerminal reports whether the status can no longer change.
// Every status except Pending is terminal.
func (s InviteStatus) IsTerminal() bool {
	return s != InviteStatusPending
}

// InviteDecision is a responder's answer to a pending invite.
type InviteDecision string

const (
	InviteAccept  InviteDecision = "accept"
	InviteDecline InviteDecision = "decline"
)

// ParseInviteDecision converts a request decision string to an InviteDecision.
func ParseInviteDecision(s string) (InviteDecision, error) {
	switch InviteDecision(s) {
	case InviteAccept, InviteDecline:
		return InviteDecision(s), nil
	default:
		return "", fmt.Errorf("unknown invite decision %q", s)
	}
}

// Invite represents an invitation to join a chat.
type Invite struct {
	ID        int64        `json:"-"`
	PublicID  string       `json:"id"`
	ChatID    int64        `json:"chat_id"`
	InviterID int64        `json:"inviter_id"`
	Email     string       `json:"email"`
	Status    InviteStatus `json:"status"`
	ExpiresAt time.Time    `json:"expires_at"`
	CreatedAt time.Time    `json:"created_at"`
}

// InviteWithChat is an invite joined with the chat it belongs to,
// for invitee-facing listings.
type InviteWithChat struct {
	Invite
	ChatPublicID string `json:"chat_id"`
	ChatTitle    string `json:"chat_title"`
}

// IsExpired reports whether the invite's TTL has elapsed at the given time.
// Only meaningful for pending invites; terminal statuses keep their state.
func (i *Invite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// EffectiveStatus returns the status a caller should observe at the given
// time. A stale Pending past its expiry reads as Expired even before the
// lazy-expiry write lands.
func (i *Invite) EffectiveStatus(now time.Time) InviteStatus {
	if i.Status == InviteStatusPending && i.IsExpired(now) {
		return InviteStatusExpired
	}
	return i.Status
}
