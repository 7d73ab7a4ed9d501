//go:build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/relaychat/relay/internal/model"
	"github.com/relaychat/relay/internal/testutil"
)

// ============================================================================
// Invite Repository Integration Tests
// ============================================================================

func TestIntegrationInviteRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, "Invitee@Example.com")
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	got, err := repo.GetInviteByPublicID(ctx, invite.PublicID)
	if err != nil {
		t.Fatalf("GetInviteByPublicID failed: %v", err)
	}
	if got.Status != model.InviteStatusPending {
		t.Errorf("Status mismatch: got %q, want %q", got.Status, model.InviteStatusPending)
	}
	// Emails are stored lowercased.
	if got.Email != "invitee@example.com" {
		t.Errorf("Email not lowercased: got %q", got.Email)
	}
}

func TestIntegrationInviteRepository_Accept(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)
	invitee := seedUser(t, ctx, repo, "invitee")

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, invitee.Email)
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	accepted, err := repo.AcceptInvite(ctx, invite.PublicID, invitee.ID, invitee.Email)
	if err != nil {
		t.Fatalf("AcceptInvite failed: %v", err)
	}
	if accepted.Status != model.InviteStatusAccepted {
		t.Errorf("Status mismatch: got %q, want %q", accepted.Status, model.InviteStatusAccepted)
	}

	// Accepting must have inserted the membership row with Member role.
	member, err := repo.GetMember(ctx, chat.ID, invitee.ID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if member.Role != model.RoleMember {
		t.Errorf("Joined role mismatch: got %q, want %q", member.Role, model.RoleMember)
	}
}

func TestIntegrationInviteRepository_Accept_AlreadyMember(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)
	invitee := seedUser(t, ctx, repo, "invitee")
	seedMember(t, ctx, repo, chat.ID, invitee.ID, model.RoleMember)

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, invitee.Email)
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	_, err := repo.AcceptInvite(ctx, invite.PublicID, invitee.ID, invitee.Email)
	if !errors.Is(err, ErrMemberExists) {
		t.Errorf("Expected ErrMemberExists, got: %v", err)
	}

	// The rejected accept must not have moved the invite off Pending.
	got, err := repo.GetInviteByPublicID(ctx, invite.PublicID)
	if err != nil {
		t.Fatalf("GetInviteByPublicID failed: %v", err)
	}
	if got.Status != model.InviteStatusPending {
		t.Errorf("Status mismatch: got %q, want %q", got.Status, model.InviteStatusPending)
	}
}

func TestIntegrationInviteRepository_RepeatRespond(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)
	invitee := seedUser(t, ctx, repo, "invitee")

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, invitee.Email)
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	if _, err := repo.DeclineInvite(ctx, invite.PublicID, invitee.Email); err != nil {
		t.Fatalf("DeclineInvite failed: %v", err)
	}

	if _, err := repo.DeclineInvite(ctx, invite.PublicID, invitee.Email); !errors.Is(err, ErrInviteResponded) {
		t.Errorf("Expected ErrInviteResponded on repeat decline, got: %v", err)
	}
	if _, err := repo.AcceptInvite(ctx, invite.PublicID, invitee.ID, invitee.Email); !errors.Is(err, ErrInviteResponded) {
		t.Errorf("Expected ErrInviteResponded on accept after decline, got: %v", err)
	}
}

func TestIntegrationInviteRepository_Accept_Expired(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)
	invitee := seedUser(t, ctx, repo, "invitee")

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, invitee.Email)
	invite.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	_, err := repo.AcceptInvite(ctx, invite.PublicID, invitee.ID, invitee.Email)
	if !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("Expected ErrInviteExpired, got: %v", err)
	}

	// The lazily-discovered expiry must be persisted despite the rejection.
	got, err := repo.GetInviteByPublicID(ctx, invite.PublicID)
	if err != nil {
		t.Fatalf("GetInviteByPublicID failed: %v", err)
	}
	if got.Status != model.InviteStatusExpired {
		t.Errorf("Expired status not persisted: got %q, want %q", got.Status, model.InviteStatusExpired)
	}

	// And no membership row may exist.
	if _, err := repo.GetMember(ctx, chat.ID, invitee.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("Expected ErrMemberNotFound, got: %v", err)
	}
}

func TestIntegrationInviteRepository_Decline_Expired(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, testutil.UniqueEmail("late"))
	invite.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	// Declining an expired invite still lands Expired, not Declined.
	_, err := repo.DeclineInvite(ctx, invite.PublicID, invite.Email)
	if !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("Expected ErrInviteExpired, got: %v", err)
	}

	got, err := repo.GetInviteByPublicID(ctx, invite.PublicID)
	if err != nil {
		t.Fatalf("GetInviteByPublicID failed: %v", err)
	}
	if got.Status != model.InviteStatusExpired {
		t.Errorf("Status mismatch: got %q, want %q", got.Status, model.InviteStatusExpired)
	}
}

func TestIntegrationInviteRepository_WrongResponder(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)
	stranger := seedUser(t, ctx, repo, "stranger")

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, testutil.UniqueEmail("invitee"))
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	_, err := repo.AcceptInvite(ctx, invite.PublicID, stranger.ID, stranger.Email)
	if !errors.Is(err, ErrNotInvitee) {
		t.Fatalf("Expected ErrNotInvitee, got: %v", err)
	}

	// The rejected accept leaves the invite Pending and adds no member.
	got, err := repo.GetInviteByPublicID(ctx, invite.PublicID)
	if err != nil {
		t.Fatalf("GetInviteByPublicID failed: %v", err)
	}
	if got.Status != model.InviteStatusPending {
		t.Errorf("Status mismatch: got %q, want %q", got.Status, model.InviteStatusPending)
	}
	if _, err := repo.GetMember(ctx, chat.ID, stranger.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("Expected ErrMemberNotFound, got: %v", err)
	}

	if _, err := repo.DeclineInvite(ctx, invite.PublicID, stranger.Email); !errors.Is(err, ErrNotInvitee) {
		t.Errorf("Expected ErrNotInvitee on decline, got: %v", err)
	}
}

func TestIntegrationInviteRepository_WrongResponder_Responded(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)
	invitee := seedUser(t, ctx, repo, "invitee")
	stranger := seedUser(t, ctx, repo, "stranger")

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, invitee.Email)
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}
	if _, err := repo.DeclineInvite(ctx, invite.PublicID, invitee.Email); err != nil {
		t.Fatalf("DeclineInvite failed: %v", err)
	}

	// The terminal state wins over the identity mismatch.
	if _, err := repo.AcceptInvite(ctx, invite.PublicID, stranger.ID, stranger.Email); !errors.Is(err, ErrInviteResponded) {
		t.Errorf("Expected ErrInviteResponded, got: %v", err)
	}
}

func TestIntegrationInviteRepository_WrongResponder_Expired(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)
	stranger := seedUser(t, ctx, repo, "stranger")

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, testutil.UniqueEmail("invitee"))
	invite.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	// Expiry wins over the identity mismatch, and the Expired write lands
	// even though the responder was never the invitee.
	if _, err := repo.AcceptInvite(ctx, invite.PublicID, stranger.ID, stranger.Email); !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("Expected ErrInviteExpired, got: %v", err)
	}

	got, err := repo.GetInviteByPublicID(ctx, invite.PublicID)
	if err != nil {
		t.Fatalf("GetInviteByPublicID failed: %v", err)
	}
	if got.Status != model.InviteStatusExpired {
		t.Errorf("Expired status not persisted: got %q, want %q", got.Status, model.InviteStatusExpired)
	}
}

func TestIntegrationInviteRepository_Cancel(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)
	other := seedUser(t, ctx, repo, "other")

	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, testutil.UniqueEmail("cancel"))
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	if err := repo.CancelInvite(ctx, invite.PublicID, other.ID); !errors.Is(err, ErrNotInviter) {
		t.Errorf("Expected ErrNotInviter, got: %v", err)
	}

	if err := repo.CancelInvite(ctx, invite.PublicID, owner.ID); err != nil {
		t.Fatalf("CancelInvite failed: %v", err)
	}

	if _, err := repo.GetInviteByPublicID(ctx, invite.PublicID); !errors.Is(err, ErrInviteNotFound) {
		t.Errorf("Expected ErrInviteNotFound after cancel, got: %v", err)
	}
}

func TestIntegrationInviteRepository_ListChatInvites_LazyExpiry(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)

	fresh := testutil.NewTestInvite(t, chat.ID, owner.ID, testutil.UniqueEmail("fresh"))
	stale := testutil.NewTestInvite(t, chat.ID, owner.ID, testutil.UniqueEmail("stale"))
	stale.ExpiresAt = time.Now().UTC().Add(-time.Minute)

	for _, inv := range []*model.Invite{fresh, stale} {
		if err := repo.CreateInvite(ctx, inv); err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
	}

	invites, err := repo.ListChatInvites(ctx, chat.ID)
	if err != nil {
		t.Fatalf("ListChatInvites failed: %v", err)
	}
	if len(invites) != 2 {
		t.Fatalf("Expected 2 invites, got %d", len(invites))
	}

	byID := map[string]model.InviteStatus{}
	for _, inv := range invites {
		byID[inv.PublicID] = inv.Status
	}
	if byID[fresh.PublicID] != model.InviteStatusPending {
		t.Errorf("Fresh invite status: got %q, want %q", byID[fresh.PublicID], model.InviteStatusPending)
	}
	if byID[stale.PublicID] != model.InviteStatusExpired {
		t.Errorf("Stale invite status: got %q, want %q", byID[stale.PublicID], model.InviteStatusExpired)
	}
}

func TestIntegrationInviteRepository_ListInvitesForEmail(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo, "owner")
	chat := seedChat(t, ctx, repo, owner)

	email := testutil.UniqueEmail("mine")
	invite := testutil.NewTestInvite(t, chat.ID, owner.ID, email)
	if err := repo.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	invites, err := repo.ListInvitesForEmail(ctx, email)
	if err != nil {
		t.Fatalf("ListInvitesForEmail failed: %v", err)
	}
	if len(invites) != 1 {
		t.Fatalf("Expected 1 invite, got %d", len(invites))
	}
	if invites[0].ChatPublicID != chat.PublicID {
		t.Errorf("ChatPublicID mismatch: got %q, want %q", invites[0].ChatPublicID, chat.PublicID)
	}
	if invites[0].ChatTitle != chat.Title {
		t.Errorf("ChatTitle mismatch: got %q, want %q", invites[0].ChatTitle, chat.Title)
	}
}
