package authz

import (
	"errors"
	"testing"
	"time"

	"github.com/relaychat/relay/internal/model"
)

func member(userID int64, role model.Role) *model.Member {
	return &model.Member{ChatID: 1, UserID: userID, Role: role, JoinedAt: time.Now().UTC()}
}

func TestCanManageMember_SelfAction(t *testing.T) {
	t.Parallel()

	for _, role := range model.AllRoles {
		for _, action := range []MemberAction{ActionUpdateRole, ActionRemove} {
			m := member(7, role)
			if err := CanManageMember(m, m, action); !errors.Is(err, ErrSelfAction) {
				t.Errorf("role=%s action=%s: got %v, want ErrSelfAction", role, action, err)
			}
		}
	}
}

func TestCanManageMember_UpdateRole(t *testing.T) {
	t.Parallel()

	owner := member(1, model.RoleOwner)
	admin := member(2, model.RoleAdmin)
	admin2 := member(3, model.RoleAdmin)
	plain := member(4, model.RoleMember)
	plain2 := member(5, model.RoleMember)

	tests := []struct {
		name      string
		requester *model.Member
		target    *model.Member
		wantErr   error
	}{
		{"owner updates admin", owner, admin, nil},
		{"owner updates member", owner, plain, nil},
		{"admin promotes member", admin, plain, nil},
		{"admin demotes owner", admin, owner, ErrOwnerOnly},
		{"admin updates admin peer", admin, admin2, ErrOwnerOnly},
		{"member updates member", plain, plain2, ErrCannotUpdateRole},
		{"member updates admin", plain, admin, ErrOwnerOnly},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CanManageMember(tt.requester, tt.target, ActionUpdateRole)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("got %v, want allow", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanManageMember_Remove(t *testing.T) {
	t.Parallel()

	owner := member(1, model.RoleOwner)
	admin := member(2, model.RoleAdmin)
	admin2 := member(3, model.RoleAdmin)
	plain := member(4, model.RoleMember)
	plain2 := member(5, model.RoleMember)

	tests := []struct {
		name      string
		requester *model.Member
		target    *model.Member
		wantErr   error
	}{
		{"owner removes admin", owner, admin, nil},
		{"owner removes member", owner, plain, nil},
		{"admin removes member", admin, plain, nil},
		// Owners can never be removed via this path, whoever asks.
		{"owner removed by admin", admin, owner, ErrCannotRemoveOwner},
		{"owner removed by member", plain, owner, ErrCannotRemoveOwner},
		// Peer exclusion is distinct from the ordering rule.
		{"admin removes admin peer", admin, admin2, ErrAdminPeerRemoval},
		{"member removes member", plain, plain2, ErrCannotRemoveMember},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CanManageMember(tt.requester, tt.target, ActionRemove)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("got %v, want allow", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanManageMember_UnknownAction(t *testing.T) {
	t.Parallel()

	err := CanManageMember(member(1, model.RoleOwner), member(2, model.RoleMember), MemberAction("ban"))
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("got %v, want ErrUnknownAction", err)
	}
}

func TestChatLevelChecks(t *testing.T) {
	t.Parallel()

	if err := CanInviteMembers(model.RoleMember); !errors.Is(err, ErrCannotInvite) {
		t.Errorf("member invite: got %v", err)
	}
	if err := CanInviteMembers(model.RoleAdmin); err != nil {
		t.Errorf("admin invite: got %v", err)
	}
	if err := CanDeleteChat(model.RoleAdmin); !errors.Is(err, ErrCannotDeleteChat) {
		t.Errorf("admin delete: got %v", err)
	}
	if err := CanDeleteChat(model.RoleOwner); err != nil {
		t.Errorf("owner delete: got %v", err)
	}
	if err := CanUpdateChat(model.RoleMember); !errors.Is(err, ErrCannotUpdateChat) {
		t.Errorf("member update: got %v", err)
	}
	if err := CanUpdateChat(model.RoleAdmin); err != nil {
		t.Errorf("admin update: got %v", err)
	}
}

func TestIsRejection(t *testing.T) {
	t.Parallel()

	if !IsRejection(ErrCannotRemoveOwner) {
		t.Error("gate rejection should be recognized")
	}
	if IsRejection(errors.New("connection refused")) {
		t.Error("arbitrary error should not be a rejection")
	}
}
