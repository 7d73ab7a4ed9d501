// Package authz decides whether a chat member may perform an action.
// All checks are pure: they read roles, return a typed rejection or nil,
// and never touch storage. Callers that mutate membership must evaluate
// the relevant check inside the same transaction as the write.
package authz

import (
	"errors"

	"github.com/relaychat/relay/internal/model"
)

// MemberAction is an action performed by one member on another.
type MemberAction string

const (
	ActionUpdateRole MemberAction = "update_role"
	ActionRemove     MemberAction = "remove"
)

// Rejection reasons. The strings are stable; clients render them directly.
var (
	ErrSelfAction         = errors.New("cannot perform actions on yourself")
	ErrOwnerOnly          = errors.New("only owners can manage admins and other owners")
	ErrCannotUpdateRole   = errors.New("insufficient permissions to update member role")
	ErrCannotRemoveOwner  = errors.New("cannot remove chat owner")
	ErrAdminPeerRemoval   = errors.New("admins cannot remove other admins")
	ErrCannotRemoveMember = errors.New("insufficient permissions to remove member")
	ErrCannotInvite       = errors.New("insufficient permissions to invite members")
	ErrCannotUpdateChat   = errors.New("only owners and admins can update chat settings")
	ErrCannotDeleteChat   = errors.New("only chat owners can delete chats")
	ErrNotChatMember      = errors.New("not a member of this chat")
	ErrUnknownAction      = errors.New("unknown member action")
)

// CanManageMember decides whether requester may perform action on target.
// Both must be members of the same chat. Rules are evaluated in order and
// the first failing rule rejects:
//
//  1. A member may never act on themself.
//  2. UpdateRole: only owners touch admins or owners; owners and admins
//     touch plain members.
//  3. Remove: owners are immune; admins cannot remove admin peers; only
//     owners and admins remove anyone at all.
func CanManageMember(requester, target *model.Member, action MemberAction) error {
	if requester.UserID == target.UserID {
		return ErrSelfAction
	}

	switch action {
	case ActionUpdateRole:
		if target.Role == model.RoleOwner || target.Role == model.RoleAdmin {
			if requester.Role != model.RoleOwner {
				return ErrOwnerOnly
			}
			return nil
		}
		if !requester.Role.CanManageMembers() {
			return ErrCannotUpdateRole
		}
		return nil

	case ActionRemove:
		if target.Role == model.RoleOwner {
			return ErrCannotRemoveOwner
		}
		if target.Role == model.RoleAdmin && requester.Role == model.RoleAdmin {
			return ErrAdminPeerRemoval
		}
		if !requester.Role.CanManageMembers() {
			return ErrCannotRemoveMember
		}
		return nil

	default:
		return ErrUnknownAction
	}
}

// CanInviteMembers rejects unless the role may create invites.
func CanInviteMembers(role model.Role) error {
	if !role.CanInviteMembers() {
		return ErrCannotInvite
	}
	return nil
}

// CanUpdateChat rejects unless the role may change chat settings.
func CanUpdateChat(role model.Role) error {
	if !role.CanUpdateChat() {
		return ErrCannotUpdateChat
	}
	return nil
}

// CanDeleteChat rejects unless the role may delete the chat.
func CanDeleteChat(role model.Role) error {
	if !role.CanDeleteChat() {
		return ErrCannotDeleteChat
	}
	return nil
}

// IsRejection reports whether err is one of the gate's typed rejections,
// as opposed to a storage or programming error.
func IsRejection(err error) bool {
	for _, rejection := range []error{
		ErrSelfAction,
		ErrOwnerOnly,
		ErrCannotUpdateRole,
		ErrCannotRemoveOwner,
		ErrAdminPeerRemoval,
		ErrCannotRemoveMember,
		ErrCannotInvite,
		ErrCannotUpdateChat,
		ErrCannotDeleteChat,
		ErrNotChatMember,
	} {
		if errors.Is(err, rejection) {
			return true
		}
	}
	return false
}
