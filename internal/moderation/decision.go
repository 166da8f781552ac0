// Package moderation decides whether a requester may delete a message in a
// server. The engine is a pure function over directory state: it mutates
// nothing and holds no cache, so callers must hand it live role lookups and
// apply the delete themselves only after an Allow.
package moderation

import "github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"

// Decision is the outcome of an authorization check. Deny is a valid
// outcome, not an error; errors are reserved for lookup failures.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) Allowed() bool { return d == Allow }

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Actor identifies the requester. PlatformAdmin is the explicit
// capability flag resolved from the credential; the engine never compares
// user ids against privileged constants.
type Actor struct {
	ID            uint
	PlatformAdmin bool
}

// RoleLookup reads a member's current role in a server. found=false means
// no membership exists; implementations must read live state, never a
// cached role.
type RoleLookup interface {
	MemberRole(serverID, userID uint) (models.ServerRole, bool, error)
}

// Decide runs the delete-message authorization check. The order of checks
// is total and deliberate:
//
//  1. authors may always delete their own messages, whatever their role
//  2. platform admins may delete anything
//  3. non-members are denied
//  4. the owner may delete any message in their server
//  5. moderators may delete member messages only; peers and the owner are
//     off-limits (an author with no current membership counts as a member)
//  6. plain members are denied
func Decide(actor Actor, msg *models.ServerMessage, roles RoleLookup) (Decision, error) {
	if actor.ID == msg.AuthorID {
		return Allow, nil
	}
	if actor.PlatformAdmin {
		return Allow, nil
	}

	actorRole, isMember, err := roles.MemberRole(msg.ServerID, actor.ID)
	if err != nil {
		return Deny, err
	}
	if !isMember {
		return Deny, nil
	}

	switch actorRole {
	case models.RoleOwner:
		return Allow, nil
	case models.RoleModerator:
		authorRole, authorIsMember, err := roles.MemberRole(msg.ServerID, msg.AuthorID)
		if err != nil {
			return Deny, err
		}
		if !authorIsMember {
			// Departed authors moderate like plain members.
			authorRole = models.RoleMember
		}
		if authorRole.AtLeast(models.RoleModerator) {
			return Deny, nil
		}
		return Allow, nil
	default:
		return Deny, nil
	}
}
