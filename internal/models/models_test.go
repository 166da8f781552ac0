package models

import (
	"testing"
	"time"
)

func TestServerRoleOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b ServerRole
	}{
		{"owner outranks moderator", RoleOwner, RoleModerator},
		{"moderator outranks member", RoleModerator, RoleMember},
		{"owner outranks member", RoleOwner, RoleMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.Rank() <= tt.b.Rank() {
				t.Errorf("Rank(%s)=%d should exceed Rank(%s)=%d", tt.a, tt.a.Rank(), tt.b, tt.b.Rank())
			}
			if !tt.a.AtLeast(tt.b) {
				t.Errorf("%s.AtLeast(%s) = false, want true", tt.a, tt.b)
			}
			if tt.b.AtLeast(tt.a) {
				t.Errorf("%s.AtLeast(%s) = true, want false", tt.b, tt.a)
			}
		})
	}

	if ServerRole("ghost").Rank() != 0 {
		t.Errorf("unknown role should rank below member")
	}
	if !RoleMember.AtLeast(RoleMember) {
		t.Errorf("a role should be at least itself")
	}
}

func TestServerRoleValid(t *testing.T) {
	for _, r := range []ServerRole{RoleOwner, RoleModerator, RoleMember} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if ServerRole("admin").Valid() {
		t.Errorf("admin is not a server role")
	}
	if ServerRole("").Valid() {
		t.Errorf("empty role should be invalid")
	}
}

func TestInviteLinkUsable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	one := 1

	tests := []struct {
		name string
		link ServerInviteLink
		want bool
	}{
		{"fresh link", ServerInviteLink{}, true},
		{"expired", ServerInviteLink{ExpiresAt: &past}, false},
		{"not yet expired", ServerInviteLink{ExpiresAt: &future}, true},
		{"revoked", ServerInviteLink{RevokedAt: &past}, false},
		{"exhausted", ServerInviteLink{MaxUses: &one, UsedCount: 1}, false},
		{"single use unspent", ServerInviteLink{MaxUses: &one, UsedCount: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.link.Usable(now); got != tt.want {
				t.Errorf("Usable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageToResponse(t *testing.T) {
	parent := uint(4)
	m := &ServerMessage{
		ID:       9,
		ClientID: "a4c5ff51-3e76-4717-a276-2f29fdd7e1d0",
		ServerID: 2,
		AuthorID: 3,
		Author:   User{ID: 3, Username: "pipqueen"},
		Content:  "stopped out, moving on",
		ParentID: &parent,
	}

	resp := m.ToResponse()
	if resp.ID != m.ID || resp.ServerID != m.ServerID || resp.AuthorID != m.AuthorID {
		t.Errorf("identifiers not carried over: %+v", resp)
	}
	if resp.Author.Username != "pipqueen" {
		t.Errorf("author not embedded")
	}
	if resp.ParentID == nil || *resp.ParentID != parent {
		t.Errorf("parent reference lost")
	}
}
