package models

import (
	"time"

	"gorm.io/gorm"
)

type ServerRole string

const (
	RoleOwner     ServerRole = "owner"
	RoleModerator ServerRole = "moderator"
	RoleMember    ServerRole = "member"
)

// Rank places roles on a total order (member < moderator < owner) so
// permission checks compare levels instead of chaining string equality.
func (r ServerRole) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleModerator:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

func (r ServerRole) Valid() bool {
	return r == RoleOwner || r == RoleModerator || r == RoleMember
}

// AtLeast reports whether r carries at least the privileges of other.
func (r ServerRole) AtLeast(other ServerRole) bool {
	return r.Rank() >= other.Rank()
}

type Server struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Icon        string `json:"icon"`
	IsPublic    bool   `gorm:"not null;default:false" json:"is_public"`

	// OwnerID is set at creation and never reassigned; ownership transfer
	// is unsupported.
	OwnerID uint `gorm:"not null" json:"owner_id"`

	Owner   User           `gorm:"foreignKey:OwnerID" json:"owner"`
	Members []ServerMember `gorm:"foreignKey:ServerID" json:"members,omitempty"`
}

type ServerMember struct {
	ServerID uint       `gorm:"primaryKey" json:"server_id"`
	UserID   uint       `gorm:"primaryKey" json:"user_id"`
	Role     ServerRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt time.Time  `gorm:"autoCreateTime" json:"joined_at"`

	User   User   `gorm:"foreignKey:UserID" json:"user"`
	Server Server `gorm:"foreignKey:ServerID" json:"-"`
}

// ServerInviteLink grants entry to a server, and is the only join path
// into private servers. Expiry, max-use and revocation are all optional.
type ServerInviteLink struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ServerID  uint       `gorm:"index;not null" json:"server_id"`
	Token     string     `gorm:"uniqueIndex;size:64;not null" json:"token"`
	CreatedBy uint       `gorm:"not null" json:"created_by"`
	ExpiresAt *time.Time `json:"expires_at"`
	MaxUses   *int       `json:"max_uses"`
	UsedCount int        `gorm:"not null;default:0" json:"used_count"`
	RevokedAt *time.Time `json:"-"`
}

func (l *ServerInviteLink) Usable(now time.Time) bool {
	if l.RevokedAt != nil {
		return false
	}
	if l.ExpiresAt != nil && now.After(*l.ExpiresAt) {
		return false
	}
	if l.MaxUses != nil && l.UsedCount >= *l.MaxUses {
		return false
	}
	return true
}
