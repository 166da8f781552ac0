package repository

import (
	"time"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/moderation"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	Update(user *models.User) error
	UpdateOnlineStatus(userID uint, isOnline bool) error
	SearchUsers(query string, limit int) ([]models.User, error)
}

// RefreshTokenRepositoryInterface defines the contract for refresh token repository operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	FindValidByHash(tokenHash string) (*models.RefreshToken, error)
	RevokeByHash(tokenHash string) error
}

// ServerRepositoryInterface defines the contract for server and membership
// directory operations. MemberRole satisfies moderation.RoleLookup so the
// decision engine always reads live directory state.
type ServerRepositoryInterface interface {
	CreateWithOwner(server *models.Server) error
	FindByID(id uint) (*models.Server, error)
	SearchPublic(query string, limit int) ([]models.Server, error)
	Delete(serverID uint) error
	AddMember(serverID, userID uint, role models.ServerRole) error
	RemoveMember(serverID, userID uint) error
	UpdateMemberRole(serverID, userID uint, role models.ServerRole) error
	GetMembers(serverID uint) ([]models.ServerMember, error)
	CountMembers(serverID uint) (int64, error)
	IsMember(serverID, userID uint) (bool, error)
	MemberRole(serverID, userID uint) (models.ServerRole, bool, error)
	GetUserServers(userID uint) ([]models.Server, error)
}

// MessageRepositoryInterface defines the contract for server message
// operations.
type MessageRepositoryInterface interface {
	Create(message *models.ServerMessage) error
	FindByID(id uint) (*models.ServerMessage, error)
	FindByClientID(clientID string, authorID uint) (*models.ServerMessage, error)
	FindServerMessages(serverID uint, cursor uint, limit int) ([]models.ServerMessage, error)
	LatestMessageID(serverID uint) (uint, error)
	DeleteModerated(messageID uint, actor moderation.Actor) error
}

// InviteRepositoryInterface defines the contract for server invite link operations
type InviteRepositoryInterface interface {
	Create(link *models.ServerInviteLink) error
	FindByID(id uint) (*models.ServerInviteLink, error)
	FindByToken(token string) (*models.ServerInviteLink, error)
	IncrementUse(id uint) error
	Revoke(id uint, revokedAt time.Time) error
}

// ReadStateRepositoryInterface defines the contract for per-member read
// progress operations
type ReadStateRepositoryInterface interface {
	EnsureForMember(serverID, userID uint) error
	DeleteForMember(serverID, userID uint) error
	UpsertMonotonic(serverID, userID uint, lastReadMessageID uint) error
	Get(serverID, userID uint) (*models.ServerReadState, error)
	ListByServer(serverID uint) ([]models.ServerReadState, error)
}
