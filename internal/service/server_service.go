package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/apperr"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/cache"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/repository"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/validation"
)

// ServerService owns the server lifecycle and the membership directory:
// creation, join paths, role updates and removals, all under the
// exactly-one-owner invariant.
type ServerService struct {
	serverRepo    repository.ServerRepositoryInterface
	readStateRepo repository.ReadStateRepositoryInterface
	inviteRepo    repository.InviteRepositoryInterface
	serverCache   *cache.ServerCache
}

func NewServerService(
	serverRepo repository.ServerRepositoryInterface,
	readStateRepo repository.ReadStateRepositoryInterface,
	inviteRepo repository.InviteRepositoryInterface,
	serverCache *cache.ServerCache,
) *ServerService {
	return &ServerService{
		serverRepo:    serverRepo,
		readStateRepo: readStateRepo,
		inviteRepo:    inviteRepo,
		serverCache:   serverCache,
	}
}

func (s *ServerService) CreateServer(name, description string, ownerID uint, isPublic bool) (*models.Server, error) {
	name = validation.TrimAndLimit(name, validation.MaxServerNameLength)
	if !validation.ValidateServerName(name) {
		return nil, errors.New("invalid server name")
	}
	description = validation.TrimAndLimit(description, validation.MaxServerDescriptionLength)

	server := &models.Server{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		IsPublic:    isPublic,
	}

	// Server row and owner membership commit together.
	if err := s.serverRepo.CreateWithOwner(server); err != nil {
		return nil, err
	}

	if s.readStateRepo != nil {
		_ = s.readStateRepo.EnsureForMember(server.ID, ownerID)
	}

	return s.serverRepo.FindByID(server.ID)
}

func (s *ServerService) GetServer(serverID uint) (*models.Server, error) {
	return s.serverRepo.FindByID(serverID)
}

func (s *ServerService) SearchPublicServers(query string, limit int) ([]models.Server, error) {
	return s.serverRepo.SearchPublic(query, limit)
}

// JoinServer is the direct join path, open only for public servers.
// Private servers report NotFound here so their existence leaks nothing;
// invites are their only entry.
func (s *ServerService) JoinServer(serverID, userID uint) error {
	server, err := s.serverRepo.FindByID(serverID)
	if err != nil {
		return err
	}
	if !server.IsPublic {
		return apperr.ErrNotFound
	}

	if err := s.serverRepo.AddMember(serverID, userID, models.RoleMember); err != nil {
		return err
	}
	if s.readStateRepo != nil {
		_ = s.readStateRepo.EnsureForMember(serverID, userID)
	}
	_ = s.serverCache.InvalidateMemberCount(serverID)
	return nil
}

// LeaveServer is a voluntary exit. The owner cannot leave: a server must
// keep exactly one owner and ownership transfer is unsupported.
func (s *ServerService) LeaveServer(serverID, userID uint) error {
	role, isMember, err := s.serverRepo.MemberRole(serverID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.ErrNotFound
	}
	if role == models.RoleOwner {
		return apperr.ErrForbidden
	}

	if err := s.serverRepo.RemoveMember(serverID, userID); err != nil {
		return err
	}
	if s.readStateRepo != nil {
		_ = s.readStateRepo.DeleteForMember(serverID, userID)
	}
	_ = s.serverCache.InvalidateMemberCount(serverID)
	return nil
}

// SetMemberRole changes a member's role. Only the owner may do this, the
// owner's own role is immutable, and the owner role is never assignable.
func (s *ServerService) SetMemberRole(serverID, targetUserID uint, newRole models.ServerRole, requesterID uint) error {
	if !newRole.Valid() || newRole == models.RoleOwner {
		return apperr.ErrForbidden
	}

	server, err := s.serverRepo.FindByID(serverID)
	if err != nil {
		return err
	}
	if server.OwnerID != requesterID {
		return apperr.ErrForbidden
	}
	if targetUserID == server.OwnerID {
		return apperr.ErrForbidden
	}

	// The repository guard excludes the owner row as well, closing the
	// window against a concurrent ownership check.
	return s.serverRepo.UpdateMemberRole(serverID, targetUserID, newRole)
}

// RemoveMember kicks a member. Owner-only; the owner can never be removed,
// including by themselves.
func (s *ServerService) RemoveMember(serverID, targetUserID, requesterID uint) error {
	server, err := s.serverRepo.FindByID(serverID)
	if err != nil {
		return err
	}
	if server.OwnerID != requesterID {
		return apperr.ErrForbidden
	}
	if targetUserID == server.OwnerID {
		return apperr.ErrForbidden
	}

	if err := s.serverRepo.RemoveMember(serverID, targetUserID); err != nil {
		return err
	}
	if s.readStateRepo != nil {
		_ = s.readStateRepo.DeleteForMember(serverID, targetUserID)
	}
	_ = s.serverCache.InvalidateMemberCount(serverID)
	return nil
}

// DeleteServer tears a server down with all memberships, messages, read
// states and invites. Owner-only; platform admins may also do it.
func (s *ServerService) DeleteServer(serverID, requesterID uint, platformAdmin bool) error {
	server, err := s.serverRepo.FindByID(serverID)
	if err != nil {
		return err
	}
	if server.OwnerID != requesterID && !platformAdmin {
		return apperr.ErrForbidden
	}

	if err := s.serverRepo.Delete(serverID); err != nil {
		return err
	}
	_ = s.serverCache.InvalidateServer(serverID)
	return nil
}

func (s *ServerService) GetMembers(serverID uint) ([]models.ServerMember, error) {
	if _, err := s.serverRepo.FindByID(serverID); err != nil {
		return nil, err
	}
	return s.serverRepo.GetMembers(serverID)
}

// MemberCount serves the cached count when present and refreshes it from
// the directory otherwise.
func (s *ServerService) MemberCount(serverID uint) (int64, error) {
	if count, ok := s.serverCache.GetMemberCount(serverID); ok {
		return count, nil
	}
	count, err := s.serverRepo.CountMembers(serverID)
	if err != nil {
		return 0, err
	}
	_ = s.serverCache.SetMemberCount(serverID, count)
	return count, nil
}

func (s *ServerService) GetUserServers(userID uint) ([]models.Server, error) {
	return s.serverRepo.GetUserServers(userID)
}

func (s *ServerService) IsMember(serverID, userID uint) (bool, error) {
	return s.serverRepo.IsMember(serverID, userID)
}

func (s *ServerService) MemberRole(serverID, userID uint) (models.ServerRole, bool, error) {
	return s.serverRepo.MemberRole(serverID, userID)
}

// CreateInviteLink issues an invite token. Owners and moderators may
// invite.
func (s *ServerService) CreateInviteLink(serverID, creatorID uint, singleUse bool, expiresAt *time.Time) (*models.ServerInviteLink, error) {
	if s.inviteRepo == nil {
		return nil, errors.New("invite repository not configured")
	}
	if _, err := s.serverRepo.FindByID(serverID); err != nil {
		return nil, err
	}

	role, isMember, err := s.serverRepo.MemberRole(serverID, creatorID)
	if err != nil {
		return nil, err
	}
	if !isMember || !role.AtLeast(models.RoleModerator) {
		return nil, apperr.ErrForbidden
	}

	var maxUses *int
	if singleUse {
		v := 1
		maxUses = &v
	}

	link := &models.ServerInviteLink{
		ServerID:  serverID,
		Token:     generateInviteToken(),
		CreatedBy: creatorID,
		ExpiresAt: expiresAt,
		MaxUses:   maxUses,
	}

	if err := s.inviteRepo.Create(link); err != nil {
		return nil, err
	}
	return link, nil
}

// RevokeInviteLink retires an invite so its token stops resolving.
// Owners and moderators may revoke, matching who may issue.
func (s *ServerService) RevokeInviteLink(serverID, linkID, requesterID uint) error {
	if s.inviteRepo == nil {
		return errors.New("invite repository not configured")
	}
	if _, err := s.serverRepo.FindByID(serverID); err != nil {
		return err
	}

	role, isMember, err := s.serverRepo.MemberRole(serverID, requesterID)
	if err != nil {
		return err
	}
	if !isMember || !role.AtLeast(models.RoleModerator) {
		return apperr.ErrForbidden
	}

	link, err := s.inviteRepo.FindByID(linkID)
	if err != nil {
		return err
	}
	if link.ServerID != serverID {
		return apperr.ErrNotFound
	}
	return s.inviteRepo.Revoke(link.ID, time.Now())
}

// JoinByInvite consumes an invite token; this is the only join path into
// private servers. Duplicate membership still reports Conflict.
func (s *ServerService) JoinByInvite(token string, userID uint) (*models.Server, error) {
	if s.inviteRepo == nil {
		return nil, errors.New("invite repository not configured")
	}
	link, err := s.inviteRepo.FindByToken(token)
	if err != nil {
		return nil, err
	}
	if !link.Usable(time.Now()) {
		return nil, apperr.ErrNotFound
	}

	server, err := s.serverRepo.FindByID(link.ServerID)
	if err != nil {
		return nil, err
	}

	if err := s.serverRepo.AddMember(server.ID, userID, models.RoleMember); err != nil {
		return nil, err
	}
	if s.readStateRepo != nil {
		_ = s.readStateRepo.EnsureForMember(server.ID, userID)
	}
	if err := s.inviteRepo.IncrementUse(link.ID); err != nil {
		return nil, err
	}
	_ = s.serverCache.InvalidateMemberCount(server.ID)
	return server, nil
}

// GetInvitePreview resolves a token to its server without joining.
func (s *ServerService) GetInvitePreview(token string) (*models.ServerInviteLink, *models.Server, error) {
	if s.inviteRepo == nil {
		return nil, nil, errors.New("invite repository not configured")
	}
	link, err := s.inviteRepo.FindByToken(token)
	if err != nil {
		return nil, nil, err
	}
	if !link.Usable(time.Now()) {
		return nil, nil, apperr.ErrNotFound
	}

	server, err := s.serverRepo.FindByID(link.ServerID)
	if err != nil {
		return nil, nil, err
	}
	return link, server, nil
}

func (s *ServerService) UpsertReadStateMonotonic(serverID, userID, lastReadMessageID uint) error {
	if s.readStateRepo == nil {
		return nil
	}
	return s.readStateRepo.UpsertMonotonic(serverID, userID, lastReadMessageID)
}

func (s *ServerService) GetReadState(serverID, userID uint) (*models.ServerReadState, error) {
	if s.readStateRepo == nil {
		return &models.ServerReadState{ServerID: serverID, UserID: userID}, nil
	}
	state, err := s.readStateRepo.Get(serverID, userID)
	if err != nil {
		return &models.ServerReadState{ServerID: serverID, UserID: userID}, nil
	}
	return state, nil
}

func (s *ServerService) ListReadStates(serverID uint) ([]models.ServerReadState, error) {
	if s.readStateRepo == nil {
		return []models.ServerReadState{}, nil
	}
	return s.readStateRepo.ListByServer(serverID)
}

func generateInviteToken() string {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().String()))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
