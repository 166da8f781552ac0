package repository

import (
	"errors"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/apperr"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"gorm.io/gorm"
)

type ServerRepository struct {
	db *gorm.DB
}

func NewServerRepository(db *gorm.DB) *ServerRepository {
	return &ServerRepository{db: db}
}

// CreateWithOwner inserts the server row and the owner's membership in one
// transaction. A server without an owner membership must never be
// observable, so both writes commit together or not at all.
func (r *ServerRepository) CreateWithOwner(server *models.Server) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(server).Error; err != nil {
			return err
		}
		member := models.ServerMember{
			ServerID: server.ID,
			UserID:   server.OwnerID,
			Role:     models.RoleOwner,
		}
		return tx.Create(&member).Error
	})
}

func (r *ServerRepository) FindByID(id uint) (*models.Server, error) {
	var server models.Server
	if err := r.db.Preload("Owner").First(&server, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &server, nil
}

func (r *ServerRepository) SearchPublic(query string, limit int) ([]models.Server, error) {
	var servers []models.Server
	q := "%" + query + "%"
	err := r.db.Where("is_public = ? AND LOWER(name) LIKE LOWER(?)", true, q).
		Limit(limit).
		Preload("Owner").
		Find(&servers).Error
	return servers, err
}

// Delete removes the server and cascades over memberships, messages, read
// states and invite links so no orphaned rows survive.
func (r *ServerRepository) Delete(serverID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("server_id = ?", serverID).Delete(&models.ServerMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", serverID).Delete(&models.ServerReadState{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", serverID).Delete(&models.ServerInviteLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", serverID).Delete(&models.ServerMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Server{}, serverID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
}

// AddMember inserts a membership row; a duplicate (server, user) pair is
// reported as Conflict whether caught by the pre-check or by the composite
// primary key under a racing join.
func (r *ServerRepository) AddMember(serverID, userID uint, role models.ServerRole) error {
	var count int64
	if err := r.db.Model(&models.ServerMember{}).
		Where("server_id = ? AND user_id = ?", serverID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.ErrConflict
	}

	member := models.ServerMember{
		ServerID: serverID,
		UserID:   userID,
		Role:     role,
	}
	err := r.db.Create(&member).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrConflict
	}
	return err
}

// RemoveMember deletes a membership row. The owner row is excluded in the
// WHERE clause so a racing role read can never let the owner slip out.
func (r *ServerRepository) RemoveMember(serverID, userID uint) error {
	res := r.db.Where("server_id = ? AND user_id = ? AND role <> ?", serverID, userID, models.RoleOwner).
		Delete(&models.ServerMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateMemberRole is a conditional update: the owner row never matches,
// which keeps the owner's role immutable even under concurrent requests.
func (r *ServerRepository) UpdateMemberRole(serverID, userID uint, role models.ServerRole) error {
	res := r.db.Model(&models.ServerMember{}).
		Where("server_id = ? AND user_id = ? AND role <> ?", serverID, userID, models.RoleOwner).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ServerRepository) GetMembers(serverID uint) ([]models.ServerMember, error) {
	var members []models.ServerMember
	err := r.db.Where("server_id = ?", serverID).
		Preload("User").
		Find(&members).Error
	return members, err
}

func (r *ServerRepository) CountMembers(serverID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ServerMember{}).
		Where("server_id = ?", serverID).
		Count(&count).Error
	return count, err
}

func (r *ServerRepository) IsMember(serverID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ServerMember{}).
		Where("server_id = ? AND user_id = ?", serverID, userID).
		Count(&count).Error
	return count > 0, err
}

// MemberRole reads the live role; absence is reported through the found
// flag rather than an error so callers never confuse "not a member" with a
// store failure.
func (r *ServerRepository) MemberRole(serverID, userID uint) (models.ServerRole, bool, error) {
	return memberRole(r.db, serverID, userID)
}

func memberRole(db *gorm.DB, serverID, userID uint) (models.ServerRole, bool, error) {
	var member models.ServerMember
	err := db.Where("server_id = ? AND user_id = ?", serverID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return member.Role, true, nil
}

func (r *ServerRepository) GetUserServers(userID uint) ([]models.Server, error) {
	var servers []models.Server
	err := r.db.Joins("JOIN server_members ON server_members.server_id = servers.id").
		Where("server_members.user_id = ?", userID).
		Preload("Owner").
		Find(&servers).Error
	return servers, err
}
