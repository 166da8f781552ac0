package repository

import (
	"errors"
	"time"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/apperr"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"gorm.io/gorm"
)

type InviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) Create(link *models.ServerInviteLink) error {
	return r.db.Create(link).Error
}

func (r *InviteRepository) FindByID(id uint) (*models.ServerInviteLink, error) {
	var link models.ServerInviteLink
	err := r.db.First(&link, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *InviteRepository) FindByToken(token string) (*models.ServerInviteLink, error) {
	var link models.ServerInviteLink
	err := r.db.Where("token = ?", token).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *InviteRepository) IncrementUse(id uint) error {
	return r.db.Model(&models.ServerInviteLink{}).Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
}

func (r *InviteRepository) Revoke(id uint, revokedAt time.Time) error {
	return r.db.Model(&models.ServerInviteLink{}).Where("id = ?", id).
		UpdateColumn("revoked_at", revokedAt).Error
}
