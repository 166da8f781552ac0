package repository

import (
	"errors"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/apperr"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/moderation"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.ServerMessage) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.ServerMessage, error) {
	var message models.ServerMessage
	if err := r.db.Preload("Author").First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindByClientID(clientID string, authorID uint) (*models.ServerMessage, error) {
	var message models.ServerMessage
	err := r.db.Preload("Author").
		Where("client_id = ? AND author_id = ?", clientID, authorID).
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

// FindServerMessages pages id-descending from the cursor and returns the
// page in chronological order.
func (r *MessageRepository) FindServerMessages(serverID uint, cursor uint, limit int) ([]models.ServerMessage, error) {
	var messages []models.ServerMessage
	q := r.db.Preload("Author").Where("server_id = ?", serverID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	err := q.Order("id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) LatestMessageID(serverID uint) (uint, error) {
	var maxID uint
	err := r.db.Model(&models.ServerMessage{}).
		Where("server_id = ?", serverID).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	return maxID, err
}

// txRoleLookup reads membership rows through the transaction that will
// perform the delete, so the decision and the destructive write share one
// consistency scope.
type txRoleLookup struct {
	tx *gorm.DB
}

func (l txRoleLookup) MemberRole(serverID, userID uint) (models.ServerRole, bool, error) {
	return memberRole(l.tx, serverID, userID)
}

// DeleteModerated loads the message, runs the moderation decision against
// directory state read inside the same transaction, and deletes only on
// Allow. Re-checking inside the transaction closes the window where a
// requester's role is revoked between an earlier lookup and the write.
func (r *MessageRepository) DeleteModerated(messageID uint, actor moderation.Actor) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var message models.ServerMessage
		if err := tx.First(&message, messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}

		decision, err := moderation.Decide(actor, &message, txRoleLookup{tx: tx})
		if err != nil {
			return err
		}
		if !decision.Allowed() {
			return apperr.ErrForbidden
		}

		return tx.Delete(&message).Error
	})
}
