package repository

import (
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReadStateRepository struct {
	db *gorm.DB
}

func NewReadStateRepository(db *gorm.DB) *ReadStateRepository {
	return &ReadStateRepository{db: db}
}

func (r *ReadStateRepository) EnsureForMember(serverID, userID uint) error {
	state := models.ServerReadState{ServerID: serverID, UserID: userID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&state).Error
}

func (r *ReadStateRepository) DeleteForMember(serverID, userID uint) error {
	return r.db.Where("server_id = ? AND user_id = ?", serverID, userID).
		Delete(&models.ServerReadState{}).Error
}

// UpsertMonotonic advances last_read_message_id without ever letting it
// regress, even when acknowledgements arrive out of order.
func (r *ReadStateRepository) UpsertMonotonic(serverID, userID uint, lastReadMessageID uint) error {
	state := models.ServerReadState{
		ServerID:          serverID,
		UserID:            userID,
		LastReadMessageID: lastReadMessageID,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "server_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_read_message_id": gorm.Expr(
				"CASE WHEN server_read_states.last_read_message_id > excluded.last_read_message_id " +
					"THEN server_read_states.last_read_message_id ELSE excluded.last_read_message_id END"),
		}),
	}).Create(&state).Error
}

func (r *ReadStateRepository) Get(serverID, userID uint) (*models.ServerReadState, error) {
	var state models.ServerReadState
	err := r.db.Where("server_id = ? AND user_id = ?", serverID, userID).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *ReadStateRepository) ListByServer(serverID uint) ([]models.ServerReadState, error) {
	var states []models.ServerReadState
	err := r.db.Where("server_id = ?", serverID).Find(&states).Error
	return states, err
}
