package models

import (
	"time"
)

// ServerReadState tracks per-member read progress in a server.
// last_read_message_id is monotonic and only ever moves forward.
type ServerReadState struct {
	ServerID          uint      `gorm:"primaryKey" json:"server_id"`
	UserID            uint      `gorm:"primaryKey" json:"user_id"`
	LastReadMessageID uint      `gorm:"not null;default:0" json:"last_read_message_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
