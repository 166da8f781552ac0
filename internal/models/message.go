package models

import (
	"time"

	"gorm.io/gorm"
)

// ServerMessage is a message posted into a server channel. Ownership stays
// with the author for its whole life; deletion happens only through the
// moderation path.
type ServerMessage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// ClientID deduplicates writes from retrying clients.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_author;not null" json:"client_id"`

	ServerID uint   `gorm:"index;not null" json:"server_id"`
	Server   Server `gorm:"foreignKey:ServerID" json:"-"`

	AuthorID uint `gorm:"not null;uniqueIndex:idx_client_author;index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author"`

	Content string `gorm:"type:text;not null" json:"content"`

	// MediaKey references an uploaded attachment in object storage.
	MediaKey string `gorm:"size:255" json:"media_key,omitempty"`

	// ParentID links a threaded reply to the message it answers; the
	// parent always lives in the same server.
	ParentID *uint `gorm:"index" json:"parent_id"`
}

type ServerMessageResponse struct {
	ID        uint         `json:"id"`
	ClientID  string       `json:"client_id"`
	ServerID  uint         `json:"server_id"`
	AuthorID  uint         `json:"author_id"`
	Author    UserResponse `json:"author"`
	Content   string       `json:"content"`
	MediaKey  string       `json:"media_key,omitempty"`
	ParentID  *uint        `json:"parent_id"`
	CreatedAt time.Time    `json:"created_at"`
}

func (m *ServerMessage) ToResponse() ServerMessageResponse {
	return ServerMessageResponse{
		ID:        m.ID,
		ClientID:  m.ClientID,
		ServerID:  m.ServerID,
		AuthorID:  m.AuthorID,
		Author:    m.Author.ToResponse(),
		Content:   m.Content,
		MediaKey:  m.MediaKey,
		ParentID:  m.ParentID,
		CreatedAt: m.CreatedAt,
	}
}
