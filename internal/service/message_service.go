package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/apperr"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/cache"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/moderation"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/repository"
)

type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
	serverRepo  repository.ServerRepositoryInterface
	serverCache *cache.ServerCache
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	serverRepo repository.ServerRepositoryInterface,
	serverCache *cache.ServerCache,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		serverRepo:  serverRepo,
		serverCache: serverCache,
	}
}

type PostMessageInput struct {
	ServerID uint   `json:"server_id"`
	ClientID string `json:"client_id"`
	Content  string `json:"content"`
	MediaKey string `json:"media_key"`
	ParentID *uint  `json:"parent_id"`
}

// PostMessage writes a message into a server channel. Posting requires
// membership; threaded replies must answer a message from the same server.
func (s *MessageService) PostMessage(authorID uint, input PostMessageInput) (*models.ServerMessage, error) {
	if _, err := s.serverRepo.FindByID(input.ServerID); err != nil {
		return nil, err
	}

	isMember, err := s.serverRepo.IsMember(input.ServerID, authorID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.ErrForbidden
	}

	if input.ParentID != nil {
		parent, err := s.messageRepo.FindByID(*input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ServerID != input.ServerID {
			return nil, errors.New("parent message belongs to another server")
		}
	}

	// Retried posts with the same client id return the original write.
	// Clients that don't send one get a generated id so the per-author
	// uniqueness of client ids never collides on the empty string.
	if input.ClientID == "" {
		input.ClientID = uuid.NewString()
	} else {
		existing, err := s.messageRepo.FindByClientID(input.ClientID, authorID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}

	message := &models.ServerMessage{
		ClientID: input.ClientID,
		ServerID: input.ServerID,
		AuthorID: authorID,
		Content:  input.Content,
		MediaKey: input.MediaKey,
		ParentID: input.ParentID,
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	_ = s.serverCache.InvalidateMessages(input.ServerID)

	return s.messageRepo.FindByID(message.ID)
}

// GetServerMessages pages a server's history for a member. The first page
// is served from cache when possible; cursor pages always hit the store.
func (s *MessageService) GetServerMessages(serverID, requesterID uint, cursor uint, limit int) ([]models.ServerMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if _, err := s.serverRepo.FindByID(serverID); err != nil {
		return nil, err
	}
	isMember, err := s.serverRepo.IsMember(serverID, requesterID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.ErrForbidden
	}

	if cursor == 0 {
		if cached, ok := s.serverCache.GetMessagePage(serverID); ok {
			if len(cached) > limit {
				cached = cached[len(cached)-limit:]
			}
			return cached, nil
		}
	}

	messages, err := s.messageRepo.FindServerMessages(serverID, cursor, limit)
	if err != nil {
		return nil, err
	}
	if cursor == 0 && len(messages) > 0 {
		_ = s.serverCache.SetMessagePage(serverID, messages)
	}
	return messages, nil
}

func (s *MessageService) GetMessage(messageID uint) (*models.ServerMessage, error) {
	return s.messageRepo.FindByID(messageID)
}

// DeleteMessage runs the moderation decision and the delete in one store
// transaction; roles are read live at decision time. It returns the
// deleted message so callers can fan the event out.
func (s *MessageService) DeleteMessage(messageID uint, actor moderation.Actor) (*models.ServerMessage, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.DeleteModerated(messageID, actor); err != nil {
		return nil, err
	}

	_ = s.serverCache.InvalidateMessages(message.ServerID)
	return message, nil
}

func (s *MessageService) LatestMessageID(serverID uint) (uint, error) {
	return s.messageRepo.LatestMessageID(serverID)
}
