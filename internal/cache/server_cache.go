package cache

import (
	"fmt"
	"strconv"
	"time"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// TTL constants for server-scoped cache entries. Roles are never cached:
// every moderation decision reads the membership directory live.
const (
	MessagePageTTL = 5 * time.Minute
	MemberCountTTL = 10 * time.Minute
)

// ServerCache holds per-server derived data: the latest message page and
// the member count shown on server cards.
type ServerCache struct {
	redis *RedisCache
}

// NewServerCache creates a new server cache
func NewServerCache(redis *RedisCache) *ServerCache {
	return &ServerCache{redis: redis}
}

func messagePageKey(serverID uint) string {
	return fmt.Sprintf("server:%d:messages", serverID)
}

func memberCountKey(serverID uint) string {
	return fmt.Sprintf("server:%d:members", serverID)
}

// GetMessagePage retrieves the cached first page of a server's messages
func (sc *ServerCache) GetMessagePage(serverID uint) ([]models.ServerMessage, bool) {
	if sc == nil || sc.redis == nil {
		return nil, false
	}
	data, err := sc.redis.Get(messagePageKey(serverID))
	if err != nil || data == nil {
		return nil, false
	}

	var messages []models.ServerMessage
	if err := msgpack.Unmarshal(data, &messages); err != nil {
		return nil, false
	}
	return messages, true
}

// SetMessagePage caches the first page of a server's messages
func (sc *ServerCache) SetMessagePage(serverID uint, messages []models.ServerMessage) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(messages)
	if err != nil {
		return err
	}
	return sc.redis.Set(messagePageKey(serverID), data, MessagePageTTL)
}

// InvalidateMessages drops the cached message page after a post or a
// moderated delete
func (sc *ServerCache) InvalidateMessages(serverID uint) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.Delete(messagePageKey(serverID))
}

// GetMemberCount retrieves the cached member count
func (sc *ServerCache) GetMemberCount(serverID uint) (int64, bool) {
	if sc == nil || sc.redis == nil {
		return 0, false
	}
	data, err := sc.redis.Get(memberCountKey(serverID))
	if err != nil || data == nil {
		return 0, false
	}
	count, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetMemberCount caches the member count
func (sc *ServerCache) SetMemberCount(serverID uint, count int64) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.Set(memberCountKey(serverID), []byte(strconv.FormatInt(count, 10)), MemberCountTTL)
}

// InvalidateMemberCount drops the count after join/leave/removal
func (sc *ServerCache) InvalidateMemberCount(serverID uint) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.Delete(memberCountKey(serverID))
}

// InvalidateServer drops everything cached for a server (used on server
// deletion)
func (sc *ServerCache) InvalidateServer(serverID uint) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.DeletePattern(fmt.Sprintf("server:%d:*", serverID))
}
