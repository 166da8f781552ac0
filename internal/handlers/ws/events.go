package ws

import "github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"

// Server-side push events delivered to server members.

func MessageCreatedEvent(msg *models.ServerMessage) map[string]interface{} {
	return map[string]interface{}{
		"type":      "message_created",
		"server_id": msg.ServerID,
		"message":   msg.ToResponse(),
	}
}

func MessageDeletedEvent(msg *models.ServerMessage, deletedBy uint) map[string]interface{} {
	return map[string]interface{}{
		"type":       "message_deleted",
		"server_id":  msg.ServerID,
		"message_id": msg.ID,
		"deleted_by": deletedBy,
	}
}

func MemberJoinedEvent(serverID, userID uint) map[string]interface{} {
	return map[string]interface{}{
		"type":      "member_joined",
		"server_id": serverID,
		"user_id":   userID,
	}
}

func MemberLeftEvent(serverID, userID uint) map[string]interface{} {
	return map[string]interface{}{
		"type":      "member_left",
		"server_id": serverID,
		"user_id":   userID,
	}
}
