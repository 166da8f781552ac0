package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/handlers/ws"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/httpx"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/moderation"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/service"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/validation"
)

type MessageHandler struct {
	messageService *service.MessageService
	serverService  *service.ServerService
	hub            *ws.Hub
}

func NewMessageHandler(messageService *service.MessageService, serverService *service.ServerService, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		serverService:  serverService,
		hub:            hub,
	}
}

// notifyServer pushes an event to every connected member of a server.
func (h *MessageHandler) notifyServer(serverID uint, event map[string]interface{}) {
	if h.hub == nil {
		return
	}
	members, err := h.serverService.GetMembers(serverID)
	if err != nil {
		return
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	h.hub.BroadcastToUsers(ids, event)
}

func (h *MessageHandler) PostMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	var input service.PostMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.ServerID = serverID

	input.Content = validation.TrimAndLimit(input.Content, validation.MaxMessageLength())
	if input.Content == "" && input.MediaKey == "" {
		return httpx.BadRequest(c, "missing_content", "Content is required")
	}

	message, err := h.messageService.PostMessage(userID, input)
	if err != nil {
		return httpx.FromError(c, err, "post_message_failed")
	}

	h.notifyServer(serverID, ws.MessageCreatedEvent(message))

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	limit := 50
	if l := c.QueryInt("limit", 50); l > 0 && l <= 100 {
		limit = l
	}

	var cursor uint
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		c64, err := strconv.ParseUint(cursorStr, 10, 32)
		if err != nil {
			return httpx.BadRequest(c, "invalid_cursor", "Invalid cursor")
		}
		cursor = uint(c64)
	}

	messages, err := h.messageService.GetServerMessages(serverID, userID, cursor, limit)
	if err != nil {
		return httpx.FromError(c, err, "fetch_messages_failed")
	}

	responses := make([]interface{}, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}

	result := fiber.Map{
		"messages": responses,
		"count":    len(messages),
	}

	// Messages come back oldest-first; the first element is the cursor
	// for loading the previous page.
	if len(messages) > 0 {
		result["next_cursor"] = messages[0].ID
	}

	return c.JSON(result)
}

func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	messageID64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || messageID64 == 0 {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message ID")
	}

	actor := moderation.Actor{
		ID:            userID,
		PlatformAdmin: httpx.LocalBool(c, "platformAdmin"),
	}

	message, err := h.messageService.DeleteMessage(uint(messageID64), actor)
	if err != nil {
		return httpx.FromError(c, err, "delete_message_failed")
	}

	h.notifyServer(message.ServerID, ws.MessageDeletedEvent(message, userID))

	return c.JSON(fiber.Map{"message": "Message deleted"})
}

func (h *MessageHandler) GetLatestMessageID(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	isMember, err := h.serverService.IsMember(serverID, userID)
	if err != nil {
		return httpx.Internal(c, "fetch_latest_failed")
	}
	if !isMember {
		return httpx.Forbidden(c, "forbidden", "Not a member of this server")
	}

	latest, err := h.messageService.LatestMessageID(serverID)
	if err != nil {
		return httpx.Internal(c, "fetch_latest_failed")
	}

	return c.JSON(fiber.Map{"latest_message_id": latest})
}

type MarkReadRequest struct {
	LastReadMessageID uint `json:"last_read_message_id"`
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	var req MarkReadRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	isMember, err := h.serverService.IsMember(serverID, userID)
	if err != nil {
		return httpx.Internal(c, "mark_read_failed")
	}
	if !isMember {
		return httpx.Forbidden(c, "forbidden", "Not a member of this server")
	}

	if err := h.serverService.UpsertReadStateMonotonic(serverID, userID, req.LastReadMessageID); err != nil {
		return httpx.FromError(c, err, "mark_read_failed")
	}

	return c.JSON(fiber.Map{"message": "Read state updated"})
}

// ListReadStates returns every member's read position for a server.
// Restricted to platform admins.
func (h *MessageHandler) ListReadStates(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	states, err := h.serverService.ListReadStates(serverID)
	if err != nil {
		return httpx.FromError(c, err, "fetch_read_states_failed")
	}

	return c.JSON(fiber.Map{"read_states": states})
}

func (h *MessageHandler) GetReadState(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	state, err := h.serverService.GetReadState(serverID, userID)
	if err != nil {
		return httpx.FromError(c, err, "fetch_read_state_failed")
	}

	return c.JSON(state)
}
