package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/handlers/ws"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/httpx"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/service"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/validation"
)

type ServerHandler struct {
	serverService *service.ServerService
	hub           *ws.Hub
}

func NewServerHandler(serverService *service.ServerService, hub *ws.Hub) *ServerHandler {
	return &ServerHandler{serverService: serverService, hub: hub}
}

// notifyMembers pushes a membership event to every connected member,
// including the subject of the event when they are still a member.
func (h *ServerHandler) notifyMembers(serverID uint, event map[string]interface{}) {
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

// serverIDParam parses the :id path segment. On failure it writes the 400
// response itself and reports ok=false.
func serverIDParam(c *fiber.Ctx) (uint, bool) {
	id64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id64 == 0 {
		_ = httpx.BadRequest(c, "invalid_server_id", "Invalid server ID")
		return 0, false
	}
	return uint(id64), true
}

type CreateServerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
}

func (h *ServerHandler) CreateServer(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req CreateServerRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if !validation.ValidateServerName(req.Name) {
		return httpx.BadRequest(c, "invalid_server_name", "Server name is required and must be at most 100 characters")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	server, err := h.serverService.CreateServer(req.Name, req.Description, userID, isPublic)
	if err != nil {
		return httpx.FromError(c, err, "create_server_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(server)
}

func (h *ServerHandler) GetMyServers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	servers, err := h.serverService.GetUserServers(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_servers_failed")
	}

	return c.JSON(fiber.Map{"servers": servers})
}

// SearchServers lists public servers matching an optional query.
func (h *ServerHandler) SearchServers(c *fiber.Ctx) error {
	limit := 20
	if l := c.QueryInt("limit", 20); l > 0 && l <= 50 {
		limit = l
	}

	servers, err := h.serverService.SearchPublicServers(c.Query("q"), limit)
	if err != nil {
		return httpx.Internal(c, "search_servers_failed")
	}

	return c.JSON(fiber.Map{"servers": servers})
}

func (h *ServerHandler) GetServer(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	server, err := h.serverService.GetServer(serverID)
	if err != nil {
		return httpx.FromError(c, err, "fetch_server_failed")
	}

	return c.JSON(server)
}

func (h *ServerHandler) JoinServer(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.serverService.JoinServer(serverID, userID); err != nil {
		return httpx.FromError(c, err, "join_server_failed")
	}
	h.notifyMembers(serverID, ws.MemberJoinedEvent(serverID, userID))

	return c.JSON(fiber.Map{"message": "Joined server"})
}

func (h *ServerHandler) LeaveServer(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.serverService.LeaveServer(serverID, userID); err != nil {
		return httpx.FromError(c, err, "leave_server_failed")
	}
	h.notifyMembers(serverID, ws.MemberLeftEvent(serverID, userID))

	return c.JSON(fiber.Map{"message": "Left server"})
}

func (h *ServerHandler) GetMembers(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	// The roster is visible to members only.
	isMember, err := h.serverService.IsMember(serverID, userID)
	if err != nil {
		return httpx.Internal(c, "fetch_members_failed")
	}
	if !isMember && !httpx.LocalBool(c, "platformAdmin") {
		return httpx.Forbidden(c, "forbidden", "Not a member of this server")
	}

	members, err := h.serverService.GetMembers(serverID)
	if err != nil {
		return httpx.FromError(c, err, "fetch_members_failed")
	}

	return c.JSON(fiber.Map{"members": members})
}

func (h *ServerHandler) GetMemberCount(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	count, err := h.serverService.MemberCount(serverID)
	if err != nil {
		return httpx.FromError(c, err, "fetch_member_count_failed")
	}

	return c.JSON(fiber.Map{"count": count})
}

type SetMemberRoleRequest struct {
	Role string `json:"role"`
}

func (h *ServerHandler) SetMemberRole(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	targetID64, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil || targetID64 == 0 {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user ID")
	}

	requesterID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req SetMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.serverService.SetMemberRole(serverID, uint(targetID64), models.ServerRole(req.Role), requesterID); err != nil {
		return httpx.FromError(c, err, "set_member_role_failed")
	}

	return c.JSON(fiber.Map{"message": "Role updated"})
}

func (h *ServerHandler) RemoveMember(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	targetID64, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil || targetID64 == 0 {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user ID")
	}

	requesterID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.serverService.RemoveMember(serverID, uint(targetID64), requesterID); err != nil {
		return httpx.FromError(c, err, "remove_member_failed")
	}
	h.notifyMembers(serverID, ws.MemberLeftEvent(serverID, uint(targetID64)))

	return c.JSON(fiber.Map{"message": "Member removed"})
}

func (h *ServerHandler) DeleteServer(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	requesterID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.serverService.DeleteServer(serverID, requesterID, httpx.LocalBool(c, "platformAdmin")); err != nil {
		return httpx.FromError(c, err, "delete_server_failed")
	}

	return c.JSON(fiber.Map{"message": "Server deleted"})
}

type CreateInviteRequest struct {
	SingleUse  bool `json:"single_use"`
	TTLMinutes int  `json:"ttl_minutes"`
}

func (h *ServerHandler) CreateInviteLink(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req CreateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	var expiresAt *time.Time
	if req.TTLMinutes > 0 {
		t := time.Now().Add(time.Duration(req.TTLMinutes) * time.Minute)
		expiresAt = &t
	}

	link, err := h.serverService.CreateInviteLink(serverID, userID, req.SingleUse, expiresAt)
	if err != nil {
		return httpx.FromError(c, err, "create_invite_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

func (h *ServerHandler) RevokeInviteLink(c *fiber.Ctx) error {
	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	linkID, err := strconv.ParseUint(c.Params("linkId"), 10, 32)
	if err != nil || linkID == 0 {
		return httpx.BadRequest(c, "invalid_link_id", "Invalid invite link ID")
	}

	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.serverService.RevokeInviteLink(serverID, uint(linkID), userID); err != nil {
		return httpx.FromError(c, err, "revoke_invite_failed")
	}

	return c.JSON(fiber.Map{"message": "Invite link revoked"})
}

func (h *ServerHandler) GetInvitePreview(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return httpx.BadRequest(c, "missing_token", "Invite token is required")
	}

	link, server, err := h.serverService.GetInvitePreview(token)
	if err != nil {
		return httpx.FromError(c, err, "invite_preview_failed")
	}

	return c.JSON(fiber.Map{
		"server":     server,
		"expires_at": link.ExpiresAt,
	})
}

func (h *ServerHandler) JoinByInvite(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return httpx.BadRequest(c, "missing_token", "Invite token is required")
	}

	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	server, err := h.serverService.JoinByInvite(token, userID)
	if err != nil {
		return httpx.FromError(c, err, "join_by_invite_failed")
	}
	h.notifyMembers(server.ID, ws.MemberJoinedEvent(server.ID, userID))

	return c.JSON(fiber.Map{
		"message": "Joined server",
		"server":  server,
	})
}
