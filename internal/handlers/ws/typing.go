package ws

// MessageTyping signals that a user started or stopped typing in a server
// channel. It is ephemeral and fans out to online members only.
type MessageTyping struct {
	ServerID uint `json:"server_id"`
	Typing   bool `json:"typing"`
}

func (msg *MessageTyping) GetType() string {
	return "typing"
}

func (msg *MessageTyping) Process(ctx *MessageContext) error {
	isMember, err := ctx.ServerService.IsMember(msg.ServerID, ctx.UserID)
	if err != nil || !isMember {
		return err
	}

	audience, err := serverAudience(ctx, msg.ServerID)
	if err != nil {
		return err
	}

	ctx.Hub.BroadcastToUsers(audience, map[string]interface{}{
		"type":      "typing",
		"server_id": msg.ServerID,
		"user_id":   ctx.UserID,
		"typing":    msg.Typing,
	})
	return nil
}
