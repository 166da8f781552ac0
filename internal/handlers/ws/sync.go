package ws

// MessageSync asks for the newest message ID in a server channel so the
// client can decide whether to fetch history over HTTP.
type MessageSync struct {
	ServerID uint `json:"server_id"`
}

func (msg *MessageSync) GetType() string {
	return "sync"
}

func (msg *MessageSync) Process(ctx *MessageContext) error {
	isMember, err := ctx.ServerService.IsMember(msg.ServerID, ctx.UserID)
	if err != nil {
		return err
	}
	if !isMember {
		return SendError(ctx.Conn, "forbidden", "Not a member of this server", "")
	}

	latest, err := ctx.MessageService.LatestMessageID(msg.ServerID)
	if err != nil {
		return err
	}

	return ctx.Conn.WriteJSON(map[string]interface{}{
		"type":              "sync",
		"server_id":         msg.ServerID,
		"latest_message_id": latest,
	})
}
