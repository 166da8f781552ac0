package ws

// MessageRead advances the sender's read position in a server channel.
// The stored position only moves forward.
type MessageRead struct {
	ServerID          uint `json:"server_id"`
	LastReadMessageID uint `json:"last_read_message_id"`
}

func (msg *MessageRead) GetType() string {
	return "read"
}

func (msg *MessageRead) Process(ctx *MessageContext) error {
	isMember, err := ctx.ServerService.IsMember(msg.ServerID, ctx.UserID)
	if err != nil || !isMember {
		return err
	}

	return ctx.ServerService.UpsertReadStateMonotonic(msg.ServerID, ctx.UserID, msg.LastReadMessageID)
}
