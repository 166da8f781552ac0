package ws

// MessagePing is an application-level keepalive for clients that cannot
// observe protocol ping frames. The pong echoes straight back on the
// sender's connection; nothing fans out.
type MessagePing struct{}

func (msg *MessagePing) GetType() string {
	return "ping"
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	return Reply(ctx.Conn, &MessagePong{})
}

// MessagePong acknowledges a keepalive. Receiving one requires no action;
// connection liveness is tracked by the hub's protocol-level pong handler.
type MessagePong struct{}

func (msg *MessagePong) GetType() string {
	return "pong"
}

func (msg *MessagePong) Process(ctx *MessageContext) error {
	return nil
}
