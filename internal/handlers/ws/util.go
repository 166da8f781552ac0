package ws

import (
	"encoding/json"

	"github.com/gofiber/websocket/v2"
)

// Serialize wraps a message in the wire envelope, {"type": ..., "payload": ...}.
func Serialize(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedMessage{Type: msg.GetType(), Payload: payload})
}

// Deserialize unwraps a wire envelope into its registered message type.
// A missing payload is valid for types without fields (ping, pong).
func Deserialize(raw []byte) (Message, error) {
	var envelope SerializedMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	msg, err := CreateMessage(envelope.Type, typeRegistry)
	if err != nil {
		return nil, err
	}
	if len(envelope.Payload) > 0 {
		if err := json.Unmarshal(envelope.Payload, msg); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// Reply serializes a message and writes it back on the caller's connection.
func Reply(conn *websocket.Conn, msg Message) error {
	data, err := Serialize(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
