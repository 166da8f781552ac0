package ws

import "testing"

func TestSerializeRoundTrip(t *testing.T) {
	data, err := Serialize(&MessageTyping{ServerID: 4, Typing: true})
	if err != nil {
		t.Fatalf("Serialize error = %v", err)
	}

	msg, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize error = %v", err)
	}
	typing, ok := msg.(*MessageTyping)
	if !ok {
		t.Fatalf("decoded %T, want *MessageTyping", msg)
	}
	if typing.ServerID != 4 || !typing.Typing {
		t.Errorf("decoded payload = %+v", typing)
	}
}

func TestDeserialize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "ping without payload", raw: `{"type":"ping"}`, want: "ping"},
		{name: "read with payload", raw: `{"type":"read","payload":{"server_id":1,"last_read_message_id":9}}`, want: "read"},
		{name: "unknown type", raw: `{"type":"presence"}`, wantErr: true},
		{name: "malformed frame", raw: `{"type":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Deserialize([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Deserialize(%q) succeeded, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("Deserialize error = %v", err)
			}
			if msg.GetType() != tt.want {
				t.Errorf("type = %q, want %q", msg.GetType(), tt.want)
			}
		})
	}
}

func TestCreateMessageUnknownType(t *testing.T) {
	if _, err := CreateMessage("nope", typeRegistry); err == nil {
		t.Error("CreateMessage accepted an unregistered type")
	}
}
