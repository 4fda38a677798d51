package relay

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/chat-relay/relay-service/internal/domain"
)

// Inbound frame types.
const (
	TypeRegister = "register"
	TypeMessage  = "message"
)

// Outbound frame types.
const (
	TypeRegisterSuccess = "register-success"
	TypeMessageSent     = "message-sent" // ack to the sender only
	TypeNewMessage      = "new-message"  // fanout to the rest of the room
	TypeError           = "error"
)

// Frame is the outbound envelope. Fields are populated per type:
// register-success carries roomId+userId, message-sent/new-message carry
// chat, error carries message.
type Frame struct {
	Type    string              `json:"type"`
	RoomID  string              `json:"roomId,omitempty"`
	UserID  int64               `json:"userId,omitempty"`
	Chat    *domain.ChatMessage `json:"chat,omitempty"`
	Message string              `json:"message,omitempty"`
}

type envelope struct {
	Type string `json:"type"`
}

type registerRequest struct {
	RoomID string  `json:"roomId"`
	UserID FlexInt `json:"userId"`
}

// The message frame spells the user field "user_id" while register spells it
// "userId". Historical wire format, kept as-is.
type messageRequest struct {
	RoomID string  `json:"roomId"`
	UserID FlexInt `json:"user_id"`
	Text   string  `json:"text"`
}

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("numeric string expected: %q", raw)
		}
		*f = FlexInt(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}
