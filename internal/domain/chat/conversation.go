package chat

import (
	"fmt"
	"strings"
	"time"
)

// Role is the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSystem:
		return RoleSystem, nil
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

type Turn struct {
	Role      Role      `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

func NewTurn(role Role, content string, at time.Time) Turn {
	return Turn{Role: role, Content: content, Timestamp: at.UTC()}
}

// Metadata is captured from the first request of a session and attached when
// the conversation record is created.
type Metadata struct {
	UserID    string `json:"user_id,omitempty" bson:"user_id,omitempty"`
	UserAgent string `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	IPAddress string `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
}

type Conversation struct {
	SessionID string    `json:"session_id" bson:"session_id"`
	Turns     []Turn    `json:"turns" bson:"turns"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	Metadata  `bson:",inline"`
}

// LastTurn returns the newest turn, if any.
func (c *Conversation) LastTurn() (Turn, bool) {
	if c == nil || len(c.Turns) == 0 {
		return Turn{}, false
	}
	return c.Turns[len(c.Turns)-1], true
}
