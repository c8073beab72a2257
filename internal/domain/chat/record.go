package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConversationRecord is the relational row for a Conversation. Turns are
// stored as one JSON column so a save replaces the whole history at once.
type ConversationRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string         `gorm:"column:session_id;not null;uniqueIndex" json:"session_id"`
	Turns     datatypes.JSON `gorm:"column:turns;not null" json:"turns"`
	Title     string         `gorm:"column:title" json:"title"`
	UserID    *string        `gorm:"column:user_id;index" json:"user_id,omitempty"`
	UserAgent *string        `gorm:"column:user_agent" json:"user_agent,omitempty"`
	IPAddress *string        `gorm:"column:ip_address" json:"ip_address,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;index" json:"updated_at"`
}

func (ConversationRecord) TableName() string { return "conversations" }

func (r *ConversationRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func RecordFromConversation(c *Conversation) (*ConversationRecord, error) {
	turns := c.Turns
	if turns == nil {
		turns = []Turn{}
	}
	raw, err := json.Marshal(turns)
	if err != nil {
		return nil, fmt.Errorf("encode turns: %w", err)
	}
	return &ConversationRecord{
		SessionID: c.SessionID,
		Turns:     datatypes.JSON(raw),
		Title:     c.Title,
		UserID:    optional(c.UserID),
		UserAgent: optional(c.UserAgent),
		IPAddress: optional(c.IPAddress),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

func (r *ConversationRecord) Conversation() (*Conversation, error) {
	var turns []Turn
	if len(r.Turns) > 0 {
		if err := json.Unmarshal(r.Turns, &turns); err != nil {
			return nil, fmt.Errorf("decode turns for %s: %w", r.SessionID, err)
		}
	}
	return &Conversation{
		SessionID: r.SessionID,
		Turns:     turns,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Metadata: Metadata{
			UserID:    deref(r.UserID),
			UserAgent: deref(r.UserAgent),
			IPAddress: deref(r.IPAddress),
		},
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
