package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type gormRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &gormRepo{
		db:  db,
		log: log.With("repo", "ConversationRepo"),
	}
}

func (r *gormRepo) Get(ctx context.Context, sessionID string) (*chat.Conversation, error) {
	var row chat.ConversationRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return row.Conversation()
}

func (r *gormRepo) Create(ctx context.Context, c *chat.Conversation) error {
	row, err := chat.RecordFromConversation(c)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

func (r *gormRepo) Update(ctx context.Context, c *chat.Conversation) error {
	row, err := chat.RecordFromConversation(c)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&chat.ConversationRecord{}).
		Where("session_id = ?", c.SessionID).
		Updates(map[string]interface{}{
			"turns":      row.Turns,
			"title":      row.Title,
			"updated_at": row.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&chat.ConversationRecord{}).Error; err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

func (r *gormRepo) ListByUser(ctx context.Context, userID string) ([]*chat.Conversation, error) {
	if strings.TrimSpace(userID) == "" {
		return []*chat.Conversation{}, nil
	}
	var rows []chat.ConversationRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	out := make([]*chat.Conversation, 0, len(rows))
	for i := range rows {
		c, err := rows[i].Conversation()
		if err != nil {
			r.log.Warn("skipping undecodable conversation", "session_id", rows[i].SessionID, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
