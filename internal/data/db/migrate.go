package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&chat.ConversationRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
