package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/myu-chat-backend/internal/data/db"
	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

func newSQLiteRepo(t *testing.T) Repo {
	t.Helper()
	svc, err := db.NewSQLiteService(logger.NewNop(), "file:conversation_repo_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewGormRepo(svc.DB(), logger.NewNop())
}

func TestRepos(t *testing.T) {
	for name, mk := range map[string]func(*testing.T) Repo{
		"memory": func(*testing.T) Repo { return NewMemoryRepo() },
		"gorm":   newSQLiteRepo,
	} {
		t.Run(name, func(t *testing.T) {
			exerciseRepo(t, mk(t))
		})
	}
}

func exerciseRepo(t *testing.T, repo Repo) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(ctx, &chat.Conversation{SessionID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}

	first := &chat.Conversation{
		SessionID: "s1",
		Turns:     []chat.Turn{chat.NewTurn(chat.RoleUser, "Học phí ngành Luật?", base)},
		Title:     "Học phí ngành Luật?",
		CreatedAt: base,
		UpdatedAt: base,
		Metadata:  chat.Metadata{UserID: "u1", UserAgent: "curl/8", IPAddress: "10.0.0.1"},
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := &chat.Conversation{SessionID: "s2", Title: "x", CreatedAt: base, UpdatedAt: base.Add(time.Minute), Metadata: chat.Metadata{UserID: "u1"}}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Turns) != 1 || got.Turns[0].Role != chat.RoleUser || got.Turns[0].Content != "Học phí ngành Luật?" {
		t.Fatalf("unexpected turns: %+v", got.Turns)
	}
	if got.UserAgent != "curl/8" || got.IPAddress != "10.0.0.1" {
		t.Fatalf("metadata not persisted: %+v", got.Metadata)
	}

	got.Turns = append(got.Turns, chat.NewTurn(chat.RoleAssistant, "Khoảng 30 triệu.", base))
	got.UpdatedAt = base.Add(2 * time.Minute)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].SessionID != "s1" || len(list[0].Turns) != 2 {
		t.Fatalf("unexpected list order or content: %+v", list)
	}
	if others, _ := repo.ListByUser(ctx, "u2"); len(others) != 0 {
		t.Fatalf("expected no conversations for u2, got %d", len(others))
	}

	anon := &chat.Conversation{SessionID: "anon", Title: "x", CreatedAt: base, UpdatedAt: base}
	if err := repo.Create(ctx, anon); err != nil {
		t.Fatalf("create anonymous: %v", err)
	}
	if anonList, err := repo.ListByUser(ctx, ""); err != nil || len(anonList) != 0 {
		t.Fatalf("empty user id must list nothing, got %d (err=%v)", len(anonList), err)
	}

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted conversation to be gone, got %v", err)
	}
}
