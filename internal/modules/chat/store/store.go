package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/myu-chat-backend/internal/data/repos/conversation"
	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

// Store is the conversation persistence adapter used by the orchestrator.
// Repository failures are absorbed by a volatile per-process map so a session
// keeps its visible history until restart.
type Store struct {
	log  *logger.Logger
	repo conversation.Repo
	now  func() time.Time

	mu       sync.Mutex
	volatile map[string][]chat.Turn
	locks    map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// New builds a store. A nil repo keeps everything in the volatile map.
func New(log *logger.Logger, repo conversation.Repo) *Store {
	return &Store{
		log:      log.With("component", "ConversationStore"),
		repo:     repo,
		now:      time.Now,
		volatile: map[string][]chat.Turn{},
		locks:    map[string]*sessionLock{},
	}
}

// Lock serialises read-modify-write cycles on one session. The returned func
// releases it.
func (s *Store) Lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

// Load returns the session's turns, or an empty slice. It never creates a
// record. Turns kept in the volatile map during an outage win over an older
// durable copy until the next successful save writes them back.
func (s *Store) Load(ctx context.Context, sessionID string) []chat.Turn {
	if s.repo != nil {
		c, err := s.repo.Get(ctx, sessionID)
		switch {
		case err == nil:
			if v := s.newerVolatile(sessionID, c.Turns); v != nil {
				return v
			}
			return c.Turns
		case !errors.Is(err, conversation.ErrNotFound):
			s.log.Warn("conversation load failed, using volatile history", "session_id", sessionID, "error", err)
			observability.Current().IncStoreFallback("load")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Turn{}, s.volatile[sessionID]...)
}

// Save upserts the session's turns after applying the history cap. md is
// recorded only when the save creates the session's record.
func (s *Store) Save(ctx context.Context, sessionID string, turns []chat.Turn, md chat.Metadata) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("save conversation: empty session id")
	}
	turns = chat.CapTurns(turns)
	if s.repo == nil {
		s.keepVolatile(sessionID, turns)
		return nil
	}
	if err := s.persist(ctx, sessionID, turns, md); err != nil {
		s.log.Warn("conversation save failed, keeping volatile history", "session_id", sessionID, "error", err)
		observability.Current().IncStoreFallback("save")
		s.keepVolatile(sessionID, turns)
		return nil
	}
	s.mu.Lock()
	delete(s.volatile, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *Store) persist(ctx context.Context, sessionID string, turns []chat.Turn, md chat.Metadata) error {
	now := s.now().UTC()
	existing, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, conversation.ErrNotFound) {
		c := &chat.Conversation{
			SessionID: sessionID,
			Turns:     turns,
			Title:     chat.DeriveTitle(turns),
			CreatedAt: now,
			UpdatedAt: now,
			Metadata:  md,
		}
		return s.repo.Create(ctx, c)
	}
	if err != nil {
		return err
	}
	existing.Turns = turns
	existing.UpdatedAt = now
	if chat.TitleIsDefault(existing.Title) {
		existing.Title = chat.DeriveTitle(turns)
	}
	return s.repo.Update(ctx, existing)
}

func (s *Store) newerVolatile(sessionID string, durable []chat.Turn) []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.volatile[sessionID]
	if len(v) == 0 {
		return nil
	}
	if len(durable) > 0 {
		vLast, dLast := v[len(v)-1].Timestamp, durable[len(durable)-1].Timestamp
		if vLast.Before(dLast) || (vLast.Equal(dLast) && len(v) <= len(durable)) {
			return nil
		}
	}
	return append([]chat.Turn(nil), v...)
}

func (s *Store) keepVolatile(sessionID string, turns []chat.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volatile[sessionID] = append([]chat.Turn(nil), turns...)
}

// Delete removes the session from the repository and the volatile map.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.volatile, sessionID)
	s.mu.Unlock()
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete conversation %s: %w", sessionID, err)
	}
	return nil
}

// List returns the user's stored conversations, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]*chat.Conversation, error) {
	if s.repo == nil {
		return []*chat.Conversation{}, nil
	}
	return s.repo.ListByUser(ctx, userID)
}
