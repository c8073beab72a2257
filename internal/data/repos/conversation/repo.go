package conversation

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
)

var ErrNotFound = errors.New("conversation not found")

// Repo persists conversations keyed by session id.
type Repo interface {
	// Get returns ErrNotFound when no record exists.
	Get(ctx context.Context, sessionID string) (*chat.Conversation, error)
	Create(ctx context.Context, c *chat.Conversation) error
	// Update replaces turns, title and updatedAt. Metadata is left untouched.
	Update(ctx context.Context, c *chat.Conversation) error
	Delete(ctx context.Context, sessionID string) error
	// ListByUser returns the user's conversations, most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]*chat.Conversation, error)
}

type memoryRepo struct {
	mu   sync.RWMutex
	rows map[string]chat.Conversation
}

// NewMemoryRepo keeps conversations in process memory.
func NewMemoryRepo() Repo {
	return &memoryRepo{rows: map[string]chat.Conversation{}}
}

func (r *memoryRepo) Get(_ context.Context, sessionID string) (*chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(c), nil
}

func (r *memoryRepo) Create(_ context.Context, c *chat.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.SessionID]; ok {
		return errors.New("conversation already exists")
	}
	r.rows[c.SessionID] = *clone(*c)
	return nil
}

func (r *memoryRepo) Update(_ context.Context, c *chat.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[c.SessionID]
	if !ok {
		return ErrNotFound
	}
	cur.Turns = append([]chat.Turn(nil), c.Turns...)
	cur.Title = c.Title
	cur.UpdatedAt = c.UpdatedAt
	r.rows[c.SessionID] = cur
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, sessionID)
	return nil
}

func (r *memoryRepo) ListByUser(_ context.Context, userID string) ([]*chat.Conversation, error) {
	out := []*chat.Conversation{}
	if strings.TrimSpace(userID) == "" {
		return out, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.rows {
		if c.UserID == userID {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func clone(c chat.Conversation) *chat.Conversation {
	c.Turns = append([]chat.Turn(nil), c.Turns...)
	return &c
}
