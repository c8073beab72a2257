package orchestrator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
)

const (
	sessionSuffixLen = 9
	lastMessageRunes = 100
)

// NewSessionID returns "session_<unix ms>_<9 base36 chars>". Nothing is
// persisted; the conversation appears on its first completed turn.
func (o *Orchestrator) NewSessionID() string {
	return newSessionID(o.now())
}

func newSessionID(now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, sessionSuffixLen)
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return "session_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}

type ModeStatus struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	IsAvailable   bool   `json:"isAvailable"`
	RequiresIndex bool   `json:"requiresIndex"`
	Error         string `json:"error,omitempty"`
}

// ListModes reports every mode and whether its index has been ingested.
func (o *Orchestrator) ListModes(ctx context.Context) []ModeStatus {
	all := o.catalog.All()
	out := make([]ModeStatus, 0, len(all))
	for _, m := range all {
		st := ModeStatus{
			ID:            string(m.ID),
			Name:          m.Name,
			Description:   m.Description,
			Icon:          m.Icon,
			IsAvailable:   true,
			RequiresIndex: m.RequiresIndex(),
		}
		if m.RequiresIndex() {
			ok, err := o.collectionReady(ctx, m.Collection)
			st.IsAvailable = ok
			switch {
			case err != nil:
				st.Error = err.Error()
			case !ok:
				st.Error = fmt.Sprintf("Chưa có dữ liệu cho mode %s", m.ID)
			}
		}
		out = append(out, st)
	}
	return out
}

func (o *Orchestrator) collectionReady(ctx context.Context, collection string) (bool, error) {
	if o.probe != nil {
		return o.probe.CollectionExists(ctx, collection)
	}
	for _, m := range o.catalog.Indexed() {
		if m.Collection == collection {
			return o.gate.Prepare(ctx, m) == nil, nil
		}
	}
	return false, nil
}

// History returns the stored turns of a session.
func (o *Orchestrator) History(ctx context.Context, sessionID string) []chat.Turn {
	return o.store.Load(ctx, sessionOrDefault(sessionID))
}

// Clear deletes a session's conversation.
func (o *Orchestrator) Clear(ctx context.Context, sessionID string) error {
	if err := o.store.Delete(ctx, sessionOrDefault(sessionID)); err != nil {
		return &Error{Kind: KindStore, Message: "không thể xóa lịch sử", Err: err}
	}
	return nil
}

type ConversationSummary struct {
	SessionID    string    `json:"sessionId"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int       `json:"messageCount"`
	LastMessage  string    `json:"lastMessage"`
}

// Conversations lists the user's conversations, most recently updated first.
func (o *Orchestrator) Conversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	convs, err := o.store.List(ctx, userID)
	if err != nil {
		return nil, &Error{Kind: KindStore, Message: "không thể tải danh sách hội thoại", Err: err}
	}
	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		s := ConversationSummary{
			SessionID:    c.SessionID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
			MessageCount: len(c.Turns),
		}
		if last, ok := c.LastTurn(); ok {
			s.LastMessage = truncateRunes(last.Content, lastMessageRunes)
		}
		out = append(out, s)
	}
	return out, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
