package prompt

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
)

func turns(pairs ...string) []chat.Turn {
	now := time.Unix(1_700_000_000, 0)
	out := make([]chat.Turn, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		role, _ := chat.ParseRole(pairs[i])
		out = append(out, chat.NewTurn(role, pairs[i+1], now))
	}
	return out
}

func TestParseExtractionStrict(t *testing.T) {
	raw := "Đây là kết quả:\n```json\n{\"intents\": [\"calculate_score\"], \"scores\": {\"toán\": 8, \"lý\": \"7,5\", \"hóa\": \"9\"}, \"combination\": \"a00\", \"majorCode\": 7380101}\n```"

	ex, err := ParseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{IntentCalculateScore}, ex.Intents)
	assert.Equal(t, map[string]float64{"toán": 8, "lý": 7.5, "hóa": 9}, ex.ScoreMap())
	assert.Equal(t, Code("A00"), ex.Combination)
	assert.Equal(t, Code("7380101"), ex.MajorCode)
}

func TestParseExtractionSingleIntentFallback(t *testing.T) {
	ex, err := ParseExtraction(`{"intent": " check_eligibility ", "scores": {"toán": 8}, "majorCode": "7380101"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{IntentCheckEligibility}, ex.Intents)
	assert.Equal(t, Code("7380101"), ex.MajorCode)

	ex, err = ParseExtraction(`{"intents": ["calculate_score"], "intent": "check_eligibility"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{IntentCalculateScore}, ex.Intents)
}

func TestParseExtractionFailures(t *testing.T) {
	cases := map[string]string{
		"no json":         "Tôi không hiểu câu hỏi.",
		"empty intents":   `{"intents": [], "scores": {"toán": 8}}`,
		"missing intents": `{"scores": {"toán": 8}}`,
		"blank intent":    `{"intents": [" "]}`,
		"blank single":    `{"intent": "  "}`,
		"bad score":       `{"intents": ["calculate_score"], "scores": {"toán": "tám"}}`,
		"truncated":       `{"intents": ["calculate_score"], "scores": {"toán": 8}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseExtraction(raw)
			assert.Error(t, err)
		})
	}
}

func TestQAIncludesContextHistoryAndQuestion(t *testing.T) {
	cfg, _ := modes.NewCatalog().Lookup("admission")
	p := QA(QAInput{
		Mode:     cfg,
		Context:  "Học phí ngành Luật: 15.204.000đ",
		History:  turns("user", "Ngành Luật học mấy năm?", "assistant", "4 năm."),
		Question: "Còn học phí thì sao?",
	})

	assert.True(t, strings.HasPrefix(p, cfg.SystemPrompt))
	assert.Contains(t, p, "DỮ LIỆU:\nHọc phí ngành Luật: 15.204.000đ")
	assert.Contains(t, p, "Lịch sử hội thoại:\nNgười dùng: Ngành Luật học mấy năm?\nMyU Bot: 4 năm.")
	assert.Contains(t, p, FallbackSentence)
	assert.True(t, strings.HasSuffix(p, "Câu hỏi: Còn học phí thì sao?\n\n🇻🇳 Trả lời bằng TIẾNG VIỆT:"))
	assert.Less(t, strings.Index(p, "DỮ LIỆU:"), strings.Index(p, "Lịch sử hội thoại:"))
}

func TestQAEmptyContextUsesPlaceholder(t *testing.T) {
	cfg, _ := modes.NewCatalog().Lookup("web-search")
	p := QA(QAInput{Mode: cfg, Question: "Thời tiết hôm nay thế nào ở Sài Gòn?"})
	assert.Contains(t, p, "DỮ LIỆU:\n"+NoContext)
	assert.NotContains(t, p, "Lịch sử hội thoại:")
}

func TestRecentForQA(t *testing.T) {
	h := turns("user", "a", "assistant", "b", "user", "c", "assistant", "d")

	got := RecentForQA(h, "Còn ngành khác?")
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Content)

	long := "Cho mình hỏi điều kiện xét tuyển học bạ của trường năm 2025 là gì"
	assert.Nil(t, RecentForQA(h, long))
	assert.Len(t, RecentForCompanion(h), 4)
}

func TestPriorFromHistory(t *testing.T) {
	h := turns(
		"user", "Tính điểm tổ hợp A00: Toán 8, Lý 7.5, Hóa 9",
		"assistant", "Kết quả tổ hợp A00\n✨ Tổng điểm: 24.5/30",
	)
	p := PriorFromHistory(h)
	assert.True(t, p.HasTotal)
	assert.Equal(t, 24.5, p.TotalScore)
	assert.Equal(t, "A00", p.Combination)

	assert.False(t, PriorFromHistory(turns("user", "xin chào")).HasTotal)
	assert.True(t, RefersToPriorScore("Với điểm đó mình vào ngành Luật được không?"))
}

func TestToolResultEmbedsOutcome(t *testing.T) {
	out := ToolOutcome{
		MultiIntent: true,
		Results: map[string]any{
			IntentCalculateScore:   map[string]any{"totalScore": 24.5},
			IntentCheckEligibility: ToolError{Error: "thiếu dữ liệu"},
		},
	}
	p, err := ToolResult("Tính điểm và xem đủ điểm ngành Luật", out)
	require.NoError(t, err)

	raw, _ := json.MarshalIndent(out, "", "  ")
	assert.Contains(t, p, string(raw))
	assert.Contains(t, p, "CÂU HỎI KẾT HỢP")
	assert.Contains(t, p, "TIẾNG VIỆT")
}

func TestExtractMentionsPrior(t *testing.T) {
	p := Extract("điểm đó vào Luật được không", Prior{TotalScore: 24.5, HasTotal: true, Combination: "A00"})
	assert.Contains(t, p, "Điểm từ câu hỏi trước: 24.5")
	assert.Contains(t, p, "Tổ hợp từ câu hỏi trước: A00")
}

func TestCompanionSections(t *testing.T) {
	p := Companion("Quán cà phê nào gần trường?", turns("user", "hi", "assistant", "chào"), "[1] Cafe\nNguồn: x")
	assert.Contains(t, p, "LỊCH SỬ TRÒ CHUYỆN:\nSinh viên: hi\nMyU Bot: chào")
	assert.Contains(t, p, "THÔNG TIN TÌM KIẾM TỪ WEB:\n[1] Cafe")

	bare := Companion("mình buồn", nil, "")
	assert.NotContains(t, bare, "THÔNG TIN TÌM KIẾM TỪ WEB:")
	assert.NotContains(t, bare, "LỊCH SỬ TRÒ CHUYỆN:")
}
