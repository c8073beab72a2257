package prompt

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
)

const (
	shortQuestionRunes = 30
	qaHistoryTurns     = 2
	companionTurns     = 6
)

var anaphoraRe = regexp.MustCompile(`(?i)(nó|đó|thế|vậy|còn|tiếp|nữa)`)

// NeedsHistory reports whether a question is short or refers back to earlier turns.
func NeedsHistory(question string) bool {
	return utf8.RuneCountInString(question) < shortQuestionRunes || anaphoraRe.MatchString(question)
}

// RecentForQA returns the last two turns when the question needs them, nil otherwise.
func RecentForQA(history []chat.Turn, question string) []chat.Turn {
	if !NeedsHistory(question) {
		return nil
	}
	return tail(history, qaHistoryTurns)
}

// RecentForCompanion returns the last six turns for the companion chat.
func RecentForCompanion(history []chat.Turn) []chat.Turn {
	return tail(history, companionTurns)
}

func tail(turns []chat.Turn, n int) []chat.Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

// FormatHistory renders turns as "label: content" lines. System turns are skipped.
func FormatHistory(turns []chat.Turn, userLabel, botLabel string) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case chat.RoleUser:
			lines = append(lines, userLabel+": "+t.Content)
		case chat.RoleAssistant:
			lines = append(lines, botLabel+": "+t.Content)
		case chat.RoleSystem:
		}
	}
	return strings.Join(lines, "\n")
}

// Prior is what a previous tool answer left behind: a total and a combination.
type Prior struct {
	TotalScore  float64
	HasTotal    bool
	Combination string
}

var (
	priorTotalRe = regexp.MustCompile(`(?i)Tổng điểm:\s*(\d+\.?\d*)`)
	priorComboRe = regexp.MustCompile(`(?i)tổ hợp\s+([A-Z]\d{2})`)
)

// PriorFromHistory scans the most recent assistant turn among recent.
func PriorFromHistory(recent []chat.Turn) Prior {
	var p Prior
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Role != chat.RoleAssistant {
			continue
		}
		text := recent[i].Content
		if m := priorTotalRe.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				p.TotalScore, p.HasTotal = v, true
			}
		}
		if m := priorComboRe.FindStringSubmatch(text); m != nil {
			p.Combination = strings.ToUpper(m[1])
		}
		break
	}
	return p
}

// RefersToPriorScore reports whether the question points at a score given earlier.
func RefersToPriorScore(question string) bool {
	return strings.Contains(question, "điểm đó") ||
		strings.Contains(question, "điểm này") ||
		strings.Contains(question, "điểm trên")
}
