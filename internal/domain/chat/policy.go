package chat

import "strings"

const (
	// MaxTurns is the number of turns a conversation may hold before it is trimmed.
	MaxTurns = 50
	// KeptRecentTurns is how many non-system turns survive a trim.
	KeptRecentTurns = 48
	// TitleMaxRunes bounds the derived conversation title.
	TitleMaxRunes = 50
	// DefaultTitle is used until a user turn exists.
	DefaultTitle = "Cuộc trò chuyện mới"
)

// CapTurns enforces the history cap. Above MaxTurns the earliest system turn
// (if any) is kept, followed by the KeptRecentTurns most recent non-system turns.
func CapTurns(turns []Turn) []Turn {
	if len(turns) <= MaxTurns {
		return turns
	}
	var system *Turn
	nonSystem := make([]Turn, 0, len(turns))
	for i := range turns {
		if turns[i].Role == RoleSystem {
			if system == nil {
				system = &turns[i]
			}
			continue
		}
		nonSystem = append(nonSystem, turns[i])
	}
	if len(nonSystem) > KeptRecentTurns {
		nonSystem = nonSystem[len(nonSystem)-KeptRecentTurns:]
	}
	out := make([]Turn, 0, len(nonSystem)+1)
	if system != nil {
		out = append(out, *system)
	}
	return append(out, nonSystem...)
}

// DeriveTitle returns the trimmed first user turn, cut to TitleMaxRunes runes.
func DeriveTitle(turns []Turn) string {
	for _, t := range turns {
		if t.Role != RoleUser {
			continue
		}
		title := strings.TrimSpace(t.Content)
		if r := []rune(title); len(r) > TitleMaxRunes {
			title = string(r[:TitleMaxRunes])
		}
		if title == "" {
			return DefaultTitle
		}
		return title
	}
	return DefaultTitle
}

// TitleIsDefault reports whether a stored title may still be replaced.
func TitleIsDefault(title string) bool {
	title = strings.TrimSpace(title)
	return title == "" || title == DefaultTitle
}
