package chat

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTurns(n int, withSystem bool) []Turn {
	base := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	var out []Turn
	if withSystem {
		out = append(out, NewTurn(RoleSystem, "system", base))
	}
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		out = append(out, NewTurn(role, fmt.Sprintf("turn-%d", i), base.Add(time.Duration(i)*time.Second)))
	}
	return out
}

func TestCapTurnsKeepsSystemAndRecent(t *testing.T) {
	turns := makeTurns(60, true)

	got := CapTurns(turns)

	require.Len(t, got, 1+KeptRecentTurns)
	assert.Equal(t, RoleSystem, got[0].Role)
	assert.Equal(t, "turn-12", got[1].Content)
	assert.Equal(t, "turn-59", got[len(got)-1].Content)
	for _, turn := range got[1:] {
		assert.NotEqual(t, RoleSystem, turn.Role)
	}
}

func TestCapTurnsWithoutSystem(t *testing.T) {
	got := CapTurns(makeTurns(51, false))

	require.Len(t, got, KeptRecentTurns)
	assert.Equal(t, "turn-3", got[0].Content)
	assert.LessOrEqual(t, len(got), 49)
}

func TestCapTurnsUnderLimitIsUntouched(t *testing.T) {
	turns := makeTurns(50, false)
	assert.Equal(t, turns, CapTurns(turns))
}

func TestDeriveTitle(t *testing.T) {
	long := strings.Repeat("học phí ", 20)
	turns := []Turn{
		{Role: RoleAssistant, Content: "xin chào"},
		{Role: RoleUser, Content: "  " + long},
	}

	title := DeriveTitle(turns)

	assert.Len(t, []rune(title), TitleMaxRunes)
	assert.True(t, strings.HasPrefix(title, "học phí"))
	assert.Equal(t, DefaultTitle, DeriveTitle(nil))
	assert.True(t, TitleIsDefault(""))
	assert.True(t, TitleIsDefault(DefaultTitle))
	assert.False(t, TitleIsDefault("Học phí ngành Luật"))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Assistant ")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, r)

	_, err = ParseRole("ai")
	assert.Error(t, err)
}
