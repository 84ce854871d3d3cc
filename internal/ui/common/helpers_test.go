package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
)

func TestTruncateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short name within limit", "Alice", 10, "Alice"},
		{"exact length", "HelloWorld", 10, "HelloWorld"},
		{"long name truncated", "VeryLongPlayerName", 10, "VeryLongP…"},
		{"chinese name truncated", "可爱的龙猫", 4, "可爱的…"},
		{"empty name", "", 10, ""},
		{"single char limit", "Hello", 1, "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxLen))
		})
	}
}

func TestCardStyle(t *testing.T) {
	t.Parallel()

	deck := card.NewDeck()
	for _, c := range deck {
		style := CardStyle(c)
		switch {
		case c.Suit == card.Heart || c.Suit == card.Diamond || c.Rank == card.RankBigJoker:
			assert.Equal(t, RedStyle.GetForeground(), style.GetForeground(), c.Display())
		case c.Rank == card.RankSmallJoker:
			assert.Equal(t, JokerStyle.GetForeground(), style.GetForeground())
		default:
			assert.Equal(t, BlackStyle.GetForeground(), style.GetForeground(), c.Display())
		}
	}
}

func TestGenerateNickname(t *testing.T) {
	t.Parallel()

	for range 20 {
		name := GenerateNickname()
		assert.Contains(t, name, "的")
		assert.Greater(t, len([]rune(name)), 3)
	}
}
