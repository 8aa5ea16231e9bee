package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/crazy-eights/internal/game/card"
)

func suitPtr(s card.Suit) *card.Suit { return &s }

func TestIsLegalPlay(t *testing.T) {
	t.Parallel()

	fiveOfHearts := card.New(card.Hearts, card.Rank5)

	tests := []struct {
		name     string
		table    Table
		card     card.Card
		expected bool
	}{
		{"Suit match", Table{Top: fiveOfHearts}, card.New(card.Hearts, card.Rank2), true},
		{"Rank match", Table{Top: fiveOfHearts}, card.New(card.Spades, card.Rank5), true},
		{"Eight always playable", Table{Top: fiveOfHearts}, card.New(card.Clubs, card.Rank8), true},
		{"No match", Table{Top: fiveOfHearts}, card.New(card.Clubs, card.RankK), false},
		{
			name:     "Forced suit overrides top suit",
			table:    Table{Top: card.New(card.Hearts, card.Rank8), ForcedSuit: suitPtr(card.Diamonds)},
			card:     card.New(card.Diamonds, card.Rank3),
			expected: true,
		},
		{
			name:     "Top suit no longer valid under forced suit",
			table:    Table{Top: card.New(card.Hearts, card.Rank8), ForcedSuit: suitPtr(card.Diamonds)},
			card:     card.New(card.Hearts, card.Rank3),
			expected: false,
		},
		{
			name:     "Rank of wild top still matches",
			table:    Table{Top: card.New(card.Hearts, card.Rank8), ForcedSuit: suitPtr(card.Diamonds)},
			card:     card.New(card.Spades, card.Rank8),
			expected: true,
		},
		{
			name:     "Pending penalty accepts a two",
			table:    Table{Top: card.New(card.Hearts, card.Rank2), PendingPenalty: 2},
			card:     card.New(card.Clubs, card.Rank2),
			expected: true,
		},
		{
			name:     "Pending penalty rejects suit match",
			table:    Table{Top: card.New(card.Hearts, card.Rank2), PendingPenalty: 2},
			card:     card.New(card.Hearts, card.Rank9),
			expected: false,
		},
		{
			name:     "Pending penalty rejects an eight",
			table:    Table{Top: card.New(card.Hearts, card.Rank2), PendingPenalty: 4},
			card:     card.New(card.Hearts, card.Rank8),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsLegalPlay(tt.table, tt.card))
		})
	}
}

func TestEffectOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rank     card.Rank
		expected Effect
	}{
		{card.Rank2, Effect{DrawPenaltyDelta: 2}},
		{card.Rank7, Effect{Skip: true}},
		{card.RankJ, Effect{ReverseDirection: true}},
		{card.Rank8, Effect{RequiresSuitChoice: true}},
		{card.Rank5, Effect{}},
		{card.RankA, Effect{}},
		{card.RankQ, Effect{}},
	}

	for _, tt := range tests {
		t.Run(tt.rank.String(), func(t *testing.T) {
			t.Parallel()
			e := EffectOf(card.New(card.Spades, tt.rank))
			assert.Equal(t, tt.expected, e)
			assert.Equal(t, tt.expected != Effect{}, IsSpecial(card.New(card.Spades, tt.rank)))
		})
	}
}

func TestNextIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                         string
		current, direction, steps, n int
		expected                     int
	}{
		{"Clockwise", 0, 1, 1, 3, 1},
		{"Clockwise wraps", 2, 1, 1, 3, 0},
		{"Counter-clockwise wraps", 0, -1, 1, 3, 2},
		{"Skip clockwise", 1, 1, 2, 3, 0},
		{"Skip counter-clockwise", 0, -1, 2, 4, 2},
		{"Skip in two-player returns to self", 0, 1, 2, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, NextIndex(tt.current, tt.direction, tt.steps, tt.n))
		})
	}
}

func TestIsWin(t *testing.T) {
	t.Parallel()

	assert.True(t, IsWin(card.Hand{}))
	assert.True(t, IsWin(nil))
	assert.False(t, IsWin(card.Hand{card.New(card.Clubs, card.Rank3)}))
}

func TestFindBestPlay(t *testing.T) {
	t.Parallel()

	table := Table{Top: card.New(card.Hearts, card.Rank5)}

	t.Run("Prefers a non-eight", func(t *testing.T) {
		t.Parallel()
		hand := card.Hand{card.New(card.Clubs, card.Rank8), card.New(card.Hearts, card.RankK)}
		assert.Equal(t, 1, FindBestPlay(hand, table))
	})

	t.Run("Prefers special cards among matches", func(t *testing.T) {
		t.Parallel()
		hand := card.Hand{card.New(card.Hearts, card.RankK), card.New(card.Hearts, card.Rank7)}
		assert.Equal(t, 1, FindBestPlay(hand, table))
	})

	t.Run("Falls back to an eight", func(t *testing.T) {
		t.Parallel()
		hand := card.Hand{card.New(card.Clubs, card.RankK), card.New(card.Spades, card.Rank8)}
		assert.Equal(t, 1, FindBestPlay(hand, table))
	})

	t.Run("Nothing playable", func(t *testing.T) {
		t.Parallel()
		hand := card.Hand{card.New(card.Clubs, card.RankK)}
		assert.Equal(t, -1, FindBestPlay(hand, table))
		assert.Empty(t, PlayableIndices(hand, table))
	})
}
