package rochambeau

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMoveClassification(t *testing.T) {
	for _, h := range Hands {
		assert.True(t, h.IsHand())
		assert.True(t, h.IsValid())
	}
	assert.False(t, START.IsHand())
	assert.False(t, END.IsHand())
	assert.True(t, START.IsValid())
	assert.True(t, END.IsValid())
	assert.False(t, Move(4).IsValid())
	assert.False(t, Move(-2).IsValid())
}

func TestMoveStringAndParse(t *testing.T) {
	for _, m := range []Move{START, ROCK, PAPER, SCISSORS, END} {
		parsed, err := ParseMove(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	assert.Equal(t, "INVALID(9)", Move(9).String())
	parsed, err := ParseMove(" rock ")
	require.NoError(t, err)
	assert.Equal(t, ROCK, parsed)
	_, err = ParseMove("lizard")
	assert.Error(t, err)
}
