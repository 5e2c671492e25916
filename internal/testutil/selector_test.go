package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xpand/internal/process"
)

func TestScriptedSelector_FollowsScript(t *testing.T) {
	ctx := context.Background()
	sel := NewScriptedSelector(1, Cancel)
	candidates := []process.Candidate{{ID: 7, Label: "a"}, {ID: 9, Label: "b"}}

	id, ok, err := sel.Select(ctx, candidates)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(9), id)

	_, ok, err = sel.Choose(ctx, []string{"x", "y"})
	require.NoError(t, err)
	assert.False(t, ok, "cancel")

	idx, ok, err := sel.Choose(ctx, []string{"x", "y"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, idx, "exhausted script picks the first entry")

	assert.Equal(t, [][]string{{"a", "b"}, {"x", "y"}, {"x", "y"}}, sel.Asked())
}

func TestScriptedSelector_OutOfRangeCancels(t *testing.T) {
	_, ok, err := NewScriptedSelector(5).Choose(context.Background(), []string{"only"})
	require.NoError(t, err)
	assert.False(t, ok)
}
