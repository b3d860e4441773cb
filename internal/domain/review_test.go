package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTargetRef(t *testing.T) {
	t.Run("listing only", func(t *testing.T) {
		target, err := NewTargetRef("listing-1", "")

		require.NoError(t, err)
		assert.Equal(t, TargetKindListing, target.Kind)
		assert.Equal(t, "listing-1", target.ID)
	})

	t.Run("agent only", func(t *testing.T) {
		target, err := NewTargetRef("", "agent-1")

		require.NoError(t, err)
		assert.Equal(t, TargetKindAgent, target.Kind)
		assert.Equal(t, "agent-1", target.ID)
	})

	t.Run("both set rejected", func(t *testing.T) {
		_, err := NewTargetRef("listing-1", "agent-1")
		assert.Error(t, err)
	})

	t.Run("neither set rejected", func(t *testing.T) {
		_, err := NewTargetRef("", "")
		assert.Error(t, err)
	})
}

func TestTargetRefColumns(t *testing.T) {
	listing := ListingTarget("l-1")
	require.NotNil(t, listing.ListingID())
	assert.Equal(t, "l-1", *listing.ListingID())
	assert.Nil(t, listing.AgentID())

	agent := AgentTarget("a-1")
	require.NotNil(t, agent.AgentID())
	assert.Equal(t, "a-1", *agent.AgentID())
	assert.Nil(t, agent.ListingID())
}

func TestTargetRefString(t *testing.T) {
	assert.Equal(t, "listing/l-1", ListingTarget("l-1").String())
	assert.Equal(t, "agent/a-1", AgentTarget("a-1").String())
}

func TestReviewPatchIsEmpty(t *testing.T) {
	assert.True(t, ReviewPatch{}.IsEmpty())

	rating := 4
	assert.False(t, ReviewPatch{Rating: &rating}.IsEmpty())
}
