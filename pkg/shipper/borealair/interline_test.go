package borealair

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interlineRef() *Memory {
	return &Memory{
		Interlines: []InterlineLane{
			{Origin: "YZF", Destination: "YFB", GroupID: "IL-204"},
		},
	}
}

func TestInterline_LaneIsDirected(t *testing.T) {
	r := newInterlineResolver(interlineRef())
	ctx := context.Background()

	forward, err := r.IsInterlineLane(ctx, "YZF", "YFB")
	require.NoError(t, err)
	assert.True(t, forward)

	reverse, err := r.IsInterlineLane(ctx, "YFB", "YZF")
	require.NoError(t, err)
	assert.False(t, reverse, "the reverse direction is a different lane")
}

func TestInterline_ResolveIDCachesHits(t *testing.T) {
	ref := interlineRef()
	r := newInterlineResolver(ref)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, ok, err := r.ResolveID(ctx, "YZF", "YFB")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "IL-204", id)
	}

	assert.Equal(t, 1, ref.Calls("InterlineLane"), "repeat resolutions must hit the cache")
}

func TestInterline_MissesAreNotCached(t *testing.T) {
	ref := interlineRef()
	r := newInterlineResolver(ref)
	ctx := context.Background()

	_, ok, err := r.ResolveID(ctx, "YEG", "YVR")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.ResolveID(ctx, "YEG", "YVR")
	require.NoError(t, err)
	assert.False(t, ok)

	// A lane added after a miss must become visible immediately.
	assert.Equal(t, 2, ref.Calls("InterlineLane"))
}
