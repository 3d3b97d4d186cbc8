package retention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	var tracker Tracker
	_, set := tracker.Mark()
	assert.False(t, set)
	assert.False(t, tracker.Covers(0))

	moved, err := tracker.Advance(0)
	assert.Nil(t, err)
	assert.True(t, moved)
	assert.True(t, tracker.Covers(0))
	assert.False(t, tracker.Covers(1))

	moved, err = tracker.Advance(10)
	assert.Nil(t, err)
	assert.True(t, moved)

	moved, err = tracker.Advance(10)
	assert.Nil(t, err)
	assert.False(t, moved)

	moved, err = tracker.Advance(5)
	assert.ErrorIs(t, err, ErrRetentionUnderflow)
	assert.False(t, moved)

	mark, set := tracker.Mark()
	assert.True(t, set)
	assert.Equal(t, uint64(10), mark)
	assert.Equal(t, "RETENTION[10]", tracker.String())
}
