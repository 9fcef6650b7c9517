package donation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceFiresOncePerInterval(t *testing.T) {
	state := &CounterState{}

	for i := 1; i <= 4; i++ {
		assert.False(t, state.Advance(5), "count %d should not fire", i)
	}
	assert.True(t, state.Advance(5), "count 5 should fire")
	assert.Equal(t, 5, state.Count)
	assert.Equal(t, 5, state.LastDonationShown)

	for i := 6; i <= 9; i++ {
		assert.False(t, state.Advance(5), "count %d should not fire", i)
	}
	assert.True(t, state.Advance(5), "count 10 should fire")
}

func TestAdvanceNeverFiresTwiceForSameMultiple(t *testing.T) {
	state := &CounterState{Count: 4, LastDonationShown: 5}

	// Count reaches 5 again but the prompt for 5 was already shown.
	assert.False(t, state.Advance(5))
	assert.Equal(t, 5, state.Count)
}

func TestResetClearsBothFields(t *testing.T) {
	state := &CounterState{Count: 12, LastDonationShown: 10}
	state.Reset()

	assert.Equal(t, 0, state.Count)
	assert.Equal(t, 0, state.LastDonationShown)

	// After a reset the next interval crossing fires again.
	for i := 1; i <= 4; i++ {
		assert.False(t, state.Advance(5))
	}
	assert.True(t, state.Advance(5))
}
