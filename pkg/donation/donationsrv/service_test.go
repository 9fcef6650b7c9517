package donationsrv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/kv"
)

func TestIncrementRaisesFlagOnIntervalCrossing(t *testing.T) {
	svc := NewMessageCounterService(kv.NewMemoryStore(), 3)
	deviceID := kernel.NewDeviceID("dev-1")
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		resp, err := svc.Increment(ctx, deviceID)
		require.NoError(t, err)
		assert.Equal(t, i, resp.Count)
		assert.False(t, resp.ShowDonation)
	}

	resp, err := svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Count)
	assert.True(t, resp.ShowDonation)
}

func TestFlagStaysRaisedUntilHidden(t *testing.T) {
	svc := NewMessageCounterService(kv.NewMemoryStore(), 2)
	deviceID := kernel.NewDeviceID("dev-1")
	ctx := context.Background()

	_, err := svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	resp, err := svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	require.True(t, resp.ShowDonation)

	// The flag survives further increments until the user dismisses it.
	resp, err = svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	assert.True(t, resp.ShowDonation)

	require.NoError(t, svc.Hide(ctx, deviceID))

	status, err := svc.Status(ctx, deviceID)
	require.NoError(t, err)
	assert.False(t, status.ShowDonation)
	assert.Equal(t, 3, status.Count, "hiding must not touch the counter")
}

func TestHideDoesNotReplayPastIntervals(t *testing.T) {
	svc := NewMessageCounterService(kv.NewMemoryStore(), 2)
	deviceID := kernel.NewDeviceID("dev-1")
	ctx := context.Background()

	_, err := svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	_, err = svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	require.NoError(t, svc.Hide(ctx, deviceID))

	// Count 3 is not a crossing; the flag for 2 must not come back.
	resp, err := svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	assert.False(t, resp.ShowDonation)

	// Count 4 is a fresh crossing.
	resp, err = svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	assert.True(t, resp.ShowDonation)
}

func TestResetStartsOver(t *testing.T) {
	svc := NewMessageCounterService(kv.NewMemoryStore(), 2)
	deviceID := kernel.NewDeviceID("dev-1")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Increment(ctx, deviceID)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Reset(ctx, deviceID))

	status, err := svc.Status(ctx, deviceID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Count)
	assert.False(t, status.ShowDonation)

	// The interval fires again after the reset.
	_, err = svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	resp, err := svc.Increment(ctx, deviceID)
	require.NoError(t, err)
	assert.True(t, resp.ShowDonation)
}

func TestCountersAreScopedPerDevice(t *testing.T) {
	svc := NewMessageCounterService(kv.NewMemoryStore(), 5)
	ctx := context.Background()

	_, err := svc.Increment(ctx, kernel.NewDeviceID("dev-a"))
	require.NoError(t, err)

	status, err := svc.Status(ctx, kernel.NewDeviceID("dev-b"))
	require.NoError(t, err)
	assert.Equal(t, 0, status.Count)
}
