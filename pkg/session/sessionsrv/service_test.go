package sessionsrv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/kv"
	"github.com/siivi-app/siivi-server/pkg/session"
)

type fakeProfileStore struct {
	profiles  map[kernel.SessionID]time.Time
	purged    []kernel.SessionID
	createErr error
	purgeErr  error
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[kernel.SessionID]time.Time)}
}

func (f *fakeProfileStore) CreateGuestProfile(ctx context.Context, id kernel.SessionID, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.profiles[id] = expiresAt
	return nil
}

func (f *fakeProfileStore) FindExpiredGuestProfiles(ctx context.Context, before time.Time) ([]kernel.SessionID, error) {
	var expired []kernel.SessionID
	for id, expiresAt := range f.profiles {
		if expiresAt.Before(before) {
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func (f *fakeProfileStore) PurgeSessionData(ctx context.Context, id kernel.SessionID) error {
	if f.purgeErr != nil {
		return f.purgeErr
	}
	f.purged = append(f.purged, id)
	delete(f.profiles, id)
	return nil
}

func newTestService(profiles *fakeProfileStore, now time.Time) (*GuestSessionService, *kv.MemoryStore) {
	store := kv.NewMemoryStore()
	svc := NewGuestSessionServiceWithNow(store, profiles, profiles, Config{
		SessionDuration: 24 * time.Hour,
		MessageLimit:    20,
	}, func() time.Time { return now })
	return svc, store
}

func TestCreateStoresSessionAndProfile(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := newFakeProfileStore()
	svc, _ := newTestService(profiles, now)

	created, err := svc.Create(context.Background(), kernel.NewDeviceID("dev-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID.String())
	assert.Equal(t, now.Add(24*time.Hour), created.ExpiresAt)
	assert.Equal(t, 0, created.MessageCount)
	assert.Contains(t, profiles.profiles, created.ID)
}

func TestCreateTearsDownExistingSessionFirst(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := newFakeProfileStore()
	svc, _ := newTestService(profiles, now)
	ctx := context.Background()
	deviceID := kernel.NewDeviceID("dev-1")

	first, err := svc.Create(ctx, deviceID)
	require.NoError(t, err)

	second, err := svc.Create(ctx, deviceID)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []kernel.SessionID{first.ID}, profiles.purged)

	active, err := svc.Load(ctx, deviceID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestCreateIsAllOrNothing(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := newFakeProfileStore()
	profiles.createErr = errors.New("insert failed")
	svc, _ := newTestService(profiles, now)
	ctx := context.Background()
	deviceID := kernel.NewDeviceID("dev-1")

	_, err := svc.Create(ctx, deviceID)
	require.Error(t, err)

	// No local record was handed out.
	active, err := svc.Load(ctx, deviceID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestLoadReturnsNilWithoutSession(t *testing.T) {
	profiles := newFakeProfileStore()
	svc, _ := newTestService(profiles, time.Now())

	active, err := svc.Load(context.Background(), kernel.NewDeviceID("dev-none"))
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestExpiredSessionIsTornDownOnLoad(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := newFakeProfileStore()

	clock := start
	store := kv.NewMemoryStore()
	svc := NewGuestSessionServiceWithNow(store, profiles, profiles, Config{
		SessionDuration: 24 * time.Hour,
		MessageLimit:    20,
	}, func() time.Time { return clock })
	ctx := context.Background()
	deviceID := kernel.NewDeviceID("dev-1")

	created, err := svc.Create(ctx, deviceID)
	require.NoError(t, err)

	clock = start.Add(25 * time.Hour)

	active, err := svc.Load(ctx, deviceID)
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Equal(t, []kernel.SessionID{created.ID}, profiles.purged)

	// The local record was cleared, not just hidden.
	var stored session.GuestSession
	assert.True(t, kv.IsNotFound(store.Get(ctx, "guest_session:"+deviceID.String(), &stored)))
}

func TestIncrementMessageCountPersists(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := newFakeProfileStore()
	svc, _ := newTestService(profiles, now)
	ctx := context.Background()
	deviceID := kernel.NewDeviceID("dev-1")

	_, err := svc.Create(ctx, deviceID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.IncrementMessageCount(ctx, deviceID))
	}

	active, err := svc.Load(ctx, deviceID)
	require.NoError(t, err)
	assert.Equal(t, 3, active.MessageCount)
}

func TestIncrementWithoutSessionIsNoop(t *testing.T) {
	profiles := newFakeProfileStore()
	svc, _ := newTestService(profiles, time.Now())

	assert.NoError(t, svc.IncrementMessageCount(context.Background(), kernel.NewDeviceID("dev-none")))
}

func TestIsLimitReached(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := newFakeProfileStore()
	store := kv.NewMemoryStore()
	svc := NewGuestSessionServiceWithNow(store, profiles, profiles, Config{
		SessionDuration: 24 * time.Hour,
		MessageLimit:    2,
	}, func() time.Time { return now })
	ctx := context.Background()
	deviceID := kernel.NewDeviceID("dev-1")

	// No session: nothing to reach.
	reached, err := svc.IsLimitReached(ctx, deviceID)
	require.NoError(t, err)
	assert.False(t, reached)

	_, err = svc.Create(ctx, deviceID)
	require.NoError(t, err)

	require.NoError(t, svc.IncrementMessageCount(ctx, deviceID))
	reached, err = svc.IsLimitReached(ctx, deviceID)
	require.NoError(t, err)
	assert.False(t, reached)

	require.NoError(t, svc.IncrementMessageCount(ctx, deviceID))
	reached, err = svc.IsLimitReached(ctx, deviceID)
	require.NoError(t, err)
	assert.True(t, reached)
}

func TestTeardownClearsLocalRecordEvenIfPurgeFails(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := newFakeProfileStore()
	svc, _ := newTestService(profiles, now)
	ctx := context.Background()
	deviceID := kernel.NewDeviceID("dev-1")

	_, err := svc.Create(ctx, deviceID)
	require.NoError(t, err)

	profiles.purgeErr = errors.New("remote purge failed")
	require.NoError(t, svc.Teardown(ctx, deviceID))

	active, err := svc.Load(ctx, deviceID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestTeardownWithoutSessionIsNoop(t *testing.T) {
	profiles := newFakeProfileStore()
	svc, _ := newTestService(profiles, time.Now())

	assert.NoError(t, svc.Teardown(context.Background(), kernel.NewDeviceID("dev-none")))
	assert.Empty(t, profiles.purged)
}
