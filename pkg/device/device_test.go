package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseSnapshot() Snapshot {
	return Snapshot{
		SurfaceSample:     "canvas-sample-abc",
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64)",
		Language:          "en-US",
		ScreenWidth:       1920,
		ScreenHeight:      1080,
		TimezoneOffsetMin: -180,
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	a := Fingerprint(baseSnapshot())
	b := Fingerprint(baseSnapshot())
	assert.Equal(t, a, b)
}

func TestFingerprintLength(t *testing.T) {
	id := Fingerprint(baseSnapshot())
	assert.Len(t, id.String(), 32)
}

func TestFingerprintChangesWithAnySignal(t *testing.T) {
	base := Fingerprint(baseSnapshot())

	changed := baseSnapshot()
	changed.Language = "fi-FI"
	assert.NotEqual(t, base, Fingerprint(changed))

	changed = baseSnapshot()
	changed.ScreenWidth = 1280
	assert.NotEqual(t, base, Fingerprint(changed))

	changed = baseSnapshot()
	changed.TimezoneOffsetMin = 0
	assert.NotEqual(t, base, Fingerprint(changed))
}

func TestCanCreateAccount(t *testing.T) {
	record := &DeviceRecord{}
	assert.True(t, record.CanCreateAccount(2))

	record.AccountCount = 1
	assert.True(t, record.CanCreateAccount(2))

	record.AccountCount = 2
	assert.False(t, record.CanCreateAccount(2))
}

func TestCanCreateGuestSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cooldown := 7 * 24 * time.Hour

	record := &DeviceRecord{}
	assert.True(t, record.CanCreateGuestSession(cooldown, now), "no prior session")

	recent := now.Add(-time.Hour)
	record.LastGuestSession = &recent
	assert.False(t, record.CanCreateGuestSession(cooldown, now))

	old := now.Add(-8 * 24 * time.Hour)
	record.LastGuestSession = &old
	assert.True(t, record.CanCreateGuestSession(cooldown, now))
}
