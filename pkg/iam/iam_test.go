package iam

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siivi-app/siivi-server/pkg/kernel"
)

func TestIdentityOwner(t *testing.T) {
	registered := Identity{UserID: kernel.NewUserID("user-1"), DeviceID: kernel.NewDeviceID("dev-1")}
	assert.False(t, registered.IsGuest())
	assert.Equal(t, kernel.NewOwnerID("user-1"), registered.Owner())

	guest := Identity{SessionID: kernel.NewSessionID("session-1"), DeviceID: kernel.NewDeviceID("dev-1")}
	assert.True(t, guest.IsGuest())
	assert.Equal(t, kernel.NewOwnerID("session-1"), guest.Owner())
}

func TestIdentityIsValid(t *testing.T) {
	assert.True(t, (&Identity{UserID: kernel.NewUserID("u")}).IsValid())
	assert.True(t, (&Identity{SessionID: kernel.NewSessionID("s")}).IsValid())
	assert.False(t, (&Identity{}).IsValid())
	assert.False(t, (&Identity{UserID: kernel.NewUserID("u"), SessionID: kernel.NewSessionID("s")}).IsValid())
}
