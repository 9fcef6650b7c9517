package session

import (
	"context"
	"time"

	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ProfileRepository define el contrato para las filas de perfil de invitado
type ProfileRepository interface {
	// CreateGuestProfile inserts the server-side mirror of a guest session.
	CreateGuestProfile(ctx context.Context, id kernel.SessionID, expiresAt time.Time) error

	// FindExpiredGuestProfiles returns guest profile ids whose window ended
	// before the given instant.
	FindExpiredGuestProfiles(ctx context.Context, before time.Time) ([]kernel.SessionID, error)
}

// Purger es el procedimiento remoto de borrado en cascada: elimina todas
// las filas que referencian la sesión. Idempotente.
type Purger interface {
	PurgeSessionData(ctx context.Context, id kernel.SessionID) error
}
