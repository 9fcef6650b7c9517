package session

import (
	"net/http"
	"time"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// GuestSession Entity
// ============================================================================

// GuestSession es una identidad anónima con ventana de tiempo acotada.
// El registro vive en el storage por dispositivo; el lado servidor sólo
// guarda una fila de perfil con el mismo id.
type GuestSession struct {
	ID           kernel.SessionID `json:"id"`
	ExpiresAt    time.Time        `json:"expires_at"`
	MessageCount int              `json:"message_count"`
}

// IsExpired reporta si la sesión venció en el instante dado
func (s *GuestSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// LimitReached reporta si la sesión alcanzó la cuota de mensajes.
// Función pura: el bloqueo del envío es responsabilidad del caller.
func (s *GuestSession) LimitReached(limit int) bool {
	return s.MessageCount >= limit
}

// ============================================================================
// DTOs
// ============================================================================

// GuestSessionResponse es la vista expuesta por la API
type GuestSessionResponse struct {
	ID               string    `json:"id"`
	ExpiresAt        time.Time `json:"expires_at"`
	MessageCount     int       `json:"message_count"`
	MessageLimit     int       `json:"message_limit"`
	LimitReached     bool      `json:"limit_reached"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// ToResponse construye la vista de API de una sesión
func (s *GuestSession) ToResponse(limit int, now time.Time) GuestSessionResponse {
	remaining := int64(s.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return GuestSessionResponse{
		ID:               s.ID.String(),
		ExpiresAt:        s.ExpiresAt,
		MessageCount:     s.MessageCount,
		MessageLimit:     limit,
		LimitReached:     s.LimitReached(limit),
		RemainingSeconds: remaining,
	}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("SESSION")

var (
	CodeCreationFailed  = ErrRegistry.Register("CREATION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to create guest session")
	CodeNoActiveSession = ErrRegistry.Register("NO_ACTIVE_SESSION", errx.TypeNotFound, http.StatusNotFound, "No active guest session")
	CodeLimitReached    = ErrRegistry.Register("MESSAGE_LIMIT_REACHED", errx.TypeBusiness, http.StatusForbidden, "Guest message limit reached")
)

func ErrCreationFailed() *errx.Error {
	return ErrRegistry.New(CodeCreationFailed)
}

func ErrNoActiveSession() *errx.Error {
	return ErrRegistry.New(CodeNoActiveSession)
}

func ErrLimitReached() *errx.Error {
	return ErrRegistry.New(CodeLimitReached)
}
