package iam

import (
	"net/http"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// Identity es el llamador autenticado: un usuario registrado (JWT) o una
// sesión de invitado validada contra su dispositivo.
type Identity struct {
	UserID    kernel.UserID
	SessionID kernel.SessionID
	DeviceID  kernel.DeviceID
}

// IsGuest reporta si la identidad es una sesión de invitado
func (i *Identity) IsGuest() bool {
	return i.UserID.IsEmpty() && !i.SessionID.IsEmpty()
}

// Owner retorna el OwnerID bajo el que viven las filas del llamador
func (i *Identity) Owner() kernel.OwnerID {
	if i.IsGuest() {
		return kernel.OwnerFromSession(i.SessionID)
	}
	return kernel.OwnerFromUser(i.UserID)
}

// IsValid verifica que la identidad tenga exactamente un principal
func (i *Identity) IsValid() bool {
	return i.UserID.IsEmpty() != i.SessionID.IsEmpty()
}

// ============================================================================
// Error Registry - Errores comunes de IAM
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeUnauthorized = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Autenticación requerida")
	CodeForbidden    = ErrRegistry.Register("FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "Operación no permitida")
)

func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}

func ErrForbidden() *errx.Error {
	return ErrRegistry.New(CodeForbidden)
}
