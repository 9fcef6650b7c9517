package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// DeviceRecord Entity
// ============================================================================

// DeviceRecord acumula los contadores de un dispositivo. Persiste
// indefinidamente; la ventana semanal se evalúa al leer, nunca se compacta.
type DeviceRecord struct {
	DeviceID              kernel.DeviceID `json:"device_id"`
	AccountCount          int             `json:"account_count"`
	LastGuestSession      *time.Time      `json:"last_guest_session,omitempty"`
	GuestSessionsThisWeek int             `json:"guest_sessions_this_week"`
}

// CanCreateAccount reporta si el dispositivo está bajo el tope de cuentas
func (r *DeviceRecord) CanCreateAccount(maxAccounts int) bool {
	return r.AccountCount < maxAccounts
}

// CanCreateGuestSession reporta si pasó el período de espera desde la última
// sesión de invitado. El contador semanal se registra pero no participa del
// gate: el gate es sólo el timestamp.
func (r *DeviceRecord) CanCreateGuestSession(cooldown time.Duration, now time.Time) bool {
	if r.LastGuestSession == nil {
		return true
	}
	return now.Sub(*r.LastGuestSession) >= cooldown
}

// ============================================================================
// Environment Snapshot & Fingerprint
// ============================================================================

// Snapshot son las señales estables del entorno del cliente a partir de las
// cuales se deriva la huella. El cliente las reporta tal cual; la huella es
// una heurística de correlación, no una identidad dura.
type Snapshot struct {
	SurfaceSample     string `json:"surface_sample"`
	UserAgent         string `json:"user_agent"`
	Language          string `json:"language"`
	ScreenWidth       int    `json:"screen_width"`
	ScreenHeight      int    `json:"screen_height"`
	TimezoneOffsetMin int    `json:"timezone_offset_min"`
}

const fingerprintLength = 32

// Fingerprint deriva la huella del dispositivo de forma determinista a
// partir del snapshot. Hash truncado, no criptográficamente vinculante:
// puede colisionar o cambiar si cambian las señales del entorno.
func Fingerprint(snap Snapshot) kernel.DeviceID {
	material := fmt.Sprintf("%s|%s|%s|%d|%d|%d",
		snap.SurfaceSample,
		snap.UserAgent,
		snap.Language,
		snap.ScreenWidth,
		snap.ScreenHeight,
		snap.TimezoneOffsetMin,
	)

	sum := sha256.Sum256([]byte(material))
	return kernel.NewDeviceID(hex.EncodeToString(sum[:])[:fingerprintLength])
}

// ============================================================================
// DTOs
// ============================================================================

// DeviceStatusResponse es la vista expuesta por la API
type DeviceStatusResponse struct {
	DeviceID              string     `json:"device_id"`
	AccountCount          int        `json:"account_count"`
	MaxAccounts           int        `json:"max_accounts"`
	CanCreateAccount      bool       `json:"can_create_account"`
	CanCreateGuestSession bool       `json:"can_create_guest_session"`
	LastGuestSession      *time.Time `json:"last_guest_session,omitempty"`
	GuestSessionsThisWeek int        `json:"guest_sessions_this_week"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("DEVICE")

var (
	CodeAccountLimitReached = ErrRegistry.Register("ACCOUNT_LIMIT_REACHED", errx.TypeBusiness, http.StatusForbidden, "Account limit reached for this device")
	CodeGuestCooldownActive = ErrRegistry.Register("GUEST_COOLDOWN_ACTIVE", errx.TypeBusiness, http.StatusForbidden, "A guest session was already created recently on this device")
)

func ErrAccountLimitReached() *errx.Error {
	return ErrRegistry.New(CodeAccountLimitReached)
}

func ErrGuestCooldownActive() *errx.Error {
	return ErrRegistry.New(CodeGuestCooldownActive)
}
