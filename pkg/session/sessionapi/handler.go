package sessionapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/device"
	"github.com/siivi-app/siivi-server/pkg/device/devicesrv"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/logx"
	"github.com/siivi-app/siivi-server/pkg/session/sessionsrv"
)

// HeaderDeviceID identifica el dispositivo en los endpoints de invitado
const HeaderDeviceID = "X-Device-ID"

// SessionHandlers maneja el ciclo de vida de las sesiones de invitado.
// Son endpoints pre-autenticación: el dispositivo se identifica por header.
type SessionHandlers struct {
	sessions *sessionsrv.GuestSessionService
	devices  *devicesrv.DeviceLimitService
}

// NewSessionHandlers crea los handlers de sesiones de invitado
func NewSessionHandlers(sessions *sessionsrv.GuestSessionService, devices *devicesrv.DeviceLimitService) *SessionHandlers {
	return &SessionHandlers{
		sessions: sessions,
		devices:  devices,
	}
}

func (h *SessionHandlers) RegisterRoutes(router fiber.Router) {
	guest := router.Group("/guest/session")

	guest.Post("/", h.CreateSession)
	guest.Get("/", h.CurrentSession)
	guest.Delete("/", h.ClearSession)
}

// CreateSession crea una sesión de invitado para el dispositivo. El período
// de espera se verifica primero; la sesión creada se registra en el
// dispositivo recién cuando existe.
func (h *SessionHandlers) CreateSession(c *fiber.Ctx) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return err
	}

	allowed, err := h.devices.CanCreateGuestSession(c.Context(), deviceID)
	if err != nil {
		return err
	}
	if !allowed {
		return device.ErrGuestCooldownActive().WithDetail("device_id", deviceID.String())
	}

	created, err := h.sessions.Create(c.Context(), deviceID)
	if err != nil {
		return err
	}

	if ok, err := h.devices.RecordGuestSession(c.Context(), deviceID); err != nil || !ok {
		// The session exists; a lost cooldown mark only lets the device
		// retry earlier than intended.
		logx.WithFields(logx.Fields{"device_id": deviceID.String()}).
			Warnf("Guest session created but cooldown was not recorded (ok=%v, err=%v)", ok, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created.ToResponse(h.sessions.MessageLimit(), time.Now()))
}

// CurrentSession retorna la sesión activa del dispositivo, o session=null
func (h *SessionHandlers) CurrentSession(c *fiber.Ctx) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return err
	}

	active, err := h.sessions.Load(c.Context(), deviceID)
	if err != nil {
		return err
	}
	if active == nil {
		return c.JSON(fiber.Map{"session": nil})
	}

	return c.JSON(fiber.Map{"session": active.ToResponse(h.sessions.MessageLimit(), time.Now())})
}

// ClearSession desmonta la sesión del dispositivo y purga sus datos
func (h *SessionHandlers) ClearSession(c *fiber.Ctx) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Teardown(c.Context(), deviceID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Guest session cleared"})
}

func (h *SessionHandlers) deviceID(c *fiber.Ctx) (kernel.DeviceID, error) {
	raw := c.Get(HeaderDeviceID)
	if raw == "" {
		return "", errx.New("X-Device-ID header is required", errx.TypeValidation)
	}
	return kernel.NewDeviceID(raw), nil
}
