package deviceapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/device"
	"github.com/siivi-app/siivi-server/pkg/device/devicesrv"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// HeaderDeviceID identifica el dispositivo ya fingerprinteado
const HeaderDeviceID = "X-Device-ID"

// DeviceHandlers expone la huella y el estado de límites de un dispositivo
type DeviceHandlers struct {
	devices *devicesrv.DeviceLimitService
}

// NewDeviceHandlers crea los handlers de dispositivo
func NewDeviceHandlers(devices *devicesrv.DeviceLimitService) *DeviceHandlers {
	return &DeviceHandlers{devices: devices}
}

func (h *DeviceHandlers) RegisterRoutes(router fiber.Router) {
	dev := router.Group("/device")

	dev.Post("/fingerprint", h.Fingerprint)
	dev.Get("/status", h.Status)
}

// Fingerprint deriva la huella determinista del snapshot del entorno
func (h *DeviceHandlers) Fingerprint(c *fiber.Ctx) error {
	var snap device.Snapshot
	if err := c.BodyParser(&snap); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	return c.JSON(fiber.Map{"device_id": device.Fingerprint(snap).String()})
}

// Status retorna los contadores y gates del dispositivo
func (h *DeviceHandlers) Status(c *fiber.Ctx) error {
	raw := c.Get(HeaderDeviceID)
	if raw == "" {
		return errx.New("X-Device-ID header is required", errx.TypeValidation)
	}

	status, err := h.devices.Status(c.Context(), kernel.NewDeviceID(raw))
	if err != nil {
		return err
	}

	return c.JSON(status)
}
