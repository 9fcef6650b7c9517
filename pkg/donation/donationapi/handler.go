package donationapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/donation/donationsrv"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// HeaderDeviceID identifica el dispositivo dueño del contador
const HeaderDeviceID = "X-Device-ID"

// DonationHandlers expone el contador de mensajes y la bandera de donación.
// El estado es por dispositivo, igual que antes de la autenticación.
type DonationHandlers struct {
	counter *donationsrv.MessageCounterService
}

// NewDonationHandlers crea los handlers del contador
func NewDonationHandlers(counter *donationsrv.MessageCounterService) *DonationHandlers {
	return &DonationHandlers{counter: counter}
}

func (h *DonationHandlers) RegisterRoutes(router fiber.Router) {
	don := router.Group("/donation")

	don.Get("/status", h.Status)
	don.Post("/hide", h.Hide)
	don.Post("/reset", h.Reset)
}

// Status retorna el contador y si corresponde mostrar el banner
func (h *DonationHandlers) Status(c *fiber.Ctx) error {
	id, err := h.deviceID(c)
	if err != nil {
		return err
	}

	status, err := h.counter.Status(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(status)
}

// Hide baja la bandera sin tocar el contador
func (h *DonationHandlers) Hide(c *fiber.Ctx) error {
	id, err := h.deviceID(c)
	if err != nil {
		return err
	}

	if err := h.counter.Hide(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Donation banner hidden"})
}

// Reset vuelve el contador a cero. Acción explícita del usuario.
func (h *DonationHandlers) Reset(c *fiber.Ctx) error {
	id, err := h.deviceID(c)
	if err != nil {
		return err
	}

	if err := h.counter.Reset(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Message counter reset"})
}

func (h *DonationHandlers) deviceID(c *fiber.Ctx) (kernel.DeviceID, error) {
	raw := c.Get(HeaderDeviceID)
	if raw == "" {
		return "", errx.New("X-Device-ID header is required", errx.TypeValidation)
	}
	return kernel.NewDeviceID(raw), nil
}
