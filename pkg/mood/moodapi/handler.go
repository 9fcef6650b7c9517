package moodapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/iam"
	"github.com/siivi-app/siivi-server/pkg/iam/auth"
	"github.com/siivi-app/siivi-server/pkg/mood"
	"github.com/siivi-app/siivi-server/pkg/mood/moodsrv"
)

// MoodHandlers expone el registro y los agregados de estados de ánimo
type MoodHandlers struct {
	service *moodsrv.MoodService
}

// NewMoodHandlers crea los handlers de mood tracking
func NewMoodHandlers(service *moodsrv.MoodService) *MoodHandlers {
	return &MoodHandlers{service: service}
}

func (h *MoodHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.AuthMiddleware) {
	moods := router.Group("/moods", authMiddleware.Authenticate())

	moods.Post("/", h.LogMood)
	moods.Get("/", h.History)
	moods.Get("/insights", h.Insights)
}

func (h *MoodHandlers) LogMood(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req mood.LogMoodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	logged, err := h.service.Log(c.Context(), identity.Owner(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(logged)
}

func (h *MoodHandlers) History(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	logs, err := h.service.History(c.Context(), identity.Owner(), h.days(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"logs": logs, "total": len(logs)})
}

func (h *MoodHandlers) Insights(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	insights, err := h.service.Insights(c.Context(), identity.Owner(), h.days(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"insights": insights})
}

func (h *MoodHandlers) days(c *fiber.Ctx) int {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days <= 0 {
		return 30
	}
	return days
}
