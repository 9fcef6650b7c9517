package reminderapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/iam"
	"github.com/siivi-app/siivi-server/pkg/iam/auth"
	"github.com/siivi-app/siivi-server/pkg/reminder"
	"github.com/siivi-app/siivi-server/pkg/reminder/remindersrv"
)

// ReminderHandlers expone los recordatorios programados
type ReminderHandlers struct {
	service *remindersrv.ReminderService
}

// NewReminderHandlers crea los handlers de recordatorios
func NewReminderHandlers(service *remindersrv.ReminderService) *ReminderHandlers {
	return &ReminderHandlers{service: service}
}

func (h *ReminderHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.AuthMiddleware) {
	reminders := router.Group("/reminders", authMiddleware.Authenticate())

	reminders.Post("/", h.CreateReminder)
	reminders.Get("/", h.ListPending)
	reminders.Post("/:id/complete", h.CompleteReminder)
	reminders.Delete("/:id", h.DeleteReminder)
}

func (h *ReminderHandlers) CreateReminder(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req reminder.CreateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := h.service.Create(c.Context(), identity.Owner(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *ReminderHandlers) ListPending(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	reminders, err := h.service.ListPending(c.Context(), identity.Owner())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"reminders": reminders, "total": len(reminders)})
}

func (h *ReminderHandlers) CompleteReminder(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	if err := h.service.Complete(c.Context(), identity.Owner(), c.Params("id")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Reminder completed"})
}

func (h *ReminderHandlers) DeleteReminder(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	if err := h.service.Delete(c.Context(), identity.Owner(), c.Params("id")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Reminder deleted"})
}
