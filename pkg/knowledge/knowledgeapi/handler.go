package knowledgeapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/iam"
	"github.com/siivi-app/siivi-server/pkg/iam/auth"
	"github.com/siivi-app/siivi-server/pkg/knowledge"
	"github.com/siivi-app/siivi-server/pkg/knowledge/knowledgesrv"
)

// KnowledgeHandlers expone las tarjetas de conocimiento
type KnowledgeHandlers struct {
	service *knowledgesrv.KnowledgeService
}

// NewKnowledgeHandlers crea los handlers de tarjetas
func NewKnowledgeHandlers(service *knowledgesrv.KnowledgeService) *KnowledgeHandlers {
	return &KnowledgeHandlers{service: service}
}

func (h *KnowledgeHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.AuthMiddleware) {
	cards := router.Group("/knowledge-cards", authMiddleware.Authenticate())

	cards.Post("/", h.CreateCard)
	cards.Get("/", h.ListCards)
	cards.Put("/:id", h.UpdateCard)
	cards.Delete("/:id", h.DeleteCard)
}

func (h *KnowledgeHandlers) CreateCard(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req knowledge.CreateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := h.service.Create(c.Context(), identity.Owner(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListCards lista las tarjetas; con ?q= filtra por título, contenido o tag
func (h *KnowledgeHandlers) ListCards(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	cards, err := h.service.Search(c.Context(), identity.Owner(), c.Query("q"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"cards": cards, "total": len(cards)})
}

func (h *KnowledgeHandlers) UpdateCard(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req knowledge.UpdateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := h.service.Update(c.Context(), identity.Owner(), c.Params("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (h *KnowledgeHandlers) DeleteCard(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	if err := h.service.Delete(c.Context(), identity.Owner(), c.Params("id")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Knowledge card deleted"})
}
