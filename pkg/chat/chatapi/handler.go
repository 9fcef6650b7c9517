package chatapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/chat"
	"github.com/siivi-app/siivi-server/pkg/chat/chatsrv"
	"github.com/siivi-app/siivi-server/pkg/iam"
	"github.com/siivi-app/siivi-server/pkg/iam/auth"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ChatHandlers expone las conversaciones y el envío de mensajes
type ChatHandlers struct {
	service *chatsrv.ChatService
}

// NewChatHandlers crea los handlers de chat
func NewChatHandlers(service *chatsrv.ChatService) *ChatHandlers {
	return &ChatHandlers{service: service}
}

func (h *ChatHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.AuthMiddleware) {
	chatRoutes := router.Group("/chat", authMiddleware.Authenticate())

	chatRoutes.Post("/messages", h.SendMessage)
	chatRoutes.Get("/conversations", h.ListConversations)
	chatRoutes.Get("/conversations/:id", h.GetConversation)
	chatRoutes.Put("/conversations/:id", h.RenameConversation)
	chatRoutes.Delete("/conversations/:id", h.DeleteConversation)
}

func (h *ChatHandlers) SendMessage(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req chat.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	caller := chat.Caller{
		Owner:    identity.Owner(),
		DeviceID: identity.DeviceID,
		Guest:    identity.IsGuest(),
	}

	response, err := h.service.Send(c.Context(), caller, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *ChatHandlers) ListConversations(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	response, err := h.service.ListConversations(c.Context(), identity.Owner())
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *ChatHandlers) GetConversation(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	response, err := h.service.GetConversation(c.Context(), identity.Owner(), kernel.NewConversationID(c.Params("id")))
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *ChatHandlers) RenameConversation(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req chat.RenameConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := h.service.RenameConversation(c.Context(), identity.Owner(), kernel.NewConversationID(c.Params("id")), req.Title)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (h *ChatHandlers) DeleteConversation(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	if err := h.service.DeleteConversation(c.Context(), identity.Owner(), kernel.NewConversationID(c.Params("id"))); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Conversation deleted"})
}
