package draftapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/draft"
	"github.com/siivi-app/siivi-server/pkg/draft/draftsrv"
	"github.com/siivi-app/siivi-server/pkg/iam"
	"github.com/siivi-app/siivi-server/pkg/iam/auth"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// DraftHandlers expone los borradores offline-first y el flip de
// conectividad que reporta el cliente.
type DraftHandlers struct {
	drafts *draftsrv.DraftService
}

// NewDraftHandlers crea los handlers de borradores
func NewDraftHandlers(drafts *draftsrv.DraftService) *DraftHandlers {
	return &DraftHandlers{drafts: drafts}
}

func (h *DraftHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.AuthMiddleware) {
	drafts := router.Group("/drafts", authMiddleware.Authenticate())

	drafts.Post("/", h.CreateDraft)
	drafts.Get("/", h.ListDrafts)
	drafts.Put("/:id", h.UpdateDraft)
	drafts.Delete("/:id", h.DeleteDraft)
	drafts.Post("/sync", h.SyncDrafts)

	router.Post("/connectivity", authMiddleware.Authenticate(), h.ReportConnectivity)
}

func (h *DraftHandlers) CreateDraft(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req draft.CreateDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := h.drafts.Create(c.Context(), identity.Owner(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *DraftHandlers) ListDrafts(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	drafts, err := h.drafts.List(c.Context(), identity.Owner())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"drafts": drafts, "total": len(drafts)})
}

func (h *DraftHandlers) UpdateDraft(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req draft.UpdateDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := h.drafts.Update(c.Context(), identity.Owner(), kernel.NewDraftID(c.Params("id")), req)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (h *DraftHandlers) DeleteDraft(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	if err := h.drafts.Delete(c.Context(), identity.Owner(), kernel.NewDraftID(c.Params("id"))); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Draft deleted"})
}

func (h *DraftHandlers) SyncDrafts(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	result, err := h.drafts.Sync(c.Context(), identity.Owner())
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// ReportConnectivity registra la transición online/offline que detectó el
// cliente. El pase de offline a online sincroniza la cola del owner que
// reportó; el resultado acompaña la respuesta.
func (h *DraftHandlers) ReportConnectivity(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req struct {
		Online bool `json:"online"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.drafts.ReportConnectivity(c.Context(), identity.Owner(), req.Online)
	if err != nil {
		return err
	}

	resp := fiber.Map{"online": req.Online}
	if result != nil {
		resp["sync"] = result
	}
	return c.JSON(resp)
}
