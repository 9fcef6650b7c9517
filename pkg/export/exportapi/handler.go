package exportapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/export/exportsrv"
	"github.com/siivi-app/siivi-server/pkg/iam"
	"github.com/siivi-app/siivi-server/pkg/iam/auth"
)

// ExportHandlers expone la exportación de datos y el borrado de cuentas
type ExportHandlers struct {
	service *exportsrv.ExportService
}

// NewExportHandlers crea los handlers de exportación
func NewExportHandlers(service *exportsrv.ExportService) *ExportHandlers {
	return &ExportHandlers{service: service}
}

func (h *ExportHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.AuthMiddleware) {
	exports := router.Group("/export", authMiddleware.Authenticate())

	exports.Post("/", h.Export)
	exports.Get("/download", h.Download)

	router.Delete("/account", authMiddleware.Authenticate(), authMiddleware.RequireUser(), h.DeleteAccount)
}

// Export genera el volcado de datos del llamador
func (h *ExportHandlers) Export(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	result, err := h.service.Export(c.Context(), identity.Owner())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// Download entrega un archivo de exportación propio. Sólo se sirven paths
// bajo el prefijo del llamador.
func (h *ExportHandlers) Download(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	path := c.Query("path")
	prefix := "exports/" + identity.Owner().String() + "/"
	if !strings.HasPrefix(path, prefix) || strings.Contains(path, "..") {
		return errx.New("path is outside the caller's export space", errx.TypeValidation)
	}

	data, err := h.service.Download(c.Context(), path)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="siivi-export.json"`)
	return c.Send(data)
}

// DeleteAccount borra la cuenta del llamador y todo lo que cuelga de ella
func (h *ExportHandlers) DeleteAccount(c *fiber.Ctx) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	if err := h.service.DeleteAccount(c.Context(), identity.UserID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Account deleted"})
}
