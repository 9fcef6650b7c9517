package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/iam"
	"github.com/siivi-app/siivi-server/pkg/iam/user"
	"github.com/siivi-app/siivi-server/pkg/iam/user/usersrv"
)

// AuthHandlers maneja registro, login y perfil propio
type AuthHandlers struct {
	users *usersrv.UserService
}

// NewAuthHandlers crea los handlers de autenticación
func NewAuthHandlers(users *usersrv.UserService) *AuthHandlers {
	return &AuthHandlers{users: users}
}

func (h *AuthHandlers) RegisterRoutes(router fiber.Router, authMiddleware *AuthMiddleware) {
	authRoutes := router.Group("/auth")

	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)

	me := authRoutes.Group("/me", authMiddleware.Authenticate(), authMiddleware.RequireUser())
	me.Get("/", h.Me)
	me.Put("/", h.UpdateProfile)
}

func (h *AuthHandlers) Register(c *fiber.Ctx) error {
	var req user.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	response, err := h.users.Register(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req user.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	response, err := h.users.Login(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *AuthHandlers) Me(c *fiber.Ctx) error {
	identity, ok := GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	profile, err := h.users.Get(c.Context(), identity.UserID)
	if err != nil {
		return err
	}

	return c.JSON(profile)
}

func (h *AuthHandlers) UpdateProfile(c *fiber.Ctx) error {
	identity, ok := GetIdentity(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req user.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	profile, err := h.users.UpdateProfile(c.Context(), identity.UserID, req)
	if err != nil {
		return err
	}

	return c.JSON(profile)
}
