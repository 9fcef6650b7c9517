package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/siivi-app/siivi-server/pkg/iam"
	"github.com/siivi-app/siivi-server/pkg/iam/user"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/session"
)

// Headers del protocolo de invitados
const (
	HeaderDeviceID     = "X-Device-ID"
	HeaderGuestSession = "X-Guest-Session"
)

// GuestSessionLoader resuelve la sesión de invitado activa de un dispositivo
type GuestSessionLoader interface {
	Load(ctx context.Context, deviceID kernel.DeviceID) (*session.GuestSession, error)
}

// AuthMiddleware resuelve la identidad del llamador: un Bearer JWT para
// usuarios registrados, o el par X-Device-ID / X-Guest-Session para
// invitados. El id de sesión del header debe coincidir con la sesión activa
// del dispositivo; una sesión vencida o ajena no autentica.
type AuthMiddleware struct {
	tokenService user.TokenService
	sessions     GuestSessionLoader
}

// NewAuthMiddleware crea el middleware de autenticación
func NewAuthMiddleware(tokenService user.TokenService, sessions GuestSessionLoader) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		sessions:     sessions,
	}
}

// Authenticate exige una identidad válida, de usuario o de invitado
func (am *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := extractBearerToken(c); token != "" {
			return am.authenticateJWT(c, token)
		}

		return am.authenticateGuest(c)
	}
}

// RequireUser exige un usuario registrado; los invitados reciben 403
func (am *AuthMiddleware) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := GetIdentity(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": iam.ErrUnauthorized().Error(),
			})
		}

		if identity.IsGuest() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": iam.ErrForbidden().Error(),
			})
		}

		return c.Next()
	}
}

func (am *AuthMiddleware) authenticateJWT(c *fiber.Ctx, token string) error {
	claims, err := am.tokenService.ValidateAccessToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	identity := &iam.Identity{
		UserID:   claims.UserID,
		DeviceID: kernel.NewDeviceID(c.Get(HeaderDeviceID)),
	}

	c.Locals("identity", identity)
	return c.Next()
}

func (am *AuthMiddleware) authenticateGuest(c *fiber.Ctx) error {
	deviceHeader := c.Get(HeaderDeviceID)
	sessionHeader := c.Get(HeaderGuestSession)
	if deviceHeader == "" || sessionHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": iam.ErrUnauthorized().Error(),
		})
	}

	deviceID := kernel.NewDeviceID(deviceHeader)
	active, err := am.sessions.Load(c.Context(), deviceID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": iam.ErrUnauthorized().Error(),
		})
	}
	if active == nil || active.ID.String() != sessionHeader {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": session.ErrNoActiveSession().Error(),
		})
	}

	identity := &iam.Identity{
		SessionID: active.ID,
		DeviceID:  deviceID,
	}

	c.Locals("identity", identity)
	return c.Next()
}

func extractBearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1]
		}
	}

	return c.Cookies("access_token")
}

// GetIdentity helper to extract the caller identity from Fiber
func GetIdentity(c *fiber.Ctx) (*iam.Identity, bool) {
	identity, ok := c.Locals("identity").(*iam.Identity)
	return identity, ok && identity != nil && identity.IsValid()
}
