package user

import (
	"context"
	"time"

	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// Repository define el contrato para la persistencia de usuarios
type Repository interface {
	Insert(ctx context.Context, u User) error
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id kernel.UserID) error
}

// PasswordService define el contrato para hashear y verificar contraseñas
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) bool
}

// TokenClaims son los claims decodificados de un token de acceso
type TokenClaims struct {
	UserID    kernel.UserID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService define el contrato para emitir y validar tokens de acceso
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, email string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// DeviceGate es el límite de cuentas por dispositivo. El incremento reporta
// false cuando el tope ya estaba alcanzado, sin mutar nada.
type DeviceGate interface {
	CanCreateAccount(ctx context.Context, deviceID kernel.DeviceID) (bool, error)
	IncrementAccountCount(ctx context.Context, deviceID kernel.DeviceID) (bool, error)
}
