package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// User Entity
// ============================================================================

// User es la entidad de un usuario registrado. DeviceID es la huella del
// dispositivo desde el que se registró, para el límite de cuentas.
type User struct {
	ID           kernel.UserID   `db:"id" json:"id"`
	Email        string          `db:"email" json:"email"`
	DisplayName  string          `db:"display_name" json:"display_name"`
	PasswordHash string          `db:"password_hash" json:"-"`
	DeviceID     kernel.DeviceID `db:"device_id" json:"-"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// NormalizeEmail deja el email en la forma canónica que se persiste
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateProfile actualiza la información del perfil
func (u *User) UpdateProfile(displayName string, now time.Time) {
	if displayName != "" {
		u.DisplayName = displayName
	}
	u.UpdatedAt = now
}

// ============================================================================
// DTOs
// ============================================================================

// UserDetailsDTO contiene información básica de un usuario para otros módulos
type UserDetailsDTO struct {
	ID          kernel.UserID `json:"id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"display_name"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ToDTO convierte la entidad User a UserDetailsDTO
func (u *User) ToDTO() UserDetailsDTO {
	return UserDetailsDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// ============================================================================
// Service DTOs
// ============================================================================

// RegisterRequest representa la petición de registro. DeviceID es la huella
// calculada del dispositivo; el registro pasa por el límite de cuentas.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required,min=2"`
	DeviceID    string `json:"device_id" validate:"required"`
}

// LoginRequest representa la petición de login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest para editar el perfil propio
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=2"`
}

// AuthResponse es el resultado de un registro o login exitoso
type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	User        UserDetailsDTO `json:"user"`
}

// ============================================================================
// Error Registry - Errores específicos de User
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

// Códigos de error
var (
	CodeUserNotFound       = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Usuario no encontrado")
	CodeUserAlreadyExists  = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "El usuario ya existe")
	CodeInvalidCredentials = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Credenciales inválidas")
	CodeWeakPassword       = ErrRegistry.Register("WEAK_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "La contraseña debe tener al menos 8 caracteres")
)

// Helper functions para crear errores
func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrUserAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeUserAlreadyExists)
}

func ErrInvalidCredentials() *errx.Error {
	return ErrRegistry.New(CodeInvalidCredentials)
}

func ErrWeakPassword() *errx.Error {
	return ErrRegistry.New(CodeWeakPassword)
}
