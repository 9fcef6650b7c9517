package usersrv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/siivi-app/siivi-server/pkg/device"
	"github.com/siivi-app/siivi-server/pkg/iam/user"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/logx"
)

// UserService maneja registro, login y perfil de usuarios registrados
type UserService struct {
	repo      user.Repository
	passwords user.PasswordService
	tokens    user.TokenService
	devices   user.DeviceGate
	now       func() time.Time
}

// NewUserService crea el servicio de usuarios
func NewUserService(
	repo user.Repository,
	passwords user.PasswordService,
	tokens user.TokenService,
	devices user.DeviceGate,
) *UserService {
	return &UserService{
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
		devices:   devices,
		now:       time.Now,
	}
}

// NewUserServiceWithNow permite inyectar el reloj (tests)
func NewUserServiceWithNow(
	repo user.Repository,
	passwords user.PasswordService,
	tokens user.TokenService,
	devices user.DeviceGate,
	now func() time.Time,
) *UserService {
	s := NewUserService(repo, passwords, tokens, devices)
	s.now = now
	return s
}

// Register crea una cuenta nueva. El dispositivo pasa por el límite de
// cuentas: el contador se incrementa exactamente una vez, recién cuando la
// fila del usuario existe, y nunca se reintenta.
func (s *UserService) Register(ctx context.Context, req user.RegisterRequest) (*user.AuthResponse, error) {
	if len(req.Password) < 8 {
		return nil, user.ErrWeakPassword()
	}

	deviceID := kernel.NewDeviceID(req.DeviceID)
	allowed, err := s.devices.CanCreateAccount(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, device.ErrAccountLimitReached().WithDetail("device_id", req.DeviceID)
	}

	email := user.NormalizeEmail(req.Email)
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, user.ErrUserAlreadyExists().WithDetail("email", email)
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	newUser := user.User{
		ID:           kernel.NewUserID(uuid.NewString()),
		Email:        email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		DeviceID:     deviceID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, newUser); err != nil {
		return nil, err
	}

	if ok, err := s.devices.IncrementAccountCount(ctx, deviceID); err != nil || !ok {
		// The account exists; a failed counter update must not undo it.
		logx.WithFields(logx.Fields{"device_id": req.DeviceID}).
			Warnf("Account created but device counter was not advanced (ok=%v, err=%v)", ok, err)
	}

	token, err := s.tokens.GenerateAccessToken(newUser.ID, newUser.Email)
	if err != nil {
		return nil, err
	}

	return &user.AuthResponse{
		AccessToken: token,
		User:        newUser.ToDTO(),
	}, nil
}

// Login autentica por email y contraseña. Email desconocido y contraseña
// incorrecta responden igual.
func (s *UserService) Login(ctx context.Context, req user.LoginRequest) (*user.AuthResponse, error) {
	found, err := s.repo.FindByEmail(ctx, user.NormalizeEmail(req.Email))
	if err != nil {
		return nil, user.ErrInvalidCredentials()
	}

	if !s.passwords.VerifyPassword(found.PasswordHash, req.Password) {
		return nil, user.ErrInvalidCredentials()
	}

	token, err := s.tokens.GenerateAccessToken(found.ID, found.Email)
	if err != nil {
		return nil, err
	}

	return &user.AuthResponse{
		AccessToken: token,
		User:        found.ToDTO(),
	}, nil
}

// Get retorna el perfil de un usuario
func (s *UserService) Get(ctx context.Context, id kernel.UserID) (*user.UserDetailsDTO, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := found.ToDTO()
	return &dto, nil
}

// UpdateProfile edita el perfil propio
func (s *UserService) UpdateProfile(ctx context.Context, id kernel.UserID, req user.UpdateProfileRequest) (*user.UserDetailsDTO, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		found.UpdateProfile(*req.DisplayName, s.now())
	}

	if err := s.repo.Update(ctx, *found); err != nil {
		return nil, err
	}

	dto := found.ToDTO()
	return &dto, nil
}
