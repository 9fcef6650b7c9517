package devicesrv

import (
	"context"
	"sync"
	"time"

	"github.com/siivi-app/siivi-server/pkg/device"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/kv"
)

const deviceKeyPrefix = "device_info:"

// Config parametriza los límites por dispositivo
type Config struct {
	MaxAccounts          int
	GuestSessionCooldown time.Duration
}

// DeviceLimitService mantiene el registro por dispositivo y aplica los
// gates de creación de cuentas y sesiones de invitado.
type DeviceLimitService struct {
	store kv.Store
	cfg   Config
	now   func() time.Time

	mu sync.Mutex
}

// NewDeviceLimitService crea el servicio de límites por dispositivo
func NewDeviceLimitService(store kv.Store, cfg Config) *DeviceLimitService {
	return &DeviceLimitService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// NewDeviceLimitServiceWithNow permite inyectar el reloj (tests)
func NewDeviceLimitServiceWithNow(store kv.Store, cfg Config, now func() time.Time) *DeviceLimitService {
	s := NewDeviceLimitService(store, cfg)
	s.now = now
	return s
}

func deviceKey(id kernel.DeviceID) string {
	return deviceKeyPrefix + id.String()
}

// load lee el registro del dispositivo, inicializándolo si no existe o si
// está corrupto (parse failure = sin estado previo).
func (s *DeviceLimitService) load(ctx context.Context, id kernel.DeviceID) (*device.DeviceRecord, error) {
	var record device.DeviceRecord
	if err := s.store.Get(ctx, deviceKey(id), &record); err != nil {
		if kv.IsNotFound(err) {
			return &device.DeviceRecord{DeviceID: id}, nil
		}
		return nil, errx.Wrap(err, "failed to read device record", errx.TypeInternal)
	}
	record.DeviceID = id
	return &record, nil
}

// Get retorna el registro actual del dispositivo
func (s *DeviceLimitService) Get(ctx context.Context, id kernel.DeviceID) (*device.DeviceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, id)
}

// CanCreateAccount reporta si el dispositivo puede registrar otra cuenta
func (s *DeviceLimitService) CanCreateAccount(ctx context.Context, id kernel.DeviceID) (bool, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return record.CanCreateAccount(s.cfg.MaxAccounts), nil
}

// IncrementAccountCount registra una cuenta creada. Retorna false sin mutar
// nada si el tope ya se alcanzó. Exactamente un incremento por creación
// exitosa: el caller no debe reintentarlo ante fallas posteriores.
func (s *DeviceLimitService) IncrementAccountCount(ctx context.Context, id kernel.DeviceID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}

	if !record.CanCreateAccount(s.cfg.MaxAccounts) {
		return false, nil
	}

	record.AccountCount++
	if err := s.store.Set(ctx, deviceKey(id), record); err != nil {
		return false, errx.Wrap(err, "failed to persist device record", errx.TypeInternal)
	}
	return true, nil
}

// CanCreateGuestSession reporta si el período de espera ya pasó
func (s *DeviceLimitService) CanCreateGuestSession(ctx context.Context, id kernel.DeviceID) (bool, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return record.CanCreateGuestSession(s.cfg.GuestSessionCooldown, s.now()), nil
}

// RecordGuestSession registra la creación de una sesión de invitado.
// Retorna false sin mutar nada si el período de espera sigue activo.
func (s *DeviceLimitService) RecordGuestSession(ctx context.Context, id kernel.DeviceID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}

	now := s.now()
	if !record.CanCreateGuestSession(s.cfg.GuestSessionCooldown, now) {
		return false, nil
	}

	record.LastGuestSession = &now
	record.GuestSessionsThisWeek++
	if err := s.store.Set(ctx, deviceKey(id), record); err != nil {
		return false, errx.Wrap(err, "failed to persist device record", errx.TypeInternal)
	}
	return true, nil
}

// Status construye la vista de API del dispositivo
func (s *DeviceLimitService) Status(ctx context.Context, id kernel.DeviceID) (*device.DeviceStatusResponse, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &device.DeviceStatusResponse{
		DeviceID:              record.DeviceID.String(),
		AccountCount:          record.AccountCount,
		MaxAccounts:           s.cfg.MaxAccounts,
		CanCreateAccount:      record.CanCreateAccount(s.cfg.MaxAccounts),
		CanCreateGuestSession: record.CanCreateGuestSession(s.cfg.GuestSessionCooldown, s.now()),
		LastGuestSession:      record.LastGuestSession,
		GuestSessionsThisWeek: record.GuestSessionsThisWeek,
	}, nil
}
