package sessionsrv

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/kv"
	"github.com/siivi-app/siivi-server/pkg/logx"
	"github.com/siivi-app/siivi-server/pkg/session"
)

const sessionKeyPrefix = "guest_session:"

// Config parametriza el ciclo de vida de las sesiones de invitado
type Config struct {
	SessionDuration time.Duration
	MessageLimit    int
}

// GuestSessionService maneja el ciclo de vida de una sesión de invitado:
// creación todo-o-nada, expiración, cuota de mensajes y teardown con purga
// remota best-effort. Las mutaciones se serializan con un mutex para que dos
// increments rápidos no pisen el mismo contador persistido.
type GuestSessionService struct {
	store    kv.Store
	profiles session.ProfileRepository
	purger   session.Purger
	cfg      Config
	now      func() time.Time

	mu sync.Mutex
}

// NewGuestSessionService crea el servicio de sesiones de invitado
func NewGuestSessionService(
	store kv.Store,
	profiles session.ProfileRepository,
	purger session.Purger,
	cfg Config,
) *GuestSessionService {
	return &GuestSessionService{
		store:    store,
		profiles: profiles,
		purger:   purger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// NewGuestSessionServiceWithNow permite inyectar el reloj (tests)
func NewGuestSessionServiceWithNow(
	store kv.Store,
	profiles session.ProfileRepository,
	purger session.Purger,
	cfg Config,
	now func() time.Time,
) *GuestSessionService {
	s := NewGuestSessionService(store, profiles, purger, cfg)
	s.now = now
	return s
}

func sessionKey(deviceID kernel.DeviceID) string {
	return sessionKeyPrefix + deviceID.String()
}

// Create crea una sesión nueva para el dispositivo. Si ya existe una activa,
// primero la desmonta (purga remota incluida). Todo-o-nada: si el insert del
// perfil remoto falla, el registro local no se persiste.
func (s *GuestSessionService) Create(ctx context.Context, deviceID kernel.DeviceID) (*session.GuestSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing session.GuestSession
	if err := s.store.Get(ctx, sessionKey(deviceID), &existing); err == nil {
		s.teardownLocked(ctx, deviceID, existing.ID)
	} else if !kv.IsNotFound(err) {
		return nil, errx.Wrap(err, "failed to read guest session record", errx.TypeInternal)
	}

	newSession := session.GuestSession{
		ID:           kernel.NewSessionID(uuid.NewString()),
		ExpiresAt:    s.now().Add(s.cfg.SessionDuration),
		MessageCount: 0,
	}

	if err := s.profiles.CreateGuestProfile(ctx, newSession.ID, newSession.ExpiresAt); err != nil {
		return nil, session.ErrCreationFailed().WithCause(err)
	}

	if err := s.store.Set(ctx, sessionKey(deviceID), newSession); err != nil {
		// The profile row exists but the record was never handed out; the
		// expiry sweep will collect it.
		return nil, session.ErrCreationFailed().WithCause(err)
	}

	return &newSession, nil
}

// Load retorna la sesión activa del dispositivo, o nil si no hay ninguna.
// Una sesión vencida nunca se retorna: se desmonta y se reporta ausente.
func (s *GuestSessionService) Load(ctx context.Context, deviceID kernel.DeviceID) (*session.GuestSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored session.GuestSession
	if err := s.store.Get(ctx, sessionKey(deviceID), &stored); err != nil {
		if kv.IsNotFound(err) {
			return nil, nil
		}
		return nil, errx.Wrap(err, "failed to read guest session record", errx.TypeInternal)
	}

	if stored.IsExpired(s.now()) {
		s.teardownLocked(ctx, deviceID, stored.ID)
		return nil, nil
	}

	return &stored, nil
}

// IncrementMessageCount suma uno al contador de la sesión activa.
// No-op si el dispositivo no tiene sesión activa.
func (s *GuestSessionService) IncrementMessageCount(ctx context.Context, deviceID kernel.DeviceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored session.GuestSession
	if err := s.store.Get(ctx, sessionKey(deviceID), &stored); err != nil {
		if kv.IsNotFound(err) {
			return nil
		}
		return errx.Wrap(err, "failed to read guest session record", errx.TypeInternal)
	}

	if stored.IsExpired(s.now()) {
		return nil
	}

	stored.MessageCount++
	return s.store.Set(ctx, sessionKey(deviceID), stored)
}

// IsLimitReached reporta si la sesión activa agotó su cuota de mensajes.
// Sin sesión activa no hay cuota que alcanzar.
func (s *GuestSessionService) IsLimitReached(ctx context.Context, deviceID kernel.DeviceID) (bool, error) {
	active, err := s.Load(ctx, deviceID)
	if err != nil {
		return false, err
	}
	if active == nil {
		return false, nil
	}
	return active.LimitReached(s.cfg.MessageLimit), nil
}

// MessageLimit retorna la cuota configurada
func (s *GuestSessionService) MessageLimit() int {
	return s.cfg.MessageLimit
}

// Teardown purga los datos remotos de la sesión (best-effort) y limpia el
// registro local incondicionalmente.
func (s *GuestSessionService) Teardown(ctx context.Context, deviceID kernel.DeviceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored session.GuestSession
	if err := s.store.Get(ctx, sessionKey(deviceID), &stored); err != nil {
		if kv.IsNotFound(err) {
			return nil
		}
		return errx.Wrap(err, "failed to read guest session record", errx.TypeInternal)
	}

	s.teardownLocked(ctx, deviceID, stored.ID)
	return nil
}

// teardownLocked: la purga remota se intenta primero y sus errores se
// tragan tras loguear; el registro local se limpia siempre para que el
// cliente nunca quede colgado de una sesión muerta.
func (s *GuestSessionService) teardownLocked(ctx context.Context, deviceID kernel.DeviceID, id kernel.SessionID) {
	if err := s.purger.PurgeSessionData(ctx, id); err != nil {
		logx.WithFields(logx.Fields{"session_id": id.String()}).
			Errorf("Best-effort guest data purge failed: %v", err)
	}

	if err := s.store.Delete(ctx, sessionKey(deviceID)); err != nil {
		logx.WithFields(logx.Fields{"device_id": deviceID.String()}).
			Errorf("Failed to clear guest session record: %v", err)
	}
}
