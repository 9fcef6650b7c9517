package donationsrv

import (
	"context"
	"sync"

	"github.com/siivi-app/siivi-server/pkg/donation"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/kv"
)

const counterKeyPrefix = "message_counter:"
const flagKeyPrefix = "donation_flag:"

// MessageCounterService cuenta los mensajes enviados por dispositivo y
// levanta la bandera de donación una vez por cruce de intervalo. Sin red ni
// asincronía: dos campos persistidos y una condición de disparo.
type MessageCounterService struct {
	store    kv.Store
	interval int

	mu sync.Mutex
}

// NewMessageCounterService crea el contador de mensajes
func NewMessageCounterService(store kv.Store, interval int) *MessageCounterService {
	return &MessageCounterService{
		store:    store,
		interval: interval,
	}
}

func counterKey(id kernel.DeviceID) string { return counterKeyPrefix + id.String() }
func flagKey(id kernel.DeviceID) string    { return flagKeyPrefix + id.String() }

func (s *MessageCounterService) load(ctx context.Context, id kernel.DeviceID) (*donation.CounterState, error) {
	var state donation.CounterState
	if err := s.store.Get(ctx, counterKey(id), &state); err != nil {
		if kv.IsNotFound(err) {
			return &donation.CounterState{}, nil
		}
		return nil, errx.Wrap(err, "failed to read message counter", errx.TypeInternal)
	}
	return &state, nil
}

func (s *MessageCounterService) flagRaised(ctx context.Context, id kernel.DeviceID) bool {
	var raised bool
	if err := s.store.Get(ctx, flagKey(id), &raised); err != nil {
		return false
	}
	return raised
}

// Increment avanza el contador y persiste el estado completo siempre; la
// bandera sólo se levanta cuando el avance cruza un intervalo nuevo.
func (s *MessageCounterService) Increment(ctx context.Context, id kernel.DeviceID) (*donation.CounterResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	shouldShow := state.Advance(s.interval)
	if err := s.store.Set(ctx, counterKey(id), state); err != nil {
		return nil, errx.Wrap(err, "failed to persist message counter", errx.TypeInternal)
	}

	if shouldShow {
		if err := s.store.Set(ctx, flagKey(id), true); err != nil {
			return nil, errx.Wrap(err, "failed to raise donation flag", errx.TypeInternal)
		}
	}

	return &donation.CounterResponse{
		Count:        state.Count,
		ShowDonation: s.flagRaised(ctx, id),
	}, nil
}

// Hide baja la bandera de donación sin tocar los contadores
func (s *MessageCounterService) Hide(ctx context.Context, id kernel.DeviceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, flagKey(id))
}

// Reset vuelve el contador a cero. Acción explícita del usuario (por
// ejemplo, borrado de cuenta), nunca automática.
func (s *MessageCounterService) Reset(ctx context.Context, id kernel.DeviceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &donation.CounterState{}
	if err := s.store.Set(ctx, counterKey(id), state); err != nil {
		return errx.Wrap(err, "failed to reset message counter", errx.TypeInternal)
	}
	return s.store.Delete(ctx, flagKey(id))
}

// Status retorna el estado actual sin mutar nada
func (s *MessageCounterService) Status(ctx context.Context, id kernel.DeviceID) (*donation.CounterResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	return &donation.CounterResponse{
		Count:        state.Count,
		ShowDonation: s.flagRaised(ctx, id),
	}, nil
}
