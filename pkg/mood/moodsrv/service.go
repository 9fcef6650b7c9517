package moodsrv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/mood"
)

// defaultWindowDays es la ventana de consulta cuando el caller no pide otra
const defaultWindowDays = 30

// MoodService registra estados de ánimo y calcula sus agregados
type MoodService struct {
	repo mood.Repository
	now  func() time.Time
}

// NewMoodService crea el servicio de mood tracking
func NewMoodService(repo mood.Repository) *MoodService {
	return &MoodService{
		repo: repo,
		now:  time.Now,
	}
}

// NewMoodServiceWithNow permite inyectar el reloj (tests)
func NewMoodServiceWithNow(repo mood.Repository, now func() time.Time) *MoodService {
	s := NewMoodService(repo)
	s.now = now
	return s
}

// Log registra un estado de ánimo
func (s *MoodService) Log(ctx context.Context, owner kernel.OwnerID, req mood.LogMoodRequest) (*mood.MoodLog, error) {
	if !mood.ValidMood(req.Mood) {
		return nil, mood.ErrInvalidMood().WithDetail("mood", string(req.Mood))
	}
	if req.Intensity < 1 || req.Intensity > 10 {
		return nil, mood.ErrInvalidIntensity().WithDetail("intensity", req.Intensity)
	}

	log := mood.MoodLog{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Mood:      req.Mood,
		Intensity: req.Intensity,
		Note:      req.Note,
		CreatedAt: s.now(),
	}

	if err := s.repo.Insert(ctx, log); err != nil {
		return nil, err
	}
	return &log, nil
}

// History retorna los registros de los últimos days días, más reciente primero
func (s *MoodService) History(ctx context.Context, owner kernel.OwnerID, days int) ([]mood.MoodLog, error) {
	if days <= 0 {
		days = defaultWindowDays
	}
	since := s.now().AddDate(0, 0, -days)
	return s.repo.FindByOwnerSince(ctx, owner, since)
}

// Insights agrega la ventana de registros. Retorna nil sin registros.
func (s *MoodService) Insights(ctx context.Context, owner kernel.OwnerID, days int) (*mood.Insights, error) {
	logs, err := s.History(ctx, owner, days)
	if err != nil {
		return nil, err
	}
	return mood.ComputeInsights(logs), nil
}
