package remindersrv

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/reminder"
)

// ReminderService programa, lista y completa recordatorios
type ReminderService struct {
	repo reminder.Repository
	now  func() time.Time
}

// NewReminderService crea el servicio de recordatorios
func NewReminderService(repo reminder.Repository) *ReminderService {
	return &ReminderService{
		repo: repo,
		now:  time.Now,
	}
}

// NewReminderServiceWithNow permite inyectar el reloj (tests)
func NewReminderServiceWithNow(repo reminder.Repository, now func() time.Time) *ReminderService {
	s := NewReminderService(repo)
	s.now = now
	return s
}

// Create programa un recordatorio nuevo
func (s *ReminderService) Create(ctx context.Context, owner kernel.OwnerID, req reminder.CreateReminderRequest) (*reminder.Reminder, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, reminder.ErrEmptyTitle()
	}

	r := reminder.Reminder{
		ID:             uuid.NewString(),
		OwnerID:        owner,
		ConversationID: req.ConversationID,
		Title:          req.Title,
		Description:    req.Description,
		RemindAt:       req.RemindAt,
		Completed:      false,
		CreatedAt:      s.now(),
	}

	if err := s.repo.Insert(ctx, r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListPending retorna los recordatorios pendientes, próximo primero
func (s *ReminderService) ListPending(ctx context.Context, owner kernel.OwnerID) ([]reminder.Reminder, error) {
	return s.repo.FindPendingByOwner(ctx, owner)
}

// Complete marca un recordatorio como atendido
func (s *ReminderService) Complete(ctx context.Context, owner kernel.OwnerID, id string) error {
	return s.repo.MarkComplete(ctx, id, owner)
}

// Delete borra un recordatorio
func (s *ReminderService) Delete(ctx context.Context, owner kernel.OwnerID, id string) error {
	return s.repo.Delete(ctx, id, owner)
}
