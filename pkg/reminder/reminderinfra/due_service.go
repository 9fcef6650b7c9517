package reminderinfra

import (
	"context"
	"time"

	"github.com/siivi-app/siivi-server/pkg/logx"
	"github.com/siivi-app/siivi-server/pkg/reminder"
)

// DueService servicio en background: cada tick busca los recordatorios
// vencidos, los notifica y los marca como atendidos. Un recordatorio se
// notifica a lo sumo una vez porque la marca se escribe recién tras la
// notificación.
type DueService struct {
	repo     reminder.Repository
	notifier reminder.Notifier
	interval time.Duration
}

// NewDueService crea un nuevo servicio de recordatorios vencidos
func NewDueService(repo reminder.Repository, notifier reminder.Notifier, interval time.Duration) *DueService {
	return &DueService{
		repo:     repo,
		notifier: notifier,
		interval: interval,
	}
}

// Start inicia el chequeo periódico
func (s *DueService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runCheck(ctx)

	for {
		select {
		case <-ctx.Done():
			logx.Info("Reminder due service stopped")
			return
		case <-ticker.C:
			s.runCheck(ctx)
		}
	}
}

// runCheck ejecuta una pasada sobre los recordatorios vencidos
func (s *DueService) runCheck(ctx context.Context) {
	due, err := s.repo.FindDue(ctx, time.Now())
	if err != nil {
		logx.Errorf("Error listing due reminders: %v", err)
		return
	}

	for _, r := range due {
		if err := s.notifier.NotifyDue(ctx, r); err != nil {
			logx.Errorf("Error notifying reminder %s: %v", r.ID, err)
			continue
		}
		if err := s.repo.MarkComplete(ctx, r.ID, r.OwnerID); err != nil {
			logx.Errorf("Error completing reminder %s: %v", r.ID, err)
		}
	}
}

// LogNotifier entrega los avisos por el log estructurado. El transporte de
// push hacia el cliente queda detrás del puerto Notifier.
type LogNotifier struct{}

// NewLogNotifier crea el notificador por log
func NewLogNotifier() reminder.Notifier {
	return &LogNotifier{}
}

// NotifyDue registra el aviso vencido
func (n *LogNotifier) NotifyDue(_ context.Context, r reminder.Reminder) error {
	logx.WithFields(logx.Fields{
		"reminder_id": r.ID,
		"owner_id":    r.OwnerID.String(),
	}).Infof("Reminder due: %s", r.Title)
	return nil
}
