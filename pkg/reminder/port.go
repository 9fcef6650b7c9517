package reminder

import (
	"context"
	"time"

	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// Repository define el contrato para la persistencia de recordatorios
type Repository interface {
	Insert(ctx context.Context, r Reminder) error
	FindPendingByOwner(ctx context.Context, owner kernel.OwnerID) ([]Reminder, error)
	FindDue(ctx context.Context, before time.Time) ([]Reminder, error)
	MarkComplete(ctx context.Context, id string, owner kernel.OwnerID) error
	Delete(ctx context.Context, id string, owner kernel.OwnerID) error
}

// Notifier entrega el aviso de un recordatorio vencido
type Notifier interface {
	NotifyDue(ctx context.Context, r Reminder) error
}
