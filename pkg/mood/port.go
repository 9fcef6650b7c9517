package mood

import (
	"context"
	"time"

	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// Repository define el contrato para la persistencia de registros de ánimo
type Repository interface {
	Insert(ctx context.Context, log MoodLog) error
	FindByOwnerSince(ctx context.Context, owner kernel.OwnerID, since time.Time) ([]MoodLog, error)
}
