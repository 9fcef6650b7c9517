package moodinfra

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/mood"
)

// PostgresMoodRepository implementación de PostgreSQL para mood.Repository
type PostgresMoodRepository struct {
	db *sqlx.DB
}

// NewPostgresMoodRepository crea el repositorio de registros de ánimo
func NewPostgresMoodRepository(db *sqlx.DB) mood.Repository {
	return &PostgresMoodRepository{
		db: db,
	}
}

// Insert inserta un registro de ánimo
func (r *PostgresMoodRepository) Insert(ctx context.Context, log mood.MoodLog) error {
	query := `
		INSERT INTO mood_logs (id, owner_id, mood, intensity, note, created_at)
		VALUES (:id, :owner_id, :mood, :intensity, :note, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, log)
	if err != nil {
		return errx.Wrap(err, "failed to insert mood log", errx.TypeInternal).
			WithDetail("mood_log_id", log.ID)
	}

	return nil
}

// FindByOwnerSince lista los registros desde la fecha dada, reciente primero
func (r *PostgresMoodRepository) FindByOwnerSince(ctx context.Context, owner kernel.OwnerID, since time.Time) ([]mood.MoodLog, error) {
	query := `
		SELECT id, owner_id, mood, intensity, note, created_at
		FROM mood_logs
		WHERE owner_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`

	var logs []mood.MoodLog
	if err := r.db.SelectContext(ctx, &logs, query, owner.String(), since); err != nil {
		return nil, errx.Wrap(err, "failed to find mood logs", errx.TypeInternal).
			WithDetail("owner_id", owner.String())
	}

	return logs, nil
}
