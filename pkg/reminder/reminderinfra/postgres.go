package reminderinfra

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/reminder"
)

// PostgresReminderRepository implementación de PostgreSQL para
// reminder.Repository
type PostgresReminderRepository struct {
	db *sqlx.DB
}

// NewPostgresReminderRepository crea el repositorio de recordatorios
func NewPostgresReminderRepository(db *sqlx.DB) reminder.Repository {
	return &PostgresReminderRepository{
		db: db,
	}
}

// Insert inserta un recordatorio
func (r *PostgresReminderRepository) Insert(ctx context.Context, rem reminder.Reminder) error {
	query := `
		INSERT INTO reminders (id, owner_id, conversation_id, title, description, remind_at, completed, created_at)
		VALUES (:id, :owner_id, :conversation_id, :title, :description, :remind_at, :completed, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, rem)
	if err != nil {
		return errx.Wrap(err, "failed to insert reminder", errx.TypeInternal).
			WithDetail("reminder_id", rem.ID)
	}

	return nil
}

// FindPendingByOwner lista los recordatorios pendientes, próximo primero
func (r *PostgresReminderRepository) FindPendingByOwner(ctx context.Context, owner kernel.OwnerID) ([]reminder.Reminder, error) {
	query := `
		SELECT id, owner_id, conversation_id, title, description, remind_at, completed, created_at
		FROM reminders
		WHERE owner_id = $1 AND completed = FALSE
		ORDER BY remind_at ASC`

	var reminders []reminder.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to find pending reminders", errx.TypeInternal).
			WithDetail("owner_id", owner.String())
	}

	return reminders, nil
}

// FindDue lista los recordatorios vencidos y pendientes de todos los owners
func (r *PostgresReminderRepository) FindDue(ctx context.Context, before time.Time) ([]reminder.Reminder, error) {
	query := `
		SELECT id, owner_id, conversation_id, title, description, remind_at, completed, created_at
		FROM reminders
		WHERE completed = FALSE AND remind_at <= $1
		ORDER BY remind_at ASC`

	var reminders []reminder.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, before); err != nil {
		return nil, errx.Wrap(err, "failed to find due reminders", errx.TypeInternal)
	}

	return reminders, nil
}

// MarkComplete marca un recordatorio como atendido
func (r *PostgresReminderRepository) MarkComplete(ctx context.Context, id string, owner kernel.OwnerID) error {
	query := `UPDATE reminders SET completed = TRUE WHERE id = $1 AND owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, owner.String())
	if err != nil {
		return errx.Wrap(err, "failed to complete reminder", errx.TypeInternal).
			WithDetail("reminder_id", id)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return reminder.ErrReminderNotFound().WithDetail("reminder_id", id)
	}

	return nil
}

// Delete borra un recordatorio
func (r *PostgresReminderRepository) Delete(ctx context.Context, id string, owner kernel.OwnerID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1 AND owner_id = $2`, id, owner.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete reminder", errx.TypeInternal).
			WithDetail("reminder_id", id)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return reminder.ErrReminderNotFound().WithDetail("reminder_id", id)
	}

	return nil
}
