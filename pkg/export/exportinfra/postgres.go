package exportinfra

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/export"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// PostgresExportRepository implementación de PostgreSQL para el snapshot y
// la purga de un owner.
type PostgresExportRepository struct {
	db *sqlx.DB
}

// NewPostgresExportRepository crea el repositorio de exportación
func NewPostgresExportRepository(db *sqlx.DB) *PostgresExportRepository {
	return &PostgresExportRepository{
		db: db,
	}
}

// CollectByOwner junta todas las filas del owner en un snapshot
func (r *PostgresExportRepository) CollectByOwner(ctx context.Context, owner kernel.OwnerID) (*export.Snapshot, error) {
	snapshot := &export.Snapshot{OwnerID: owner.String()}

	if err := r.db.SelectContext(ctx, &snapshot.Conversations,
		`SELECT id, owner_id, title, created_at, updated_at
		 FROM conversations WHERE owner_id = $1 ORDER BY created_at ASC`, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to collect conversations", errx.TypeInternal)
	}

	if err := r.db.SelectContext(ctx, &snapshot.Messages,
		`SELECT m.id, m.conversation_id, m.role, m.content, m.image_path, m.created_at
		 FROM messages m
		 JOIN conversations c ON c.id = m.conversation_id
		 WHERE c.owner_id = $1 ORDER BY m.created_at ASC`, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to collect messages", errx.TypeInternal)
	}

	if err := r.db.SelectContext(ctx, &snapshot.Drafts,
		`SELECT id, owner_id, title, content, type, synced, created_at, updated_at
		 FROM drafts WHERE owner_id = $1 ORDER BY created_at ASC`, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to collect drafts", errx.TypeInternal)
	}

	if err := r.db.SelectContext(ctx, &snapshot.MoodLogs,
		`SELECT id, owner_id, mood, intensity, note, created_at
		 FROM mood_logs WHERE owner_id = $1 ORDER BY created_at ASC`, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to collect mood logs", errx.TypeInternal)
	}

	if err := r.db.SelectContext(ctx, &snapshot.Reminders,
		`SELECT id, owner_id, conversation_id, title, description, remind_at, completed, created_at
		 FROM reminders WHERE owner_id = $1 ORDER BY created_at ASC`, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to collect reminders", errx.TypeInternal)
	}

	if err := r.db.SelectContext(ctx, &snapshot.Cards,
		`SELECT id, owner_id, category, title, content, tags, created_at, updated_at
		 FROM knowledge_cards WHERE owner_id = $1 ORDER BY created_at ASC`, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to collect knowledge cards", errx.TypeInternal)
	}

	return snapshot, nil
}

// PurgeOwnerData borra todas las filas del owner en una única transacción,
// mensajes antes que conversaciones.
func (r *PostgresExportRepository) PurgeOwnerData(ctx context.Context, owner kernel.OwnerID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errx.Wrap(err, "failed to begin purge transaction", errx.TypeInternal)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM messages WHERE conversation_id IN (SELECT id FROM conversations WHERE owner_id = $1)`,
		`DELETE FROM conversations WHERE owner_id = $1`,
		`DELETE FROM drafts WHERE owner_id = $1`,
		`DELETE FROM mood_logs WHERE owner_id = $1`,
		`DELETE FROM reminders WHERE owner_id = $1`,
		`DELETE FROM knowledge_cards WHERE owner_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, owner.String()); err != nil {
			return errx.Wrap(err, "failed to purge owner data", errx.TypeInternal).
				WithDetail("owner_id", owner.String())
		}
	}

	if err := tx.Commit(); err != nil {
		return errx.Wrap(err, "failed to commit purge transaction", errx.TypeInternal)
	}

	return nil
}

var (
	_ export.SnapshotRepository = (*PostgresExportRepository)(nil)
	_ export.OwnerPurger        = (*PostgresExportRepository)(nil)
)
