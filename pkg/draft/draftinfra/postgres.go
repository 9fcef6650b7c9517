package draftinfra

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/siivi-app/siivi-server/pkg/draft"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// PostgresDraftRepository implementación de PostgreSQL para draft.Repository
type PostgresDraftRepository struct {
	db *sqlx.DB
}

// NewPostgresDraftRepository crea el repositorio de borradores
func NewPostgresDraftRepository(db *sqlx.DB) draft.Repository {
	return &PostgresDraftRepository{
		db: db,
	}
}

// Insert inserta un borrador. Re-insertar el mismo id es un no-op para que
// un reintento de sincronización nunca duplique.
func (r *PostgresDraftRepository) Insert(ctx context.Context, d draft.Draft) error {
	query := `
		INSERT INTO drafts (id, owner_id, title, content, type, synced, created_at, updated_at)
		VALUES (:id, :owner_id, :title, :content, :type, :synced, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, d)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil
		}
		return errx.Wrap(err, "failed to insert draft", errx.TypeInternal).
			WithDetail("draft_id", d.ID.String())
	}

	return nil
}

// FindByOwner lista los borradores de un owner, más reciente primero
func (r *PostgresDraftRepository) FindByOwner(ctx context.Context, owner kernel.OwnerID) ([]draft.Draft, error) {
	query := `
		SELECT id, owner_id, title, content, type, synced, created_at, updated_at
		FROM drafts
		WHERE owner_id = $1
		ORDER BY updated_at DESC`

	var drafts []draft.Draft
	if err := r.db.SelectContext(ctx, &drafts, query, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to find drafts by owner", errx.TypeInternal).
			WithDetail("owner_id", owner.String())
	}

	return drafts, nil
}

// FindByID busca un borrador por id y owner
func (r *PostgresDraftRepository) FindByID(ctx context.Context, id kernel.DraftID, owner kernel.OwnerID) (*draft.Draft, error) {
	query := `
		SELECT id, owner_id, title, content, type, synced, created_at, updated_at
		FROM drafts
		WHERE id = $1 AND owner_id = $2`

	var d draft.Draft
	err := r.db.GetContext(ctx, &d, query, id.String(), owner.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, draft.ErrDraftNotFound().WithDetail("draft_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find draft by id", errx.TypeInternal).
			WithDetail("draft_id", id.String())
	}

	return &d, nil
}

// Update actualiza un borrador existente
func (r *PostgresDraftRepository) Update(ctx context.Context, d draft.Draft) error {
	query := `
		UPDATE drafts SET
			title = :title,
			content = :content,
			type = :type,
			synced = :synced,
			updated_at = :updated_at
		WHERE id = :id AND owner_id = :owner_id`

	result, err := r.db.NamedExecContext(ctx, query, d)
	if err != nil {
		return errx.Wrap(err, "failed to update draft", errx.TypeInternal).
			WithDetail("draft_id", d.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return draft.ErrDraftNotFound().WithDetail("draft_id", d.ID.String())
	}

	return nil
}

// Delete elimina un borrador
func (r *PostgresDraftRepository) Delete(ctx context.Context, id kernel.DraftID, owner kernel.OwnerID) error {
	query := `DELETE FROM drafts WHERE id = $1 AND owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, id.String(), owner.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete draft", errx.TypeInternal).
			WithDetail("draft_id", id.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return draft.ErrDraftNotFound().WithDetail("draft_id", id.String())
	}

	return nil
}
