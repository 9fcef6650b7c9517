package knowledgeinfra

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/knowledge"
)

// PostgresKnowledgeRepository implementación de PostgreSQL para
// knowledge.Repository
type PostgresKnowledgeRepository struct {
	db *sqlx.DB
}

// NewPostgresKnowledgeRepository crea el repositorio de tarjetas
func NewPostgresKnowledgeRepository(db *sqlx.DB) knowledge.Repository {
	return &PostgresKnowledgeRepository{
		db: db,
	}
}

// Insert inserta una tarjeta
func (r *PostgresKnowledgeRepository) Insert(ctx context.Context, card knowledge.KnowledgeCard) error {
	query := `
		INSERT INTO knowledge_cards (id, owner_id, category, title, content, tags, created_at, updated_at)
		VALUES (:id, :owner_id, :category, :title, :content, :tags, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, card)
	if err != nil {
		return errx.Wrap(err, "failed to insert knowledge card", errx.TypeInternal).
			WithDetail("card_id", card.ID)
	}

	return nil
}

// FindByOwner lista las tarjetas del owner, edición reciente primero
func (r *PostgresKnowledgeRepository) FindByOwner(ctx context.Context, owner kernel.OwnerID) ([]knowledge.KnowledgeCard, error) {
	query := `
		SELECT id, owner_id, category, title, content, tags, created_at, updated_at
		FROM knowledge_cards
		WHERE owner_id = $1
		ORDER BY updated_at DESC`

	var cards []knowledge.KnowledgeCard
	if err := r.db.SelectContext(ctx, &cards, query, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to find knowledge cards", errx.TypeInternal).
			WithDetail("owner_id", owner.String())
	}

	return cards, nil
}

// FindByID busca una tarjeta por id y owner
func (r *PostgresKnowledgeRepository) FindByID(ctx context.Context, id string, owner kernel.OwnerID) (*knowledge.KnowledgeCard, error) {
	query := `
		SELECT id, owner_id, category, title, content, tags, created_at, updated_at
		FROM knowledge_cards
		WHERE id = $1 AND owner_id = $2`

	var card knowledge.KnowledgeCard
	err := r.db.GetContext(ctx, &card, query, id, owner.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, knowledge.ErrCardNotFound().WithDetail("card_id", id)
		}
		return nil, errx.Wrap(err, "failed to find knowledge card", errx.TypeInternal).
			WithDetail("card_id", id)
	}

	return &card, nil
}

// Search filtra por título, contenido o tag, case-insensitive
func (r *PostgresKnowledgeRepository) Search(ctx context.Context, owner kernel.OwnerID, search string) ([]knowledge.KnowledgeCard, error) {
	query := `
		SELECT id, owner_id, category, title, content, tags, created_at, updated_at
		FROM knowledge_cards
		WHERE owner_id = $1
		  AND (title ILIKE '%' || $2 || '%'
		    OR content ILIKE '%' || $2 || '%'
		    OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE '%' || $2 || '%'))
		ORDER BY updated_at DESC`

	var cards []knowledge.KnowledgeCard
	if err := r.db.SelectContext(ctx, &cards, query, owner.String(), search); err != nil {
		return nil, errx.Wrap(err, "failed to search knowledge cards", errx.TypeInternal).
			WithDetail("owner_id", owner.String())
	}

	return cards, nil
}

// Update actualiza una tarjeta existente
func (r *PostgresKnowledgeRepository) Update(ctx context.Context, card knowledge.KnowledgeCard) error {
	query := `
		UPDATE knowledge_cards SET
			category = :category,
			title = :title,
			content = :content,
			tags = :tags,
			updated_at = :updated_at
		WHERE id = :id AND owner_id = :owner_id`

	result, err := r.db.NamedExecContext(ctx, query, card)
	if err != nil {
		return errx.Wrap(err, "failed to update knowledge card", errx.TypeInternal).
			WithDetail("card_id", card.ID)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return knowledge.ErrCardNotFound().WithDetail("card_id", card.ID)
	}

	return nil
}

// Delete borra una tarjeta
func (r *PostgresKnowledgeRepository) Delete(ctx context.Context, id string, owner kernel.OwnerID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM knowledge_cards WHERE id = $1 AND owner_id = $2`, id, owner.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete knowledge card", errx.TypeInternal).
			WithDetail("card_id", id)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return knowledge.ErrCardNotFound().WithDetail("card_id", id)
	}

	return nil
}
