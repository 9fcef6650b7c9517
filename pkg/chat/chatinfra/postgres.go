package chatinfra

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/siivi-app/siivi-server/pkg/chat"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// Conversations
// ============================================================================

// PostgresConversationRepository implementación de PostgreSQL para
// chat.ConversationRepository
type PostgresConversationRepository struct {
	db *sqlx.DB
}

// NewPostgresConversationRepository crea el repositorio de conversaciones
func NewPostgresConversationRepository(db *sqlx.DB) chat.ConversationRepository {
	return &PostgresConversationRepository{
		db: db,
	}
}

// Insert inserta una conversación nueva
func (r *PostgresConversationRepository) Insert(ctx context.Context, c chat.Conversation) error {
	query := `
		INSERT INTO conversations (id, owner_id, title, created_at, updated_at)
		VALUES (:id, :owner_id, :title, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return errx.Wrap(err, "failed to insert conversation", errx.TypeInternal).
			WithDetail("conversation_id", c.ID.String())
	}

	return nil
}

// FindByOwner lista las conversaciones de un owner, actividad reciente primero
func (r *PostgresConversationRepository) FindByOwner(ctx context.Context, owner kernel.OwnerID) ([]chat.Conversation, error) {
	query := `
		SELECT id, owner_id, title, created_at, updated_at
		FROM conversations
		WHERE owner_id = $1
		ORDER BY updated_at DESC`

	var convs []chat.Conversation
	if err := r.db.SelectContext(ctx, &convs, query, owner.String()); err != nil {
		return nil, errx.Wrap(err, "failed to find conversations by owner", errx.TypeInternal).
			WithDetail("owner_id", owner.String())
	}

	return convs, nil
}

// FindByID busca una conversación por id y owner
func (r *PostgresConversationRepository) FindByID(ctx context.Context, id kernel.ConversationID, owner kernel.OwnerID) (*chat.Conversation, error) {
	query := `
		SELECT id, owner_id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND owner_id = $2`

	var c chat.Conversation
	err := r.db.GetContext(ctx, &c, query, id.String(), owner.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, chat.ErrConversationNotFound().WithDetail("conversation_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find conversation by id", errx.TypeInternal).
			WithDetail("conversation_id", id.String())
	}

	return &c, nil
}

// Update actualiza título y marca de actividad
func (r *PostgresConversationRepository) Update(ctx context.Context, c chat.Conversation) error {
	query := `
		UPDATE conversations SET
			title = :title,
			updated_at = :updated_at
		WHERE id = :id AND owner_id = :owner_id`

	result, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return errx.Wrap(err, "failed to update conversation", errx.TypeInternal).
			WithDetail("conversation_id", c.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return chat.ErrConversationNotFound().WithDetail("conversation_id", c.ID.String())
	}

	return nil
}

// Delete borra la conversación y sus mensajes en una transacción
func (r *PostgresConversationRepository) Delete(ctx context.Context, id kernel.ConversationID, owner kernel.OwnerID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errx.Wrap(err, "failed to begin transaction", errx.TypeInternal)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = $1`, id.String()); err != nil {
		return errx.Wrap(err, "failed to delete conversation messages", errx.TypeInternal).
			WithDetail("conversation_id", id.String())
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1 AND owner_id = $2`, id.String(), owner.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete conversation", errx.TypeInternal).
			WithDetail("conversation_id", id.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return chat.ErrConversationNotFound().WithDetail("conversation_id", id.String())
	}

	if err := tx.Commit(); err != nil {
		return errx.Wrap(err, "failed to commit transaction", errx.TypeInternal)
	}

	return nil
}

// ============================================================================
// Messages
// ============================================================================

// PostgresMessageRepository implementación de PostgreSQL para
// chat.MessageRepository
type PostgresMessageRepository struct {
	db *sqlx.DB
}

// NewPostgresMessageRepository crea el repositorio de mensajes
func NewPostgresMessageRepository(db *sqlx.DB) chat.MessageRepository {
	return &PostgresMessageRepository{
		db: db,
	}
}

// Insert inserta un mensaje
func (r *PostgresMessageRepository) Insert(ctx context.Context, m chat.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, role, content, image_path, created_at)
		VALUES (:id, :conversation_id, :role, :content, :image_path, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, m)
	if err != nil {
		return errx.Wrap(err, "failed to insert message", errx.TypeInternal).
			WithDetail("message_id", m.ID.String())
	}

	return nil
}

// FindByConversation retorna el historial en orden cronológico
func (r *PostgresMessageRepository) FindByConversation(ctx context.Context, id kernel.ConversationID) ([]chat.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, image_path, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	var msgs []chat.Message
	if err := r.db.SelectContext(ctx, &msgs, query, id.String()); err != nil {
		return nil, errx.Wrap(err, "failed to find messages by conversation", errx.TypeInternal).
			WithDetail("conversation_id", id.String())
	}

	return msgs, nil
}
