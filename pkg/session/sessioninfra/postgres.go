package sessioninfra

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/session"
)

const guestDisplayName = "Guest User"

// PostgresGuestRepository implementación de PostgreSQL para ProfileRepository
// y Purger. La purga replica el procedimiento clear-guest-data: borra todas
// las filas que referencian la sesión, en una transacción, hijas primero.
type PostgresGuestRepository struct {
	db *sqlx.DB
}

// NewPostgresGuestRepository crea el repositorio de perfiles de invitado
func NewPostgresGuestRepository(db *sqlx.DB) *PostgresGuestRepository {
	return &PostgresGuestRepository{
		db: db,
	}
}

// CreateGuestProfile inserta la fila de perfil espejo de una sesión
func (r *PostgresGuestRepository) CreateGuestProfile(ctx context.Context, id kernel.SessionID, expiresAt time.Time) error {
	query := `
		INSERT INTO profiles (id, display_name, is_guest, expires_at, created_at)
		VALUES ($1, $2, TRUE, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, id.String(), guestDisplayName, expiresAt, time.Now())
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			// Idempotent: the profile row for this session already exists.
			return nil
		}
		return errx.Wrap(err, "failed to create guest profile", errx.TypeInternal).
			WithDetail("session_id", id.String())
	}

	return nil
}

// FindExpiredGuestProfiles lista los ids de perfiles de invitado vencidos
func (r *PostgresGuestRepository) FindExpiredGuestProfiles(ctx context.Context, before time.Time) ([]kernel.SessionID, error) {
	query := `
		SELECT id FROM profiles
		WHERE is_guest = TRUE AND expires_at < $1
		ORDER BY expires_at ASC`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, before); err != nil {
		return nil, errx.Wrap(err, "failed to find expired guest profiles", errx.TypeInternal)
	}

	result := make([]kernel.SessionID, len(ids))
	for i, id := range ids {
		result[i] = kernel.NewSessionID(id)
	}
	return result, nil
}

// PurgeSessionData borra en cascada todo lo que referencia la sesión:
// mensajes, conversaciones, borradores, registros de ánimo, recordatorios,
// tarjetas de conocimiento y por último el perfil.
func (r *PostgresGuestRepository) PurgeSessionData(ctx context.Context, id kernel.SessionID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errx.Wrap(err, "failed to begin purge transaction", errx.TypeInternal).
			WithDetail("session_id", id.String())
	}
	defer tx.Rollback()

	owner := id.String()

	// Children before parents: messages reference conversations.
	statements := []string{
		`DELETE FROM messages WHERE conversation_id IN (SELECT id FROM conversations WHERE owner_id = $1)`,
		`DELETE FROM conversations WHERE owner_id = $1`,
		`DELETE FROM drafts WHERE owner_id = $1`,
		`DELETE FROM mood_logs WHERE owner_id = $1`,
		`DELETE FROM reminders WHERE owner_id = $1`,
		`DELETE FROM knowledge_cards WHERE owner_id = $1`,
		`DELETE FROM profiles WHERE id = $1 AND is_guest = TRUE`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, owner); err != nil {
			return errx.Wrap(err, "failed to purge guest session data", errx.TypeInternal).
				WithDetail("session_id", id.String())
		}
	}

	if err := tx.Commit(); err != nil {
		return errx.Wrap(err, "failed to commit purge transaction", errx.TypeInternal).
			WithDetail("session_id", id.String())
	}

	return nil
}

var (
	_ session.ProfileRepository = (*PostgresGuestRepository)(nil)
	_ session.Purger            = (*PostgresGuestRepository)(nil)
)
