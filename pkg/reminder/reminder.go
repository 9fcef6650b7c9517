package reminder

import (
	"net/http"
	"time"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// Reminder Entity
// ============================================================================

// Reminder es un aviso programado, opcionalmente ligado a la conversación
// donde se creó.
type Reminder struct {
	ID             string         `db:"id" json:"id"`
	OwnerID        kernel.OwnerID `db:"owner_id" json:"owner_id"`
	ConversationID *string        `db:"conversation_id" json:"conversation_id,omitempty"`
	Title          string         `db:"title" json:"title"`
	Description    *string        `db:"description" json:"description,omitempty"`
	RemindAt       time.Time      `db:"remind_at" json:"remind_at"`
	Completed      bool           `db:"completed" json:"completed"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// IsDue reporta si el aviso ya venció y sigue pendiente
func (r *Reminder) IsDue(now time.Time) bool {
	return !r.Completed && !r.RemindAt.After(now)
}

// ============================================================================
// Service DTOs
// ============================================================================

// CreateReminderRequest programa un aviso nuevo
type CreateReminderRequest struct {
	Title          string    `json:"title" validate:"required"`
	Description    *string   `json:"description,omitempty"`
	RemindAt       time.Time `json:"remind_at" validate:"required"`
	ConversationID *string   `json:"conversation_id,omitempty"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("REMINDER")

var (
	CodeReminderNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Recordatorio no encontrado")
	CodeEmptyTitle       = ErrRegistry.Register("EMPTY_TITLE", errx.TypeValidation, http.StatusBadRequest, "El título no puede estar vacío")
)

func ErrReminderNotFound() *errx.Error {
	return ErrRegistry.New(CodeReminderNotFound)
}

func ErrEmptyTitle() *errx.Error {
	return ErrRegistry.New(CodeEmptyTitle)
}
