package knowledge

import (
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// Knowledge Card Entity
// ============================================================================

// KnowledgeCard es una nota categorizada y etiquetada del owner
type KnowledgeCard struct {
	ID        string         `db:"id" json:"id"`
	OwnerID   kernel.OwnerID `db:"owner_id" json:"owner_id"`
	Category  string         `db:"category" json:"category"`
	Title     string         `db:"title" json:"title"`
	Content   string         `db:"content" json:"content"`
	Tags      pq.StringArray `db:"tags" json:"tags"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Service DTOs
// ============================================================================

// CreateCardRequest crea una tarjeta nueva
type CreateCardRequest struct {
	Category string   `json:"category" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Tags     []string `json:"tags,omitempty"`
}

// UpdateCardRequest edita una tarjeta existente
type UpdateCardRequest struct {
	Category *string  `json:"category,omitempty"`
	Title    *string  `json:"title,omitempty"`
	Content  *string  `json:"content,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("KNOWLEDGE")

var (
	CodeCardNotFound = ErrRegistry.Register("CARD_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Tarjeta no encontrada")
	CodeEmptyTitle   = ErrRegistry.Register("EMPTY_TITLE", errx.TypeValidation, http.StatusBadRequest, "El título no puede estar vacío")
)

func ErrCardNotFound() *errx.Error {
	return ErrRegistry.New(CodeCardNotFound)
}

func ErrEmptyTitle() *errx.Error {
	return ErrRegistry.New(CodeEmptyTitle)
}
