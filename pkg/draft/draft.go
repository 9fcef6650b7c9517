package draft

import (
	"net/http"
	"time"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// Draft Entity
// ============================================================================

// DraftType clasifica el contenido de un borrador
type DraftType string

const (
	DraftTypeNote  DraftType = "note"
	DraftTypeBlog  DraftType = "blog"
	DraftTypeCode  DraftType = "code"
	DraftTypeEmail DraftType = "email"
)

// ValidType reporta si t es un tipo de borrador conocido
func ValidType(t DraftType) bool {
	switch t {
	case DraftTypeNote, DraftTypeBlog, DraftTypeCode, DraftTypeEmail:
		return true
	}
	return false
}

// Draft es una unidad de contenido editada localmente. Synced refleja dónde
// vive la copia autoritativa: false mientras sólo exista en la cola offline.
type Draft struct {
	ID        kernel.DraftID `db:"id" json:"id"`
	OwnerID   kernel.OwnerID `db:"owner_id" json:"owner_id"`
	Title     string         `db:"title" json:"title"`
	Content   string         `db:"content" json:"content"`
	Type      DraftType      `db:"type" json:"type"`
	Synced    bool           `db:"synced" json:"synced"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// DTOs
// ============================================================================

// CreateDraftRequest representa la petición para crear un borrador
type CreateDraftRequest struct {
	Title   string    `json:"title" validate:"required"`
	Content string    `json:"content"`
	Type    DraftType `json:"type"`
}

// UpdateDraftRequest representa la petición para actualizar un borrador
type UpdateDraftRequest struct {
	Title   *string    `json:"title,omitempty"`
	Content *string    `json:"content,omitempty"`
	Type    *DraftType `json:"type,omitempty"`
}

// SyncResult resume una pasada de sincronización
type SyncResult struct {
	Synced    int `json:"synced"`
	Remaining int `json:"remaining"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("DRAFT")

var (
	CodeDraftNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Draft not found")
	CodeInvalidType   = ErrRegistry.Register("INVALID_TYPE", errx.TypeValidation, http.StatusBadRequest, "Invalid draft type")
	CodeSyncFailed    = ErrRegistry.Register("SYNC_FAILED", errx.TypeExternal, http.StatusBadGateway, "Draft sync failed")
)

func ErrDraftNotFound() *errx.Error {
	return ErrRegistry.New(CodeDraftNotFound)
}

func ErrInvalidType() *errx.Error {
	return ErrRegistry.New(CodeInvalidType)
}

func ErrSyncFailed() *errx.Error {
	return ErrRegistry.New(CodeSyncFailed)
}
