package export

import (
	"net/http"
	"time"

	"github.com/siivi-app/siivi-server/pkg/chat"
	"github.com/siivi-app/siivi-server/pkg/draft"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/knowledge"
	"github.com/siivi-app/siivi-server/pkg/mood"
	"github.com/siivi-app/siivi-server/pkg/reminder"
)

// ============================================================================
// Export Snapshot
// ============================================================================

// Snapshot es el volcado completo de los datos de un owner, tal como se
// serializa al archivo de exportación.
type Snapshot struct {
	OwnerID       string                    `json:"owner_id"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	Conversations []chat.Conversation       `json:"conversations"`
	Messages      []chat.Message            `json:"messages"`
	Drafts        []draft.Draft             `json:"drafts"`
	MoodLogs      []mood.MoodLog            `json:"mood_logs"`
	Reminders     []reminder.Reminder       `json:"reminders"`
	Cards         []knowledge.KnowledgeCard `json:"knowledge_cards"`
}

// ExportResult describe el archivo generado
type ExportResult struct {
	Path        string    `json:"path"`
	SizeBytes   int       `json:"size_bytes"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("EXPORT")

var (
	CodeExportFailed   = ErrRegistry.Register("EXPORT_FAILED", errx.TypeInternal, http.StatusInternalServerError, "La exportación de datos falló")
	CodeDeletionFailed = ErrRegistry.Register("DELETION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "El borrado de la cuenta falló")
)

func ErrExportFailed() *errx.Error {
	return ErrRegistry.New(CodeExportFailed)
}

func ErrDeletionFailed() *errx.Error {
	return ErrRegistry.New(CodeDeletionFailed)
}
