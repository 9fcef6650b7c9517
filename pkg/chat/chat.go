package chat

import (
	"net/http"
	"strings"
	"time"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// Chat Entities
// ============================================================================

// Role es el autor de un mensaje dentro de una conversación
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Personality ajusta el tono del asistente
type Personality string

const (
	PersonalityCasual       Personality = "casual"
	PersonalityFunny        Personality = "funny"
	PersonalityProfessional Personality = "professional"
	PersonalityMotivational Personality = "motivational"
)

// ValidPersonality verifica que la personalidad sea una de las soportadas
func ValidPersonality(p Personality) bool {
	switch p {
	case PersonalityCasual, PersonalityFunny, PersonalityProfessional, PersonalityMotivational:
		return true
	}
	return false
}

// Conversation es un hilo de mensajes de un owner (usuario o invitado)
type Conversation struct {
	ID        kernel.ConversationID `db:"id" json:"id"`
	OwnerID   kernel.OwnerID        `db:"owner_id" json:"owner_id"`
	Title     string                `db:"title" json:"title"`
	CreatedAt time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt time.Time             `db:"updated_at" json:"updated_at"`
}

const titleMaxLen = 50

// TitleFromContent deriva el título de la conversación del primer mensaje.
// El corte es por runa, nunca a mitad de un carácter multi-byte.
func TitleFromContent(content string) string {
	title := strings.TrimSpace(content)
	if runes := []rune(title); len(runes) > titleMaxLen {
		title = string(runes[:titleMaxLen])
	}
	if title == "" {
		title = "New conversation"
	}
	return title
}

// Touch actualiza la marca de última actividad
func (c *Conversation) Touch(now time.Time) {
	c.UpdatedAt = now
}

// Message es un turno dentro de una conversación. ImagePath apunta al blob
// generado cuando el turno fue de generación de imagen.
type Message struct {
	ID             kernel.MessageID      `db:"id" json:"id"`
	ConversationID kernel.ConversationID `db:"conversation_id" json:"conversation_id"`
	Role           Role                  `db:"role" json:"role"`
	Content        string                `db:"content" json:"content"`
	ImagePath      *string               `db:"image_path" json:"image_path,omitempty"`
	CreatedAt      time.Time             `db:"created_at" json:"created_at"`
}

// ============================================================================
// Service DTOs
// ============================================================================

// Caller identifica a quien envía: el owner de las filas, el dispositivo
// desde el que escribe y si es una sesión de invitado (sujeta a cuota).
type Caller struct {
	Owner    kernel.OwnerID
	DeviceID kernel.DeviceID
	Guest    bool
}

// SendMessageRequest es un mensaje entrante. Sin ConversationID se abre una
// conversación nueva titulada con el propio contenido.
type SendMessageRequest struct {
	ConversationID *string     `json:"conversation_id,omitempty"`
	Content        string      `json:"content" validate:"required"`
	Personality    Personality `json:"personality,omitempty"`
	ImageMode      bool        `json:"image_mode,omitempty"`
}

// RenameConversationRequest cambia el título de una conversación
type RenameConversationRequest struct {
	Title string `json:"title" validate:"required"`
}

// SendMessageResponse es el resultado completo de un turno
type SendMessageResponse struct {
	Conversation     Conversation `json:"conversation"`
	UserMessage      Message      `json:"user_message"`
	AssistantMessage Message      `json:"assistant_message"`
}

// ConversationWithMessages es una conversación con su historial completo
type ConversationWithMessages struct {
	Conversation Conversation `json:"conversation"`
	Messages     []Message    `json:"messages"`
}

// ConversationListResponse para el listado del sidebar
type ConversationListResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
}

// ============================================================================
// Error Registry - Errores específicos de Chat
// ============================================================================

var ErrRegistry = errx.NewRegistry("CHAT")

// Códigos de error
var (
	CodeConversationNotFound = ErrRegistry.Register("CONVERSATION_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Conversación no encontrada")
	CodeEmptyMessage         = ErrRegistry.Register("EMPTY_MESSAGE", errx.TypeValidation, http.StatusBadRequest, "El mensaje no puede estar vacío")
	CodeInvalidPersonality   = ErrRegistry.Register("INVALID_PERSONALITY", errx.TypeValidation, http.StatusBadRequest, "Personalidad no soportada")
	CodeRateLimited          = ErrRegistry.Register("RATE_LIMITED", errx.TypeExternal, http.StatusTooManyRequests, "Rate limits exceeded, please try again later.")
	CodeQuotaExhausted       = ErrRegistry.Register("QUOTA_EXHAUSTED", errx.TypeExternal, http.StatusPaymentRequired, "Payment required, please add funds to your AI workspace.")
	CodeCompletionFailed     = ErrRegistry.Register("COMPLETION_FAILED", errx.TypeExternal, http.StatusBadGateway, "La generación de la respuesta falló")
	CodeImageFailed          = ErrRegistry.Register("IMAGE_FAILED", errx.TypeExternal, http.StatusBadGateway, "La generación de la imagen falló")
)

// Helper functions para crear errores
func ErrConversationNotFound() *errx.Error {
	return ErrRegistry.New(CodeConversationNotFound)
}

func ErrEmptyMessage() *errx.Error {
	return ErrRegistry.New(CodeEmptyMessage)
}

func ErrInvalidPersonality() *errx.Error {
	return ErrRegistry.New(CodeInvalidPersonality)
}

func ErrRateLimited() *errx.Error {
	return ErrRegistry.New(CodeRateLimited)
}

func ErrQuotaExhausted() *errx.Error {
	return ErrRegistry.New(CodeQuotaExhausted)
}

func ErrCompletionFailed() *errx.Error {
	return ErrRegistry.New(CodeCompletionFailed)
}

func ErrImageFailed() *errx.Error {
	return ErrRegistry.New(CodeImageFailed)
}
