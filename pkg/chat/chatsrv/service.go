package chatsrv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siivi-app/siivi-server/pkg/ai/llm"
	"github.com/siivi-app/siivi-server/pkg/chat"
	"github.com/siivi-app/siivi-server/pkg/fsx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/logx"
	"github.com/siivi-app/siivi-server/pkg/ptrx"
	"github.com/siivi-app/siivi-server/pkg/session"
)

// Config parametriza la generación
type Config struct {
	ChatModel   string
	Temperature float32
	MaxTokens   int
}

// ChatService orquesta el pipeline de un turno de chat: cuota de invitado,
// resolución de conversación, reescritura de slash commands, completion y
// persistencia de ambos mensajes.
type ChatService struct {
	convs   chat.ConversationRepository
	msgs    chat.MessageRepository
	model   *llm.Client
	quota   chat.GuestQuota
	counter chat.EngagementCounter
	files   fsx.FileSystem
	cfg     Config
	now     func() time.Time
}

// NewChatService crea el servicio de chat
func NewChatService(
	convs chat.ConversationRepository,
	msgs chat.MessageRepository,
	model *llm.Client,
	quota chat.GuestQuota,
	counter chat.EngagementCounter,
	files fsx.FileSystem,
	cfg Config,
) *ChatService {
	return &ChatService{
		convs:   convs,
		msgs:    msgs,
		model:   model,
		quota:   quota,
		counter: counter,
		files:   files,
		cfg:     cfg,
		now:     time.Now,
	}
}

// NewChatServiceWithNow permite inyectar el reloj (tests)
func NewChatServiceWithNow(
	convs chat.ConversationRepository,
	msgs chat.MessageRepository,
	model *llm.Client,
	quota chat.GuestQuota,
	counter chat.EngagementCounter,
	files fsx.FileSystem,
	cfg Config,
	now func() time.Time,
) *ChatService {
	s := NewChatService(convs, msgs, model, quota, counter, files, cfg)
	s.now = now
	return s
}

// ============================================================================
// Conversations
// ============================================================================

// ListConversations retorna las conversaciones del owner, más reciente primero
func (s *ChatService) ListConversations(ctx context.Context, owner kernel.OwnerID) (*chat.ConversationListResponse, error) {
	convs, err := s.convs.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &chat.ConversationListResponse{
		Conversations: convs,
		Total:         len(convs),
	}, nil
}

// GetConversation retorna una conversación con su historial completo
func (s *ChatService) GetConversation(ctx context.Context, owner kernel.OwnerID, id kernel.ConversationID) (*chat.ConversationWithMessages, error) {
	conv, err := s.convs.FindByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	msgs, err := s.msgs.FindByConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	return &chat.ConversationWithMessages{
		Conversation: *conv,
		Messages:     msgs,
	}, nil
}

// RenameConversation cambia el título. El título vacío se rechaza; el
// recorte al largo máximo es el mismo del título derivado.
func (s *ChatService) RenameConversation(ctx context.Context, owner kernel.OwnerID, id kernel.ConversationID, title string) (*chat.Conversation, error) {
	cleaned := chat.TitleFromContent(title)
	if strings.TrimSpace(title) == "" {
		return nil, chat.ErrEmptyMessage().WithDetail("field", "title")
	}

	conv, err := s.convs.FindByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	conv.Title = cleaned
	conv.Touch(s.now())
	if err := s.convs.Update(ctx, *conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// DeleteConversation borra una conversación y sus mensajes
func (s *ChatService) DeleteConversation(ctx context.Context, owner kernel.OwnerID, id kernel.ConversationID) error {
	return s.convs.Delete(ctx, id, owner)
}

// ============================================================================
// Send Pipeline
// ============================================================================

// Send procesa un turno completo. Para invitados la cuota de sesión se
// verifica ANTES de cualquier persistencia: un mensaje bloqueado no deja
// rastro. El contenido guardado es el que escribió el usuario; la
// reescritura de slash commands sólo la ve el modelo.
func (s *ChatService) Send(ctx context.Context, caller chat.Caller, req chat.SendMessageRequest) (*chat.SendMessageResponse, error) {
	if req.Content == "" {
		return nil, chat.ErrEmptyMessage()
	}
	if req.Personality != "" && !chat.ValidPersonality(req.Personality) {
		return nil, chat.ErrInvalidPersonality().WithDetail("personality", string(req.Personality))
	}

	if caller.Guest {
		reached, err := s.quota.IsLimitReached(ctx, caller.DeviceID)
		if err != nil {
			return nil, err
		}
		if reached {
			return nil, session.ErrLimitReached()
		}
	}

	now := s.now()
	conv, err := s.resolveConversation(ctx, caller.Owner, req, now)
	if err != nil {
		return nil, err
	}

	history, err := s.msgs.FindByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	userMsg := chat.Message{
		ID:             kernel.NewMessageID(uuid.NewString()),
		ConversationID: conv.ID,
		Role:           chat.RoleUser,
		Content:        req.Content,
		CreatedAt:      now,
	}
	if err := s.msgs.Insert(ctx, userMsg); err != nil {
		return nil, err
	}

	var assistantMsg chat.Message
	if req.ImageMode {
		assistantMsg, err = s.generateImage(ctx, conv.ID, req.Content)
	} else {
		assistantMsg, err = s.complete(ctx, conv.ID, req, history)
	}
	if err != nil {
		return nil, err
	}

	if err := s.msgs.Insert(ctx, assistantMsg); err != nil {
		return nil, err
	}

	conv.Touch(s.now())
	if err := s.convs.Update(ctx, *conv); err != nil {
		return nil, err
	}

	// Post-send bookkeeping is best-effort: the turn already succeeded.
	if caller.Guest {
		if err := s.quota.IncrementMessageCount(ctx, caller.DeviceID); err != nil {
			logx.Errorf("Failed to increment guest message count: %v", err)
		}
	}
	if caller.DeviceID.String() != "" {
		if _, err := s.counter.Increment(ctx, caller.DeviceID); err != nil {
			logx.Errorf("Failed to advance engagement counter: %v", err)
		}
	}

	return &chat.SendMessageResponse{
		Conversation:     *conv,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// resolveConversation busca la conversación del request o abre una nueva
// titulada con el contenido del primer mensaje.
func (s *ChatService) resolveConversation(ctx context.Context, owner kernel.OwnerID, req chat.SendMessageRequest, now time.Time) (*chat.Conversation, error) {
	if req.ConversationID != nil {
		return s.convs.FindByID(ctx, kernel.NewConversationID(*req.ConversationID), owner)
	}

	conv := chat.Conversation{
		ID:        kernel.NewConversationID(uuid.NewString()),
		OwnerID:   owner,
		Title:     chat.TitleFromContent(req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.convs.Insert(ctx, conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// complete arma el historial (prompt de sistema + turnos previos + el turno
// nuevo, reescrito si era un slash command) y pide la respuesta al modelo.
func (s *ChatService) complete(ctx context.Context, convID kernel.ConversationID, req chat.SendMessageRequest, history []chat.Message) (chat.Message, error) {
	content := req.Content
	if cmd, ok := chat.ParseCommand(content); ok {
		content = cmd.Rewrite()
	}

	messages := []llm.Message{llm.NewSystemMessage(chat.SystemPrompt(req.Personality))}
	for _, m := range history {
		switch m.Role {
		case chat.RoleUser:
			messages = append(messages, llm.NewUserMessage(m.Content))
		case chat.RoleAssistant:
			messages = append(messages, llm.NewAssistantMessage(m.Content))
		}
	}
	messages = append(messages, llm.NewUserMessage(content))

	opts := []llm.Option{
		llm.WithModel(s.cfg.ChatModel),
		llm.WithTemperature(s.cfg.Temperature),
	}
	if s.cfg.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(s.cfg.MaxTokens))
	}

	resp, err := s.model.Chat(ctx, messages, opts...)
	if err != nil {
		return chat.Message{}, s.mapModelError(err)
	}

	return chat.Message{
		ID:             kernel.NewMessageID(uuid.NewString()),
		ConversationID: convID,
		Role:           chat.RoleAssistant,
		Content:        resp.Message.Content,
		CreatedAt:      s.now(),
	}, nil
}

// generateImage pide la imagen al modelo y la guarda en el blob storage; el
// mensaje del asistente referencia el path guardado.
func (s *ChatService) generateImage(ctx context.Context, convID kernel.ConversationID, prompt string) (chat.Message, error) {
	img, err := s.model.GenerateImage(ctx, prompt)
	if err != nil {
		return chat.Message{}, s.mapModelError(err)
	}

	msgID := kernel.NewMessageID(uuid.NewString())
	msg := chat.Message{
		ID:             msgID,
		ConversationID: convID,
		Role:           chat.RoleAssistant,
		Content:        "Image generated successfully",
		CreatedAt:      s.now(),
	}

	if len(img.Data) > 0 {
		path := fmt.Sprintf("images/%s/%s.png", convID.String(), msgID.String())
		if err := s.files.Write(ctx, path, img.Data, "image/png"); err != nil {
			return chat.Message{}, chat.ErrImageFailed().WithCause(err)
		}
		msg.ImagePath = ptrx.String(path)
	} else if img.URL != "" {
		msg.ImagePath = ptrx.String(img.URL)
	} else {
		return chat.Message{}, chat.ErrImageFailed().WithDetail("reason", "provider returned no image payload")
	}

	return msg, nil
}

// mapModelError traduce las condiciones del gateway a errores propios que se
// exponen tal cual al cliente, sin reintentos.
func (s *ChatService) mapModelError(err error) error {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return chat.ErrRateLimited().WithCause(err)
	case errors.Is(err, llm.ErrQuotaExhausted):
		return chat.ErrQuotaExhausted().WithCause(err)
	default:
		return chat.ErrCompletionFailed().WithCause(err)
	}
}
