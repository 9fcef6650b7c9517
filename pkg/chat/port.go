package chat

import (
	"context"

	"github.com/siivi-app/siivi-server/pkg/donation"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ConversationRepository define el contrato para persistir conversaciones
type ConversationRepository interface {
	Insert(ctx context.Context, c Conversation) error
	FindByOwner(ctx context.Context, owner kernel.OwnerID) ([]Conversation, error)
	FindByID(ctx context.Context, id kernel.ConversationID, owner kernel.OwnerID) (*Conversation, error)
	Update(ctx context.Context, c Conversation) error
	Delete(ctx context.Context, id kernel.ConversationID, owner kernel.OwnerID) error
}

// MessageRepository define el contrato para persistir mensajes
type MessageRepository interface {
	Insert(ctx context.Context, m Message) error
	FindByConversation(ctx context.Context, id kernel.ConversationID) ([]Message, error)
}

// GuestQuota es la cuota de mensajes de una sesión de invitado. Los usuarios
// registrados no pasan por acá.
type GuestQuota interface {
	IsLimitReached(ctx context.Context, deviceID kernel.DeviceID) (bool, error)
	IncrementMessageCount(ctx context.Context, deviceID kernel.DeviceID) error
}

// EngagementCounter cuenta mensajes enviados para los disparadores de
// engagement (banner de donación).
type EngagementCounter interface {
	Increment(ctx context.Context, id kernel.DeviceID) (*donation.CounterResponse, error)
}
