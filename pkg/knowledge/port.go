package knowledge

import (
	"context"

	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// Repository define el contrato para la persistencia de tarjetas
type Repository interface {
	Insert(ctx context.Context, card KnowledgeCard) error
	FindByOwner(ctx context.Context, owner kernel.OwnerID) ([]KnowledgeCard, error)
	FindByID(ctx context.Context, id string, owner kernel.OwnerID) (*KnowledgeCard, error)
	Search(ctx context.Context, owner kernel.OwnerID, query string) ([]KnowledgeCard, error)
	Update(ctx context.Context, card KnowledgeCard) error
	Delete(ctx context.Context, id string, owner kernel.OwnerID) error
}
