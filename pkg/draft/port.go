package draft

import (
	"context"

	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// Repository define el contrato para la persistencia remota de borradores
type Repository interface {
	Insert(ctx context.Context, d Draft) error
	FindByOwner(ctx context.Context, owner kernel.OwnerID) ([]Draft, error)
	FindByID(ctx context.Context, id kernel.DraftID, owner kernel.OwnerID) (*Draft, error)
	Update(ctx context.Context, d Draft) error
	Delete(ctx context.Context, id kernel.DraftID, owner kernel.OwnerID) error
}

// Queue es la cola local de borradores creados sin conectividad, a la
// espera de reconciliación. Los items se remueven de a uno, cada uno recién
// después de que su insert remoto individual tuvo éxito.
type Queue interface {
	Enqueue(ctx context.Context, d Draft) error
	List(ctx context.Context, owner kernel.OwnerID) ([]Draft, error)
	Remove(ctx context.Context, owner kernel.OwnerID, id kernel.DraftID) error
	Replace(ctx context.Context, d Draft) error
}

// Monitor es la señal de conectividad: estado online/offline reportado por
// el cliente, con notificaciones de cambio.
type Monitor interface {
	Online() bool
	SetOnline(online bool)
	Subscribe() <-chan bool
}
