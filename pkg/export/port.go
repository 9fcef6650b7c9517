package export

import (
	"context"

	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// SnapshotRepository junta todos los datos de un owner para exportarlos
type SnapshotRepository interface {
	CollectByOwner(ctx context.Context, owner kernel.OwnerID) (*Snapshot, error)
}

// OwnerPurger borra todas las filas de un owner en una transacción
type OwnerPurger interface {
	PurgeOwnerData(ctx context.Context, owner kernel.OwnerID) error
}

// CounterReset vuelve a cero los contadores de engagement de un dispositivo
type CounterReset interface {
	Reset(ctx context.Context, id kernel.DeviceID) error
}
