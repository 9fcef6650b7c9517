package exportsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/siivi-app/siivi-server/pkg/export"
	"github.com/siivi-app/siivi-server/pkg/fsx"
	"github.com/siivi-app/siivi-server/pkg/iam/user"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/logx"
)

// ExportService genera el volcado de datos de un owner y maneja el borrado
// completo de cuentas.
type ExportService struct {
	snapshots export.SnapshotRepository
	purger    export.OwnerPurger
	users     user.Repository
	counters  export.CounterReset
	files     fsx.FileSystem
	now       func() time.Time
}

// NewExportService crea el servicio de exportación
func NewExportService(
	snapshots export.SnapshotRepository,
	purger export.OwnerPurger,
	users user.Repository,
	counters export.CounterReset,
	files fsx.FileSystem,
) *ExportService {
	return &ExportService{
		snapshots: snapshots,
		purger:    purger,
		users:     users,
		counters:  counters,
		files:     files,
		now:       time.Now,
	}
}

// NewExportServiceWithNow permite inyectar el reloj (tests)
func NewExportServiceWithNow(
	snapshots export.SnapshotRepository,
	purger export.OwnerPurger,
	users user.Repository,
	counters export.CounterReset,
	files fsx.FileSystem,
	now func() time.Time,
) *ExportService {
	s := NewExportService(snapshots, purger, users, counters, files)
	s.now = now
	return s
}

// Export junta todos los datos del owner y los escribe como JSON al blob
// storage. Retorna el path del archivo generado.
func (s *ExportService) Export(ctx context.Context, owner kernel.OwnerID) (*export.ExportResult, error) {
	snapshot, err := s.snapshots.CollectByOwner(ctx, owner)
	if err != nil {
		return nil, export.ErrExportFailed().WithCause(err)
	}
	snapshot.GeneratedAt = s.now()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, export.ErrExportFailed().WithCause(err)
	}

	path := fmt.Sprintf("exports/%s/%s.json", owner.String(), snapshot.GeneratedAt.UTC().Format("20060102T150405Z"))
	if err := s.files.Write(ctx, path, data, "application/json"); err != nil {
		return nil, export.ErrExportFailed().WithCause(err)
	}

	return &export.ExportResult{
		Path:        path,
		SizeBytes:   len(data),
		GeneratedAt: snapshot.GeneratedAt,
	}, nil
}

// Download lee un archivo de exportación previamente generado
func (s *ExportService) Download(ctx context.Context, path string) ([]byte, error) {
	return s.files.Read(ctx, path)
}

// DeleteAccount borra la cuenta y todo lo que cuelga de ella: las filas del
// owner, la fila del usuario y los contadores de engagement del dispositivo.
// El reset de contadores es best-effort.
func (s *ExportService) DeleteAccount(ctx context.Context, id kernel.UserID) error {
	found, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	owner := kernel.OwnerFromUser(id)
	if err := s.purger.PurgeOwnerData(ctx, owner); err != nil {
		return export.ErrDeletionFailed().WithCause(err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return export.ErrDeletionFailed().WithCause(err)
	}

	if found.DeviceID.String() != "" {
		if err := s.counters.Reset(ctx, found.DeviceID); err != nil {
			logx.WithFields(logx.Fields{"device_id": found.DeviceID.String()}).
				Errorf("Failed to reset engagement counters after account deletion: %v", err)
		}
	}

	return nil
}
