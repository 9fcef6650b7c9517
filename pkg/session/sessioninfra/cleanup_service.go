package sessioninfra

import (
	"context"
	"time"

	"github.com/siivi-app/siivi-server/pkg/logx"
	"github.com/siivi-app/siivi-server/pkg/session"
)

// CleanupService servicio de limpieza en background: barre los perfiles de
// invitado cuya ventana venció y purga sus datos. Reemplaza al cron de
// auto-borrado del backend gestionado.
type CleanupService struct {
	profiles session.ProfileRepository
	purger   session.Purger
	interval time.Duration
}

// NewCleanupService crea un nuevo servicio de limpieza
func NewCleanupService(profiles session.ProfileRepository, purger session.Purger, interval time.Duration) *CleanupService {
	return &CleanupService{
		profiles: profiles,
		purger:   purger,
		interval: interval,
	}
}

// Start inicia el servicio de limpieza
func (s *CleanupService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Ejecutar limpieza inicial
	s.runCleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			logx.Info("Guest cleanup service stopped")
			return
		case <-ticker.C:
			s.runCleanup(ctx)
		}
	}
}

// runCleanup ejecuta una pasada de limpieza
func (s *CleanupService) runCleanup(ctx context.Context) {
	expired, err := s.profiles.FindExpiredGuestProfiles(ctx, time.Now())
	if err != nil {
		logx.Errorf("Error listing expired guest profiles: %v", err)
		return
	}

	if len(expired) == 0 {
		return
	}

	logx.Infof("Purging %d expired guest session(s)", len(expired))
	for _, id := range expired {
		if err := s.purger.PurgeSessionData(ctx, id); err != nil {
			logx.Errorf("Error purging guest session %s: %v", id.String(), err)
		}
	}
}
