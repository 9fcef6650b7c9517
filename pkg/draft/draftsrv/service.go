package draftsrv

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/siivi-app/siivi-server/pkg/draft"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/logx"
)

// DraftService crea y edita borradores que funcionan sin conectividad y los
// reconcilia al volver a estar online, sin pérdidas ni duplicados: cada item
// de la cola se remueve sólo después de que su insert remoto individual tuvo
// éxito, y la pasada de sync es una sección crítica (las llamadas
// concurrentes son no-ops).
type DraftService struct {
	repo    draft.Repository
	queue   draft.Queue
	monitor draft.Monitor
	now     func() time.Time

	syncMu  sync.Mutex
	syncing bool
}

// NewDraftService crea el servicio de borradores
func NewDraftService(repo draft.Repository, queue draft.Queue, monitor draft.Monitor) *DraftService {
	return &DraftService{
		repo:    repo,
		queue:   queue,
		monitor: monitor,
		now:     time.Now,
	}
}

// NewDraftServiceWithNow permite inyectar el reloj (tests)
func NewDraftServiceWithNow(repo draft.Repository, queue draft.Queue, monitor draft.Monitor, now func() time.Time) *DraftService {
	s := NewDraftService(repo, queue, monitor)
	s.now = now
	return s
}

// ReportConnectivity registra la transición online/offline que detectó el
// cliente. El pase de offline a online dispara una pasada de sincronización
// para el owner que reportó; las demás transiciones sólo cambian el estado
// y retornan un resultado nil.
func (s *DraftService) ReportConnectivity(ctx context.Context, owner kernel.OwnerID, online bool) (*draft.SyncResult, error) {
	wasOnline := s.monitor.Online()
	s.monitor.SetOnline(online)

	if online && !wasOnline {
		return s.Sync(ctx, owner)
	}
	return nil, nil
}

// Watch reacciona a las transiciones de conectividad: al pasar a online
// dispara una pasada de sincronización para el owner dado. Corre hasta que
// el contexto se cancele.
func (s *DraftService) Watch(ctx context.Context, owner kernel.OwnerID) {
	changes := s.monitor.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-changes:
			if !ok {
				return
			}
			if online {
				if _, err := s.Sync(ctx, owner); err != nil {
					logx.Errorf("Draft sync after reconnect failed: %v", err)
				}
			}
		}
	}
}

// Create crea un borrador. Offline: id local, timestamps actuales, a la
// cola con synced=false. Online: insert remoto con synced=true; la falla se
// propaga al caller.
func (s *DraftService) Create(ctx context.Context, owner kernel.OwnerID, req draft.CreateDraftRequest) (*draft.Draft, error) {
	draftType := req.Type
	if draftType == "" {
		draftType = draft.DraftTypeNote
	}
	if !draft.ValidType(draftType) {
		return nil, draft.ErrInvalidType().WithDetail("type", string(req.Type))
	}

	now := s.now()
	d := draft.Draft{
		ID:        kernel.NewDraftID(uuid.NewString()),
		OwnerID:   owner,
		Title:     req.Title,
		Content:   req.Content,
		Type:      draftType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if !s.monitor.Online() {
		d.Synced = false
		if err := s.queue.Enqueue(ctx, d); err != nil {
			return nil, errx.Wrap(err, "failed to queue offline draft", errx.TypeInternal)
		}
		return &d, nil
	}

	d.Synced = true
	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Update aplica cambios al borrador donde sea que viva actualmente: cola
// local si sigue encolado, remoto si ya está sincronizado. Las ediciones
// offline de borradores ya remotos no se encolan.
func (s *DraftService) Update(ctx context.Context, owner kernel.OwnerID, id kernel.DraftID, req draft.UpdateDraftRequest) (*draft.Draft, error) {
	if req.Type != nil && !draft.ValidType(*req.Type) {
		return nil, draft.ErrInvalidType().WithDetail("type", string(*req.Type))
	}

	// Queued copy takes precedence: it is the only copy that exists.
	if queued, ok, err := s.findQueued(ctx, owner, id); err != nil {
		return nil, err
	} else if ok {
		applyUpdate(queued, req, s.now())
		if err := s.queue.Replace(ctx, *queued); err != nil {
			return nil, errx.Wrap(err, "failed to update queued draft", errx.TypeInternal)
		}
		return queued, nil
	}

	if !s.monitor.Online() {
		return nil, draft.ErrSyncFailed().WithDetail("reason", "offline update of a synced draft is not queued")
	}

	existing, err := s.repo.FindByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	applyUpdate(existing, req, s.now())
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete borra el borrador de donde sea que viva actualmente
func (s *DraftService) Delete(ctx context.Context, owner kernel.OwnerID, id kernel.DraftID) error {
	if _, ok, err := s.findQueued(ctx, owner, id); err != nil {
		return err
	} else if ok {
		return s.queue.Remove(ctx, owner, id)
	}

	if !s.monitor.Online() {
		return draft.ErrSyncFailed().WithDetail("reason", "offline delete of a synced draft is not queued")
	}

	return s.repo.Delete(ctx, id, owner)
}

// List retorna los borradores del owner: los remotos (si hay conectividad)
// más los que siguen encolados localmente.
func (s *DraftService) List(ctx context.Context, owner kernel.OwnerID) ([]draft.Draft, error) {
	var result []draft.Draft

	if s.monitor.Online() {
		remote, err := s.repo.FindByOwner(ctx, owner)
		if err != nil {
			return nil, err
		}
		result = append(result, remote...)
	}

	queued, err := s.queue.List(ctx, owner)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list queued drafts", errx.TypeInternal)
	}
	result = append(result, queued...)

	return result, nil
}

// Sync reconcilia la cola offline con el almacenamiento remoto. Con cola
// vacía es un no-op idempotente. Inserta en orden; cada item se desencola
// recién cuando su insert tuvo éxito, así una falla a mitad de tanda deja
// el resto encolado y el reintento no duplica nada. Si ya hay una pasada en
// vuelo, la llamada retorna sin hacer nada.
func (s *DraftService) Sync(ctx context.Context, owner kernel.OwnerID) (*draft.SyncResult, error) {
	s.syncMu.Lock()
	if s.syncing {
		s.syncMu.Unlock()
		return &draft.SyncResult{}, nil
	}
	s.syncing = true
	s.syncMu.Unlock()

	defer func() {
		s.syncMu.Lock()
		s.syncing = false
		s.syncMu.Unlock()
	}()

	queued, err := s.queue.List(ctx, owner)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list queued drafts", errx.TypeInternal)
	}
	if len(queued) == 0 {
		return &draft.SyncResult{}, nil
	}

	synced := 0
	for _, d := range queued {
		d.Synced = true
		if err := s.repo.Insert(ctx, d); err != nil {
			return &draft.SyncResult{Synced: synced, Remaining: len(queued) - synced},
				draft.ErrSyncFailed().WithCause(err).WithDetail("draft_id", d.ID.String())
		}
		if err := s.queue.Remove(ctx, owner, d.ID); err != nil {
			return &draft.SyncResult{Synced: synced, Remaining: len(queued) - synced},
				errx.Wrap(err, "failed to dequeue synced draft", errx.TypeInternal)
		}
		synced++
	}

	return &draft.SyncResult{Synced: synced, Remaining: 0}, nil
}

func (s *DraftService) findQueued(ctx context.Context, owner kernel.OwnerID, id kernel.DraftID) (*draft.Draft, bool, error) {
	queued, err := s.queue.List(ctx, owner)
	if err != nil {
		return nil, false, errx.Wrap(err, "failed to list queued drafts", errx.TypeInternal)
	}
	for i := range queued {
		if queued[i].ID == id {
			return &queued[i], true, nil
		}
	}
	return nil, false, nil
}

func applyUpdate(d *draft.Draft, req draft.UpdateDraftRequest, now time.Time) {
	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Content != nil {
		d.Content = *req.Content
	}
	if req.Type != nil {
		d.Type = *req.Type
	}
	d.UpdatedAt = now
}
