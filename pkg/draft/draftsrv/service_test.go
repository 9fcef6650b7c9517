package draftsrv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siivi-app/siivi-server/pkg/draft"
	"github.com/siivi-app/siivi-server/pkg/draft/draftinfra"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/kv"
)

type fakeDraftRepo struct {
	mu        sync.Mutex
	inserted  []draft.Draft
	failAfter int // fail Insert once this many inserts succeeded; -1 = never
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{failAfter: -1}
}

func (f *fakeDraftRepo) Insert(ctx context.Context, d draft.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && len(f.inserted) >= f.failAfter {
		return errors.New("remote insert failed")
	}
	f.inserted = append(f.inserted, d)
	return nil
}

func (f *fakeDraftRepo) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func (f *fakeDraftRepo) FindByOwner(ctx context.Context, owner kernel.OwnerID) ([]draft.Draft, error) {
	var out []draft.Draft
	for _, d := range f.inserted {
		if d.OwnerID == owner {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDraftRepo) FindByID(ctx context.Context, id kernel.DraftID, owner kernel.OwnerID) (*draft.Draft, error) {
	for i := range f.inserted {
		if f.inserted[i].ID == id && f.inserted[i].OwnerID == owner {
			return &f.inserted[i], nil
		}
	}
	return nil, draft.ErrDraftNotFound()
}

func (f *fakeDraftRepo) Update(ctx context.Context, d draft.Draft) error {
	for i := range f.inserted {
		if f.inserted[i].ID == d.ID {
			f.inserted[i] = d
			return nil
		}
	}
	return draft.ErrDraftNotFound()
}

func (f *fakeDraftRepo) Delete(ctx context.Context, id kernel.DraftID, owner kernel.OwnerID) error {
	for i := range f.inserted {
		if f.inserted[i].ID == id {
			f.inserted = append(f.inserted[:i], f.inserted[i+1:]...)
			return nil
		}
	}
	return draft.ErrDraftNotFound()
}

func newTestService(online bool) (*DraftService, *fakeDraftRepo, *draft.SwitchMonitor) {
	repo := newFakeDraftRepo()
	queue := draftinfra.NewKVQueue(kv.NewMemoryStore())
	monitor := draft.NewSwitchMonitor(online)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewDraftServiceWithNow(repo, queue, monitor, func() time.Time { return now })
	return svc, repo, monitor
}

func TestCreateOnlinePersistsRemotely(t *testing.T) {
	svc, repo, _ := newTestService(true)
	owner := kernel.NewOwnerID("owner-1")

	created, err := svc.Create(context.Background(), owner, draft.CreateDraftRequest{
		Title:   "Notes",
		Content: "hello",
	})
	require.NoError(t, err)
	assert.True(t, created.Synced)
	assert.Equal(t, draft.DraftTypeNote, created.Type, "type defaults to note")
	require.Len(t, repo.inserted, 1)
}

func TestCreateOfflineQueuesLocally(t *testing.T) {
	svc, repo, _ := newTestService(false)
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "Offline note"})
	require.NoError(t, err)
	assert.False(t, created.Synced)
	assert.Empty(t, repo.inserted)

	// The queued draft is visible in listings while offline.
	listed, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _, _ := newTestService(true)

	_, err := svc.Create(context.Background(), kernel.NewOwnerID("owner-1"), draft.CreateDraftRequest{
		Title: "x",
		Type:  draft.DraftType("poem"),
	})
	require.Error(t, err)
}

func TestSyncDrainsQueueInOrder(t *testing.T) {
	svc, repo, monitor := newTestService(false)
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	first, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "first"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "second"})
	require.NoError(t, err)

	monitor.SetOnline(true)
	result, err := svc.Sync(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 0, result.Remaining)

	require.Len(t, repo.inserted, 2)
	assert.Equal(t, first.ID, repo.inserted[0].ID)
	assert.Equal(t, second.ID, repo.inserted[1].ID)
	assert.True(t, repo.inserted[0].Synced)

	// The queue is empty; listing shows only the remote copies.
	listed, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestSyncWithEmptyQueueIsNoop(t *testing.T) {
	svc, repo, _ := newTestService(true)

	result, err := svc.Sync(context.Background(), kernel.NewOwnerID("owner-1"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	assert.Empty(t, repo.inserted)
}

func TestSyncFailureLeavesRemainderQueued(t *testing.T) {
	svc, repo, monitor := newTestService(false)
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "first"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "second"})
	require.NoError(t, err)

	monitor.SetOnline(true)
	repo.failAfter = 1 // first insert succeeds, second fails

	result, err := svc.Sync(ctx, owner)
	require.Error(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Remaining)

	// Retrying after the outage syncs the remainder without duplicating
	// the draft that already went through.
	repo.failAfter = -1
	result, err = svc.Sync(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	require.Len(t, repo.inserted, 2)
	assert.Equal(t, second.ID, repo.inserted[1].ID)
}

func TestUpdateQueuedDraftEditsQueueCopy(t *testing.T) {
	svc, repo, _ := newTestService(false)
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "draft"})
	require.NoError(t, err)

	newTitle := "edited"
	updated, err := svc.Update(ctx, owner, created.ID, draft.UpdateDraftRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Title)
	assert.False(t, updated.Synced)
	assert.Empty(t, repo.inserted)

	listed, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "edited", listed[0].Title)
}

func TestUpdateSyncedDraftGoesRemote(t *testing.T) {
	svc, repo, _ := newTestService(true)
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "draft"})
	require.NoError(t, err)

	newContent := "updated body"
	updated, err := svc.Update(ctx, owner, created.ID, draft.UpdateDraftRequest{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, "updated body", updated.Content)
	assert.Equal(t, "updated body", repo.inserted[0].Content)
}

func TestDeleteQueuedDraftRemovesFromQueue(t *testing.T) {
	svc, _, _ := newTestService(false)
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "draft"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))

	listed, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestReconnectSyncsQueuedDrafts(t *testing.T) {
	svc, repo, _ := newTestService(false)
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "written offline"})
	require.NoError(t, err)
	require.Empty(t, repo.inserted)

	result, err := svc.ReportConnectivity(ctx, owner, true)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 0, result.Remaining)

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, created.ID, repo.inserted[0].ID)
	assert.True(t, repo.inserted[0].Synced)

	// The queue is empty: a second sync pass has nothing to do.
	again, err := svc.Sync(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Synced)
	require.Len(t, repo.inserted, 1)
}

func TestReportConnectivityWithoutTransitionDoesNotSync(t *testing.T) {
	svc, repo, _ := newTestService(false)
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "written offline"})
	require.NoError(t, err)

	// offline -> offline: the draft stays queued.
	result, err := svc.ReportConnectivity(ctx, owner, false)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, repo.inserted)

	// online -> online: no new sync pass either.
	_, err = svc.ReportConnectivity(ctx, owner, true)
	require.NoError(t, err)
	result, err = svc.ReportConnectivity(ctx, owner, true)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestWatchSyncsOnReconnect(t *testing.T) {
	svc, repo, monitor := newTestService(false)
	owner := kernel.NewOwnerID("owner-1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := svc.Create(ctx, owner, draft.CreateDraftRequest{Title: "written offline"})
	require.NoError(t, err)

	go svc.Watch(ctx, owner)

	// The flip is re-issued on every poll so the notification cannot be
	// missed while the watcher is still subscribing.
	require.Eventually(t, func() bool {
		if repo.insertCount() == 1 {
			return true
		}
		monitor.SetOnline(false)
		monitor.SetOnline(true)
		return false
	}, 2*time.Second, 10*time.Millisecond)

	listed, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Synced)
}
