package draftinfra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siivi-app/siivi-server/pkg/draft"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/kv"
)

func queuedDraft(id string, owner kernel.OwnerID) draft.Draft {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return draft.Draft{
		ID:        kernel.NewDraftID(id),
		OwnerID:   owner,
		Title:     "draft " + id,
		Type:      draft.DraftTypeNote,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestEnqueuePreservesOrder(t *testing.T) {
	queue := NewKVQueue(kv.NewMemoryStore())
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, queuedDraft("a", owner)))
	require.NoError(t, queue.Enqueue(ctx, queuedDraft("b", owner)))
	require.NoError(t, queue.Enqueue(ctx, queuedDraft("c", owner)))

	items, err := queue.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, kernel.NewDraftID("a"), items[0].ID)
	assert.Equal(t, kernel.NewDraftID("b"), items[1].ID)
	assert.Equal(t, kernel.NewDraftID("c"), items[2].ID)
}

func TestListEmptyQueue(t *testing.T) {
	queue := NewKVQueue(kv.NewMemoryStore())

	items, err := queue.List(context.Background(), kernel.NewOwnerID("owner-1"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveDropsOnlyTargetItem(t *testing.T) {
	queue := NewKVQueue(kv.NewMemoryStore())
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, queuedDraft("a", owner)))
	require.NoError(t, queue.Enqueue(ctx, queuedDraft("b", owner)))

	require.NoError(t, queue.Remove(ctx, owner, kernel.NewDraftID("a")))

	items, err := queue.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kernel.NewDraftID("b"), items[0].ID)
}

func TestRemoveLastItemClearsRecord(t *testing.T) {
	store := kv.NewMemoryStore()
	queue := NewKVQueue(store)
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, queuedDraft("a", owner)))
	require.NoError(t, queue.Remove(ctx, owner, kernel.NewDraftID("a")))

	var raw []draft.Draft
	assert.True(t, kv.IsNotFound(store.Get(ctx, "offline_drafts:"+owner.String(), &raw)))
}

func TestReplaceUpdatesQueuedCopy(t *testing.T) {
	queue := NewKVQueue(kv.NewMemoryStore())
	owner := kernel.NewOwnerID("owner-1")
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, queuedDraft("a", owner)))

	edited := queuedDraft("a", owner)
	edited.Title = "edited"
	require.NoError(t, queue.Replace(ctx, edited))

	items, err := queue.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "edited", items[0].Title)
}

func TestReplaceMissingDraftFails(t *testing.T) {
	queue := NewKVQueue(kv.NewMemoryStore())
	owner := kernel.NewOwnerID("owner-1")

	err := queue.Replace(context.Background(), queuedDraft("ghost", owner))
	require.Error(t, err)
}

func TestQueuesAreScopedPerOwner(t *testing.T) {
	queue := NewKVQueue(kv.NewMemoryStore())
	ctx := context.Background()
	ownerA := kernel.NewOwnerID("owner-a")
	ownerB := kernel.NewOwnerID("owner-b")

	require.NoError(t, queue.Enqueue(ctx, queuedDraft("a", ownerA)))

	items, err := queue.List(ctx, ownerB)
	require.NoError(t, err)
	assert.Empty(t, items)
}
