package draftinfra

import (
	"context"

	"github.com/siivi-app/siivi-server/pkg/draft"
	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/kv"
)

const queueKeyPrefix = "offline_drafts:"

// KVQueue implementación de la cola offline sobre el storage clave-valor
// por dispositivo: una lista serializada por owner, como el registro
// offline_drafts del cliente original.
type KVQueue struct {
	store kv.Store
}

// NewKVQueue crea la cola offline
func NewKVQueue(store kv.Store) draft.Queue {
	return &KVQueue{store: store}
}

func queueKey(owner kernel.OwnerID) string {
	return queueKeyPrefix + owner.String()
}

func (q *KVQueue) load(ctx context.Context, owner kernel.OwnerID) ([]draft.Draft, error) {
	var items []draft.Draft
	if err := q.store.Get(ctx, queueKey(owner), &items); err != nil {
		if kv.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

func (q *KVQueue) save(ctx context.Context, owner kernel.OwnerID, items []draft.Draft) error {
	if len(items) == 0 {
		return q.store.Delete(ctx, queueKey(owner))
	}
	return q.store.Set(ctx, queueKey(owner), items)
}

// Enqueue agrega un borrador al final de la cola del owner
func (q *KVQueue) Enqueue(ctx context.Context, d draft.Draft) error {
	items, err := q.load(ctx, d.OwnerID)
	if err != nil {
		return err
	}
	return q.save(ctx, d.OwnerID, append(items, d))
}

// List retorna la cola del owner en orden de encolado
func (q *KVQueue) List(ctx context.Context, owner kernel.OwnerID) ([]draft.Draft, error) {
	return q.load(ctx, owner)
}

// Remove saca un borrador de la cola por id
func (q *KVQueue) Remove(ctx context.Context, owner kernel.OwnerID, id kernel.DraftID) error {
	items, err := q.load(ctx, owner)
	if err != nil {
		return err
	}

	remaining := items[:0]
	for _, item := range items {
		if item.ID != id {
			remaining = append(remaining, item)
		}
	}
	return q.save(ctx, owner, remaining)
}

// Replace sobreescribe un borrador encolado con su versión editada
func (q *KVQueue) Replace(ctx context.Context, d draft.Draft) error {
	items, err := q.load(ctx, d.OwnerID)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ID == d.ID {
			items[i] = d
			return q.save(ctx, d.OwnerID, items)
		}
	}
	return draft.ErrDraftNotFound().WithDetail("draft_id", d.ID.String())
}
