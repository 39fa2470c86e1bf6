package state

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-props/layering"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples. It uses Ref.Identifier() as its deterministic key and makes no
// persistence assumptions beyond that. Snapshots are deep copied on both Save
// and Load so records cannot be mutated from outside.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	snapshot map[string]any
	meta     Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) (map[string]any, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return layering.Clone(record.snapshot), cloneMeta(record.meta), true, nil
}

// Save stores a deep copy of the snapshot. The snapshot ID is kept when the
// caller provides one and minted otherwise; the etag is always refreshed, so
// every save invalidates previously issued etags for the record.
func (s *MemoryStore) Save(_ context.Context, ref Ref, snapshot map[string]any, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	stored := cloneMeta(meta)
	if stored.SnapshotID == "" {
		stored.SnapshotID = NewSnapshotID()
	}
	stored.ETag = NewSnapshotID()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.records[key] = memoryRecord{snapshot: layering.Clone(snapshot), meta: stored}
	s.mu.Unlock()
	return cloneMeta(stored), nil
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
