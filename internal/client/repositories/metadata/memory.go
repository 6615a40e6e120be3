package metadata

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps metadata in a map. Values are copied on the way in and
// out so callers cannot mutate stored bytes.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneBytes(m.data[key]), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.data)
	return nil
}

func (m *MemoryStore) List(_ context.Context) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneMap(m.data), nil
}

// Batch holds the write lock for the whole of fn, so concurrent readers see
// either none or all of its writes.
func (m *MemoryStore) Batch(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := newStaged(memoryView{data: m.data})
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for _, o := range tx.ops {
		switch o.kind {
		case opSet:
			m.data[o.key] = o.value
		case opDelete:
			delete(m.data, o.key)
		case opClear:
			clear(m.data)
		}
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// memoryView reads the map without locking; only used while Batch holds the lock.
type memoryView struct {
	data map[string][]byte
}

func (v memoryView) Get(_ context.Context, key string) ([]byte, error) {
	return cloneBytes(v.data[key]), nil
}

func (v memoryView) List(_ context.Context) (map[string][]byte, error) {
	return cloneMap(v.data), nil
}

func (memoryView) Set(context.Context, string, []byte) error { return errReadOnlyView }
func (memoryView) Delete(context.Context, string) error       { return errReadOnlyView }
func (memoryView) Clear(context.Context) error                { return errReadOnlyView }

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

func cloneMap(m map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(m))
	maps.Copy(out, m)
	for k, v := range out {
		out[k] = cloneBytes(v)
	}
	return out
}
