// Package store is the runtime that scaffold-synthesized members link
// against. The engine itself never executes queries; it only emits member
// bodies that call into this package. Applications wire a Manager at startup
// and the synthesized lifecycle and query operations attach to it lazily.
package store

import (
	"errors"
	"sort"
	"sync"
)

// ErrNoRows is returned by lookups that matched no row. Synthesized
// find-by-identifier bodies translate it into a not-found result instead of
// propagating it.
var ErrNoRows = errors.New("store: no matching row")

// Keyed is the minimal contract an entity must satisfy: a kind name shared by
// all instances of the entity type and a per-instance key.
type Keyed interface {
	Kind() string
	Key() interface{}
}

// Manager is the unit-of-work handle shared across an inheritance chain of
// entity types. One structure per chain owns the injected handle field; all
// synthesized operations go through it.
type Manager interface {
	Persist(entity Keyed)
	Remove(entity Keyed)
	Contains(entity Keyed) bool
	Flush()
	Clear()
	Merge(entity Keyed) Keyed

	Find(kind string, key interface{}) (Keyed, error)
	All(kind string) []Keyed
	Count(kind string) int64
	Page(kind string, offset, limit int) []Keyed
}

var (
	wiredMu sync.RWMutex
	wired   Manager
)

// Wire installs the process-wide default manager that Attach hands out.
func Wire(m Manager) {
	wiredMu.Lock()
	defer wiredMu.Unlock()
	wired = m
}

// Attach returns the wired default manager. Synthesized bodies call it to
// lazily initialize the handle field; it panics when no manager was wired,
// matching the runtime contract the generated code documents.
func Attach() Manager {
	wiredMu.RLock()
	defer wiredMu.RUnlock()
	if wired == nil {
		panic("store: no manager has been wired (call store.Wire during startup)")
	}
	return wired
}

// Typed helpers used by the typed query dialect. The raw dialect calls the
// Manager methods directly and casts.

// AllOf returns every instance of the entity kind of T.
func AllOf[T Keyed](m Manager) []T {
	var zero T
	rows := m.All(zero.Kind())
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.(T))
	}
	return out
}

// CountOf returns the number of instances of the entity kind of T.
func CountOf[T Keyed](m Manager) int64 {
	var zero T
	return m.Count(zero.Kind())
}

// FindOf looks up one instance of T by key.
func FindOf[T Keyed](m Manager, key interface{}) (T, error) {
	var zero T
	row, err := m.Find(zero.Kind(), key)
	if err != nil {
		return zero, err
	}
	return row.(T), nil
}

// PageOf returns a window of instances of T. No ordering beyond insertion-key
// determinism is guaranteed.
func PageOf[T Keyed](m Manager, offset, limit int) []T {
	var zero T
	rows := m.Page(zero.Kind(), offset, limit)
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.(T))
	}
	return out
}

// Memory is an in-memory Manager suitable for tests and demos. Pending
// changes accumulate until Flush; Clear discards them.
type Memory struct {
	mu        sync.Mutex
	committed map[string]map[interface{}]Keyed
	pending   map[string]map[interface{}]Keyed
	removed   map[string]map[interface{}]bool
}

// NewMemory returns an empty in-memory manager.
func NewMemory() *Memory {
	return &Memory{
		committed: make(map[string]map[interface{}]Keyed),
		pending:   make(map[string]map[interface{}]Keyed),
		removed:   make(map[string]map[interface{}]bool),
	}
}

func bucket(m map[string]map[interface{}]Keyed, kind string) map[interface{}]Keyed {
	b, ok := m[kind]
	if !ok {
		b = make(map[interface{}]Keyed)
		m[kind] = b
	}
	return b
}

// Persist stages the entity for insertion.
func (m *Memory) Persist(entity Keyed) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket(m.pending, entity.Kind())[entity.Key()] = entity
	delete(m.removed[entity.Kind()], entity.Key())
}

// Remove stages the entity for deletion.
func (m *Memory) Remove(entity Keyed) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(bucket(m.pending, entity.Kind()), entity.Key())
	r, ok := m.removed[entity.Kind()]
	if !ok {
		r = make(map[interface{}]bool)
		m.removed[entity.Kind()] = r
	}
	r[entity.Key()] = true
}

// Contains reports whether the entity is attached to this manager.
func (m *Memory) Contains(entity Keyed) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed[entity.Kind()][entity.Key()] {
		return false
	}
	if _, ok := bucket(m.pending, entity.Kind())[entity.Key()]; ok {
		return true
	}
	_, ok := bucket(m.committed, entity.Kind())[entity.Key()]
	return ok
}

// Flush applies all pending changes.
func (m *Memory) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for kind, b := range m.pending {
		dst := bucket(m.committed, kind)
		for k, v := range b {
			dst[k] = v
		}
	}
	for kind, r := range m.removed {
		dst := bucket(m.committed, kind)
		for k := range r {
			delete(dst, k)
		}
	}
	m.pending = make(map[string]map[interface{}]Keyed)
	m.removed = make(map[string]map[interface{}]bool)
}

// Clear discards all pending changes.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = make(map[string]map[interface{}]Keyed)
	m.removed = make(map[string]map[interface{}]bool)
}

// Merge stages the detached entity and returns the attached instance.
func (m *Memory) Merge(entity Keyed) Keyed {
	m.Persist(entity)
	return entity
}

// Find looks up one entity by key, considering pending changes.
func (m *Memory) Find(kind string, key interface{}) (Keyed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed[kind][key] {
		return nil, ErrNoRows
	}
	if v, ok := bucket(m.pending, kind)[key]; ok {
		return v, nil
	}
	if v, ok := bucket(m.committed, kind)[key]; ok {
		return v, nil
	}
	return nil, ErrNoRows
}

// All returns every visible instance of the kind in deterministic key order.
func (m *Memory) All(kind string) []Keyed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allLocked(kind)
}

func (m *Memory) allLocked(kind string) []Keyed {
	merged := make(map[interface{}]Keyed)
	for k, v := range bucket(m.committed, kind) {
		merged[k] = v
	}
	for k, v := range bucket(m.pending, kind) {
		merged[k] = v
	}
	for k := range m.removed[kind] {
		delete(merged, k)
	}
	out := make([]Keyed, 0, len(merged))
	for _, v := range merged {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return keyLess(out[i].Key(), out[j].Key())
	})
	return out
}

// Count returns the number of visible instances of the kind.
func (m *Memory) Count(kind string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.allLocked(kind)))
}

// Page returns a window of visible instances of the kind.
func (m *Memory) Page(kind string, offset, limit int) []Keyed {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.allLocked(kind)
	if offset >= len(all) || offset < 0 || limit <= 0 {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func keyLess(a, b interface{}) bool {
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	}
	// Mixed or unsupported key types fall back to an arbitrary stable order.
	return false
}
