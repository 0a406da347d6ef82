package database

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory. It backs handler tests and
// DB_DRIVER=memory local runs. Unique indexes are enforced on every write.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      map[string][]map[string]any
	sequences map[string]int64
	unique    map[string][][]string
}

type memoryTxKey struct{}

// memoryTx journals the inverse of every write made through its context.
// undo entries run with mu held.
type memoryTx struct {
	store *MemoryStore
	undo  []func()
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string][]map[string]any),
		sequences: make(map[string]int64),
		unique:    make(map[string][][]string),
	}
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

// Collection implements Store.
func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

// NextSequence implements Store.
func (s *MemoryStore) NextSequence(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[name]++
	return s.sequences[name], nil
}

// WithTransaction undoes the writes fn made through its context when fn fails.
// Writes made outside fn and sequence values are kept. Nested calls join the outer transaction.
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx := &memoryTx{store: s}
	if err := fn(context.WithValue(ctx, memoryTxKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) txFrom(ctx context.Context) *memoryTx {
	tx, _ := ctx.Value(memoryTxKey{}).(*memoryTx)
	if tx == nil || tx.store != s {
		return nil
	}
	return tx
}

// journal must be called with mu held.
func (s *MemoryStore) journal(ctx context.Context, undo func()) {
	if tx := s.txFrom(ctx); tx != nil {
		tx.undo = append(tx.undo, undo)
	}
}

// position finds a document by storage id. mu must be held.
func (s *MemoryStore) position(name, id string) int {
	return s.indexOf(name, ByStorageID(id))
}

func storageID(doc map[string]any) string {
	id, _ := doc["_id"].(string)
	return id
}

// EnsureIndexes implements Store.
func (s *MemoryStore) EnsureIndexes(_ context.Context, unique map[string][][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, keys := range unique {
		s.unique[name] = append(s.unique[name], keys...)
	}
	return nil
}

// Drop implements Store.
func (s *MemoryStore) Drop(_ context.Context, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		delete(s.docs, name)
		delete(s.sequences, name)
	}
	return nil
}

// Health implements Store.
func (s *MemoryStore) Health(_ context.Context) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, list := range s.docs {
		total += len(list)
	}
	return map[string]string{
		"status":    "up",
		"message":   "It's healthy",
		"driver":    "memory",
		"documents": fmt.Sprint(total),
	}
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }

func (c *memoryCollection) Find(_ context.Context, q Query, out any) error {
	c.store.mu.RLock()
	list := c.store.docs[c.name]
	var matches []map[string]any
	// newest insert first so equal timestamps keep recency order
	for i := len(list) - 1; i >= 0; i-- {
		if matchAll(list[i], q.Filters) {
			matches = append(matches, list[i])
		}
	}
	c.store.mu.RUnlock()

	if q.SortBy != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			return timeField(matches[i], q.SortBy).After(timeField(matches[j], q.SortBy))
		})
	}
	if matches == nil {
		matches = []map[string]any{}
	}
	return decodeInto(matches, out)
}

func (c *memoryCollection) FindOne(_ context.Context, filters []Filter, out any) error {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	i := c.store.indexOf(c.name, filters)
	if i < 0 {
		return ErrNotFound
	}
	return decodeInto(c.store.docs[c.name][i], out)
}

func (c *memoryCollection) Insert(ctx context.Context, doc any) (string, error) {
	fields, id, err := toDocument(doc)
	if err != nil {
		return "", err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.store.indexOf(c.name, ByStorageID(id)) >= 0 || c.store.violatesUnique(c.name, fields, -1) {
		return "", ErrDuplicate
	}
	c.store.docs[c.name] = append(c.store.docs[c.name], fields)
	c.store.journal(ctx, func() {
		if j := c.store.position(c.name, id); j >= 0 {
			c.store.docs[c.name] = slices.Delete(slices.Clone(c.store.docs[c.name]), j, j+1)
		}
	})
	return id, nil
}

func (c *memoryCollection) Update(ctx context.Context, filters []Filter, set map[string]any) error {
	patch, err := normalize(set)
	if err != nil {
		return err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	i := c.store.indexOf(c.name, filters)
	if i < 0 {
		return ErrNotFound
	}
	previous := c.store.docs[c.name][i]
	updated := maps.Clone(previous)
	maps.Copy(updated, patch)
	if c.store.violatesUnique(c.name, updated, i) {
		return ErrDuplicate
	}
	c.store.docs[c.name][i] = updated
	c.store.journal(ctx, func() {
		if j := c.store.position(c.name, storageID(previous)); j >= 0 {
			c.store.docs[c.name][j] = previous
		}
	})
	return nil
}

func (c *memoryCollection) Increment(ctx context.Context, filters []Filter, field string, delta int64) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	i := c.store.indexOf(c.name, filters)
	if i < 0 {
		return ErrNotFound
	}
	c.store.addTo(c.name, i, field, delta)
	id := storageID(c.store.docs[c.name][i])
	// Reversing the delta keeps increments made outside the transaction.
	c.store.journal(ctx, func() {
		if j := c.store.position(c.name, id); j >= 0 {
			c.store.addTo(c.name, j, field, -delta)
		}
	})
	return nil
}

// addTo must be called with mu held.
func (s *MemoryStore) addTo(name string, i int, field string, delta int64) {
	updated := maps.Clone(s.docs[name][i])
	current, _ := updated[field].(float64)
	updated[field] = current + float64(delta)
	s.docs[name][i] = updated
}

func (c *memoryCollection) Delete(ctx context.Context, filters []Filter) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	i := c.store.indexOf(c.name, filters)
	if i < 0 {
		return ErrNotFound
	}
	removed := c.store.docs[c.name][i]
	c.store.docs[c.name] = slices.Delete(slices.Clone(c.store.docs[c.name]), i, i+1)
	c.store.journal(ctx, func() {
		list := c.store.docs[c.name]
		c.store.docs[c.name] = slices.Insert(slices.Clone(list), min(i, len(list)), removed)
	})
	return nil
}

func (c *memoryCollection) Count(_ context.Context, filters []Filter) (int64, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	var n int64
	for _, doc := range c.store.docs[c.name] {
		if matchAll(doc, filters) {
			n++
		}
	}
	return n, nil
}

// indexOf must be called with mu held.
func (s *MemoryStore) indexOf(name string, filters []Filter) int {
	for i, doc := range s.docs[name] {
		if matchAll(doc, filters) {
			return i
		}
	}
	return -1
}

// violatesUnique must be called with mu held. skip is the position of the document being replaced.
func (s *MemoryStore) violatesUnique(name string, doc map[string]any, skip int) bool {
	for _, keys := range s.unique[name] {
		for i, other := range s.docs[name] {
			if i == skip {
				continue
			}
			same := true
			for _, k := range keys {
				if doc[k] == nil || fmt.Sprint(doc[k]) != fmt.Sprint(other[k]) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func matchAll(doc map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if len(f.Fields) > 0 {
			if !slices.ContainsFunc(f.Fields, func(field string) bool {
				value, ok := doc[field]
				return ok && containsFold(value, f.Value)
			}) {
				return false
			}
			continue
		}

		value, ok := doc[f.Field]
		if !ok {
			return false
		}
		switch f.Match {
		case MatchContains:
			if !containsFold(value, f.Value) {
				return false
			}
		default:
			if fmt.Sprint(value) != fmt.Sprint(f.Value) {
				return false
			}
		}
	}
	return true
}

func containsFold(value, sub any) bool {
	return strings.Contains(strings.ToLower(fmt.Sprint(value)), strings.ToLower(fmt.Sprint(sub)))
}

func timeField(doc map[string]any, field string) time.Time {
	s, _ := doc[field].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// normalize runs values through json so stored documents only hold json types.
func normalize(set map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("encode update: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeInto(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
