package docstore

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps documents as encoded bson in process memory. Values come
// back with the same types the Mongo driver produces, which keeps decoding
// paths identical between tests and production.
//
// One transaction runs at a time. Writes from outside it wait until it
// commits or rolls back, so a rollback only restores documents the
// transaction itself touched. Reads never wait.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data map[string]map[string]bson.Raw
}

type memoryTxKey struct{}

// memoryTx records the state of each document before its first write inside
// the transaction; a nil entry means the document did not exist.
type memoryTx struct {
	store *MemoryStore
	undo  map[docKey]bson.Raw
}

type docKey struct {
	collection, id string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]bson.Raw)}
}

func (s *MemoryStore) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	raw, ok := s.data[collection][id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	fields, err := decodeRaw(raw)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Fields: fields}, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, filters ...Where) ([]Document, error) {
	normalized := make([]Where, len(filters))
	for i, f := range filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid filter on %s: %w", f.Field, err)
		}
		normalized[i] = Where{Field: f.Field, Value: v}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []Document
	for id, raw := range s.data[collection] {
		fields, err := decodeRaw(raw)
		if err != nil {
			return nil, err
		}
		if matches(fields, normalized) {
			docs = append(docs, Document{ID: id, Fields: fields})
		}
	}
	return docs, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	kept, _ := splitUnset(fields)
	raw, err := encodeFields(kept)
	if err != nil {
		return err
	}
	return s.write(ctx, collection, id, func() error {
		if s.data[collection] == nil {
			s.data[collection] = make(map[string]bson.Raw)
		}
		s.data[collection][id] = raw
		return nil
	})
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.mutate(ctx, collection, id, func(doc map[string]any) error {
		return setAll(doc, fields)
	})
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	return s.write(ctx, collection, id, func() error {
		delete(s.data[collection], id)
		return nil
	})
}

func (s *MemoryStore) ArrayAppend(ctx context.Context, collection, id, field string, value any, extra map[string]any) error {
	v, err := normalize(value)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, func(doc map[string]any) error {
		items, _ := AsSlice(getPath(doc, field))
		if err := setPath(doc, field, append(append([]any{}, items...), v)); err != nil {
			return err
		}
		return setAll(doc, extra)
	})
}

func (s *MemoryStore) ArrayUnion(ctx context.Context, collection, id, field string, value any, extra map[string]any) error {
	v, err := normalize(value)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, func(doc map[string]any) error {
		items, _ := AsSlice(getPath(doc, field))
		present := false
		for _, item := range items {
			if reflect.DeepEqual(item, v) {
				present = true
				break
			}
		}
		if !present {
			if err := setPath(doc, field, append(append([]any{}, items...), v)); err != nil {
				return err
			}
		}
		return setAll(doc, extra)
	})
}

func (s *MemoryStore) ArrayRemove(ctx context.Context, collection, id, field string, value any, extra map[string]any) error {
	v, err := normalize(value)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, func(doc map[string]any) error {
		items, _ := AsSlice(getPath(doc, field))
		kept := make([]any, 0, len(items))
		for _, item := range items {
			if !reflect.DeepEqual(item, v) {
				kept = append(kept, item)
			}
		}
		if err := setPath(doc, field, kept); err != nil {
			return err
		}
		return setAll(doc, extra)
	})
}

// RunTransaction holds the store's write lock for the duration of fn. A
// nested call with a transaction context joins the outer transaction.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.activeTx(ctx) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memoryTx{store: s, undo: make(map[docKey]bson.Raw)}
	if err := fn(context.WithValue(ctx, memoryTxKey{}, tx)); err != nil {
		s.mu.Lock()
		for key, raw := range tx.undo {
			if raw == nil {
				delete(s.data[key.collection], key.id)
				continue
			}
			if s.data[key.collection] == nil {
				s.data[key.collection] = make(map[string]bson.Raw)
			}
			s.data[key.collection][key.id] = raw
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) activeTx(ctx context.Context) *memoryTx {
	tx, _ := ctx.Value(memoryTxKey{}).(*memoryTx)
	if tx == nil || tx.store != s {
		return nil
	}
	return tx
}

// write runs fn under the data lock. Outside a transaction it first waits
// for any open transaction; inside one it records the document for rollback.
func (s *MemoryStore) write(ctx context.Context, collection, id string, fn func() error) error {
	tx := s.activeTx(ctx)
	if tx == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tx != nil {
		key := docKey{collection, id}
		if _, seen := tx.undo[key]; !seen {
			tx.undo[key] = s.data[collection][id]
		}
	}
	return fn()
}

// mutate applies fn to a decoded copy of the document and stores the result
func (s *MemoryStore) mutate(ctx context.Context, collection, id string, fn func(doc map[string]any) error) error {
	return s.write(ctx, collection, id, func() error {
		raw, ok := s.data[collection][id]
		if !ok {
			return ErrNotFound
		}
		doc, err := decodeRaw(raw)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		updated, err := encodeFields(doc)
		if err != nil {
			return err
		}
		s.data[collection][id] = updated
		return nil
	})
}

func encodeFields(fields map[string]any) (bson.Raw, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	raw, err := bson.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return raw, nil
}

func decodeRaw(raw bson.Raw) (map[string]any, error) {
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return map[string]any(m), nil
}

func setAll(doc map[string]any, fields map[string]any) error {
	fields, unset := splitUnset(fields)
	for _, path := range unset {
		unsetPath(doc, path)
	}
	for path, value := range fields {
		v, err := normalize(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", path, err)
		}
		if err := setPath(doc, path, v); err != nil {
			return err
		}
	}
	return nil
}

func getPath(doc map[string]any, path string) any {
	current := doc
	parts := strings.Split(path, ".")
	for i, part := range parts {
		if i == len(parts)-1 {
			return current[part]
		}
		next, ok := AsMap(current[part])
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

func setPath(doc map[string]any, path string, value any) error {
	current := doc
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := AsMap(current[part])
		if !ok {
			if current[part] != nil {
				return fmt.Errorf("cannot set %s: %s is not a document", path, part)
			}
			next = map[string]any{}
		}
		current[part] = next
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

func unsetPath(doc map[string]any, path string) {
	current := doc
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := AsMap(current[part])
		if !ok {
			return
		}
		current[part] = next
		current = next
	}
	delete(current, parts[len(parts)-1])
}

func matches(doc map[string]any, filters []Where) bool {
	for _, f := range filters {
		if !reflect.DeepEqual(getPath(doc, f.Field), f.Value) {
			return false
		}
	}
	return true
}
