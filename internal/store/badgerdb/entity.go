package badgerdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/pagemark/pagemark-server/internal/store"
)

// Entity provides generic CRUD operations for a domain type stored as JSON
// under prefix+id, with optional secondary indexes. Every method runs on the
// caller's transaction.
type Entity[T any] struct {
	prefix  string
	indexes []Index[T]
}

// Index defines a secondary index on an entity.
//
// A unique index stores prefix+"idx:"+name+":"+key -> id and rejects
// duplicates. A non-unique index stores prefix+"idx:"+name+":"+key+":"+id
// so many entities can share a key.
type Index[T any] struct {
	name   string
	keyGen func(*T) []string
	unique bool
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](prefix string) *Entity[T] {
	return &Entity[T]{prefix: prefix}
}

// WithUniqueIndex adds a unique secondary index to the entity.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen, unique: true})
	return e
}

// WithIndex adds a non-unique secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen})
	return e
}

func (e *Entity[T]) key(id string) []byte {
	return []byte(e.prefix + id)
}

func (e *Entity[T]) indexKey(idx Index[T], indexKey, id string) []byte {
	k := e.prefix + "idx:" + idx.name + ":" + indexKey
	if !idx.unique {
		k += ":" + id
	}
	return []byte(k)
}

// Create stores a new entity.
// Returns store.ErrAlreadyExists if the ID or a unique index key is taken.
func (e *Entity[T]) Create(txn *badger.Txn, id string, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	_, err = txn.Get(e.key(id))
	if err == nil {
		return store.ErrAlreadyExists
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to check existing key: %w", err)
	}

	if err := e.checkUnique(txn, entity, nil); err != nil {
		return err
	}

	if err := txn.Set(e.key(id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return e.setIndexes(txn, id, entity)
}

// Get retrieves an entity by ID.
// Returns store.ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entity)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return &entity, nil
}

// GetByIndex retrieves an entity through a unique index.
func (e *Entity[T]) GetByIndex(txn *badger.Txn, indexName, value string) (*T, error) {
	item, err := txn.Get([]byte(e.prefix + "idx:" + indexName + ":" + value))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var id string
	if err := item.Value(func(val []byte) error {
		id = string(val)
		return nil
	}); err != nil {
		return nil, err
	}
	return e.Get(txn, id)
}

// ListByIndex returns every entity whose non-unique index matches value.
func (e *Entity[T]) ListByIndex(txn *badger.Txn, indexName, value string) ([]*T, error) {
	prefix := []byte(e.prefix + "idx:" + indexName + ":" + value + ":")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = true

	var ids []string
	it := txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			ids = append(ids, string(val))
			return nil
		})
		if err != nil {
			it.Close()
			return nil, err
		}
	}
	it.Close()

	entities := make([]*T, 0, len(ids))
	for _, id := range ids {
		entity, err := e.Get(txn, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// List returns every stored entity, skipping index entries.
func (e *Entity[T]) List(txn *badger.Txn) ([]*T, error) {
	prefix := []byte(e.prefix)
	indexPrefix := []byte(e.prefix + "idx:")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var entities []*T
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if bytes.HasPrefix(it.Item().Key(), indexPrefix) {
			continue
		}
		var entity T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &entity)
		})
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		entities = append(entities, &entity)
	}
	return entities, nil
}

// Update replaces an existing entity and rewrites its index entries.
// Returns store.ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(txn *badger.Txn, id string, entity *T) error {
	old, err := e.Get(txn, id)
	if err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	if err := e.checkUnique(txn, entity, old); err != nil {
		return err
	}
	if err := e.deleteIndexes(txn, id, old); err != nil {
		return err
	}
	if err := txn.Set(e.key(id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return e.setIndexes(txn, id, entity)
}

// Delete removes an entity and its index entries.
// Reports whether anything was removed.
func (e *Entity[T]) Delete(txn *badger.Txn, id string) (bool, error) {
	entity, err := e.Get(txn, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := e.deleteIndexes(txn, id, entity); err != nil {
		return false, err
	}
	if err := txn.Delete(e.key(id)); err != nil {
		return false, fmt.Errorf("failed to delete key: %w", err)
	}
	return true, nil
}

// checkUnique fails if a unique index key of entity is held by another
// entity. Keys that old already owns are skipped.
func (e *Entity[T]) checkUnique(txn *badger.Txn, entity, old *T) error {
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}

		owned := make(map[string]bool)
		if old != nil {
			for _, k := range idx.keyGen(old) {
				owned[k] = true
			}
		}

		for _, k := range idx.keyGen(entity) {
			if owned[k] {
				continue
			}
			_, err := txn.Get(e.indexKey(idx, k, ""))
			if err == nil {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, k, store.ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) setIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, k := range idx.keyGen(entity) {
			if err := txn.Set(e.indexKey(idx, k, id), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, k := range idx.keyGen(entity) {
			if err := txn.Delete(e.indexKey(idx, k, id)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}
