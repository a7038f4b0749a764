package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	roaring "github.com/RoaringBitmap/roaring/v2"
	"github.com/erigontech/mdbx-go/mdbx"
	"go.uber.org/zap"

	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/internal/mathutil"
	"github.com/aleics/deltasearch/query"
	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/value"
)

// FieldIndex names one field and the index shape it should be created
// with, used by CreateIndices for both fresh fields and backfill.
type FieldIndex struct {
	Name       string
	Descriptor index.Descriptor
}

// EntityStorage is one entity's on-disk store: four MDBX tables plus an
// in-memory cache of each indexed field's descriptor, kept to avoid a
// table read on every ingest (§4.5, mirroring storage.rs's
// `index_descriptors`).
type EntityStorage struct {
	ID string

	kv     *kv
	log    *zap.Logger
	config Config

	mu          sync.RWMutex // guards descriptors only; MDBX serializes writers itself
	descriptors map[string]index.Descriptor
}

// Open initializes (or reopens) the named entity's environment under
// cfg.RootDir.
func Open(name string, cfg Config, log *zap.Logger) (*EntityStorage, error) {
	if name == "" {
		return nil, ErrNoName
	}
	if log == nil {
		log = zap.NewNop()
	}

	path := filepath.Join(cfg.RootDir, name+mdbExtension)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, failure("create entity directory", err)
	}

	store, err := openKV(path, cfg)
	if err != nil {
		return nil, err
	}

	entity := &EntityStorage{
		ID:          name,
		kv:          store,
		log:         log.With(zap.String("entity", name)),
		config:      cfg,
		descriptors: map[string]index.Descriptor{},
	}

	if err := entity.loadDescriptors(); err != nil {
		store.close()
		return nil, err
	}

	entity.log.Info("entity opened", zap.String("path", path))
	return entity, nil
}

// DiscoverEntities lists the entity names with an existing "<name>.mdb"
// directory under root, for Engine.Init to reopen at process start.
func DiscoverEntities(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), mdbExtension); ok {
			names = append(names, name)
		}
	}
	return names
}

func (e *EntityStorage) Close() { e.kv.close() }

func (e *EntityStorage) Path() string { return e.kv.path() }

func (e *EntityStorage) loadDescriptors() error {
	return e.kv.update(func(txn *mdbx.Txn) error {
		cur, err := txn.OpenCursor(e.kv.indices)
		if err != nil {
			return err
		}
		defer cur.Close()

		for {
			key, val, err := cur.Get(nil, nil, mdbx.Next)
			if mdbx.IsNotFound(err) {
				break
			}
			if err != nil {
				return err
			}
			idx, err := index.Decode(val)
			if err != nil {
				return err
			}
			e.descriptors[string(key)] = idx.Descriptor()
		}
		return nil
	})
}

// Clear removes every record, index and live-position bitmap. Persisted
// deltas are left untouched, matching the original's `clear` (which only
// clears data/indices/documents, never the deltas table).
func (e *EntityStorage) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.kv.update(func(txn *mdbx.Txn) error {
		if err := txn.Drop(e.kv.records, false); err != nil {
			return err
		}
		if err := txn.Drop(e.kv.indices, false); err != nil {
			return err
		}
		return txn.Drop(e.kv.documents, false)
	})
	if err != nil {
		return failure("clear", err)
	}

	e.descriptors = map[string]index.Descriptor{}
	e.log.Info("entity cleared")
	return nil
}

// Add stores items in chunks of Config.ChunkSize, committing one
// transaction per chunk so a very large bulk ingest doesn't hold a single
// writer transaction open for its whole duration (§4.5).
func (e *EntityStorage) Add(items []record.Record) error {
	chunkSize := e.config.chunkSize()
	chunks := mathutil.CeilDiv(len(items), chunkSize)

	var stored uint64
	for start, n := 0, 0; start < len(items); start, n = start+chunkSize, n+1 {
		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}
		if err := e.addChunk(items[start:end]); err != nil {
			return err
		}

		added, overflow := mathutil.SafeAdd(stored, uint64(end-start))
		if overflow {
			return fmt.Errorf("storage: item count overflowed during bulk add")
		}
		stored = added
		e.log.Debug("chunk committed", zap.Int("chunk", n+1), zap.Int("of", chunks))
	}
	if len(items) > 0 {
		e.log.Debug("items added", zap.Uint64("count", stored))
	}
	return nil
}

func (e *EntityStorage) addChunk(items []record.Record) error {
	e.mu.RLock()
	descriptors := e.descriptors
	e.mu.RUnlock()

	return e.kv.update(func(txn *mdbx.Txn) error {
		all, err := e.readAllPositions(txn)
		if err != nil {
			return err
		}

		indicesToStore := map[string]index.Index{}

		for _, item := range items {
			pos, err := record.IDToPosition(item.ID)
			if err != nil {
				return err
			}

			encoded, err := record.Encode(item)
			if err != nil {
				return err
			}
			if err := txn.Put(e.kv.records, idKey(item.ID), encoded, 0); err != nil {
				return err
			}

			for name, descriptor := range descriptors {
				fieldValue, ok := item.Fields[name]
				if !ok {
					continue
				}

				idx, ok := indicesToStore[name]
				if !ok {
					idx, err = e.readIndex(txn, name)
					if err != nil {
						return err
					}
					if idx == nil {
						idx = index.New(descriptor)
					}
					indicesToStore[name] = idx
				}

				if err := idx.Put(fieldValue, pos); err != nil {
					return err
				}
			}

			all.Add(pos)
		}

		if err := e.putPositions(txn, all); err != nil {
			return err
		}
		return e.storeIndices(txn, indicesToStore)
	})
}

// CreateIndices creates or overwrites the named indices and backfills
// them from every currently stored record in one transaction (§4.5
// "Index creation after data exists").
func (e *EntityStorage) CreateIndices(fields []FieldIndex) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	indicesToStore := map[string]index.Index{}
	descriptors := map[string]index.Descriptor{}
	for _, f := range fields {
		indicesToStore[f.Name] = index.New(f.Descriptor)
		descriptors[f.Name] = f.Descriptor
	}

	err := e.kv.update(func(txn *mdbx.Txn) error {
		cur, err := txn.OpenCursor(e.kv.records)
		if err != nil {
			return err
		}
		defer cur.Close()

		for {
			key, val, err := cur.Get(nil, nil, mdbx.Next)
			if mdbx.IsNotFound(err) {
				break
			}
			if err != nil {
				return err
			}

			item, err := record.Decode(val)
			if err != nil {
				return err
			}
			pos, err := record.IDToPosition(keyToID(key))
			if err != nil {
				return err
			}

			for _, f := range fields {
				fieldValue, ok := item.Fields[f.Name]
				if !ok {
					continue
				}
				if err := indicesToStore[f.Name].Put(fieldValue, pos); err != nil {
					return err
				}
			}
		}

		return e.storeIndices(txn, indicesToStore)
	})
	if err != nil {
		return failure("create indices", err)
	}

	for name, descriptor := range descriptors {
		e.descriptors[name] = descriptor
	}
	e.log.Info("indices created", zap.Int("count", len(fields)))
	return nil
}

// Remove deletes items by id, from the records table, every index, and
// the live-position bitmap.
func (e *EntityStorage) Remove(ids []record.ID) error {
	return e.kv.update(func(txn *mdbx.Txn) error {
		var toDelete []record.Position
		for _, id := range ids {
			if err := txn.Del(e.kv.records, idKey(id), nil); err != nil {
				if mdbx.IsNotFound(err) {
					continue
				}
				return err
			}
			pos, err := record.IDToPosition(id)
			if err != nil {
				return err
			}
			toDelete = append(toDelete, pos)
		}
		if len(toDelete) == 0 {
			return nil
		}

		cur, err := txn.OpenCursor(e.kv.indices)
		if err != nil {
			return err
		}
		defer cur.Close()

		for {
			key, val, err := cur.Get(nil, nil, mdbx.Next)
			if mdbx.IsNotFound(err) {
				break
			}
			if err != nil {
				return err
			}

			idx, err := index.Decode(val)
			if err != nil {
				return err
			}
			for _, pos := range toDelete {
				idx.RemoveItem(pos)
			}

			encoded, err := index.Encode(idx)
			if err != nil {
				return err
			}
			if err := cur.Put(key, encoded, mdbx.Current); err != nil {
				return err
			}
		}

		all, err := e.readAllPositions(txn)
		if err != nil {
			return err
		}
		for _, pos := range toDelete {
			all.Remove(pos)
		}
		return e.putPositions(txn, all)
	})
}

// ReadByID implements query.IndexSource.
func (e *EntityStorage) ReadByID(id record.ID) (record.Record, bool, error) {
	var item record.Record
	var found bool

	err := e.withReadTxn(func(txn *mdbx.Txn) error {
		val, err := txn.Get(e.kv.records, idKey(id))
		if mdbx.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		item, err = record.Decode(val)
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return item, found, err
}

// ReadCurrentIndices implements query.IndexSource.
func (e *EntityStorage) ReadCurrentIndices(fields []string) (query.EntityIndices, error) {
	var result query.EntityIndices
	err := e.withReadTxn(func(txn *mdbx.Txn) error {
		var err error
		result, err = e.readIndices(txn, fields)
		return err
	})
	return result, err
}

// ReadAllCurrentIndices implements query.IndexSource.
func (e *EntityStorage) ReadAllCurrentIndices() (query.EntityIndices, error) {
	var result query.EntityIndices
	err := e.withReadTxn(func(txn *mdbx.Txn) error {
		var err error
		result, err = e.readAllIndices(txn)
		return err
	})
	return result, err
}

// ReadIndicesIn implements query.IndexSource: it overlays the persisted
// deltas for scope up to and including scope.Date onto the fields'
// baseline indices.
func (e *EntityStorage) ReadIndicesIn(scope query.DeltaScope, fields []string) (query.EntityIndices, error) {
	var result query.EntityIndices
	err := e.withReadTxn(func(txn *mdbx.Txn) error {
		deltas, err := e.readDeltas(txn, scope)
		if err != nil {
			return err
		}

		readFields := fields
		if len(deltas) > 0 {
			readFields = append(append([]string{}, fields...), deltaFieldNames(deltas)...)
		}

		indices, err := e.readIndices(txn, readFields)
		if err != nil {
			return err
		}

		indices.AffectedFields, err = applyDeltas(deltas, indices.Fields)
		result = indices
		return err
	})
	return result, err
}

// ReadAllIndicesIn implements query.IndexSource.
func (e *EntityStorage) ReadAllIndicesIn(scope query.DeltaScope) (query.EntityIndices, error) {
	var result query.EntityIndices
	err := e.withReadTxn(func(txn *mdbx.Txn) error {
		deltas, err := e.readDeltas(txn, scope)
		if err != nil {
			return err
		}

		indices, err := e.readAllIndices(txn)
		if err != nil {
			return err
		}

		indices.AffectedFields, err = applyDeltas(deltas, indices.Fields)
		result = indices
		return err
	})
	return result, err
}

// AddDeltas persists field changes under scope, keyed by scope.Date's
// midnight timestamp (§4.5 "deltas: scope id → timestamp → field →
// StoredDelta").
func (e *EntityStorage) AddDeltas(scope query.DeltaScope, changes []query.DeltaChange) error {
	ts, err := value.ParseDate(scope.Date)
	if err != nil {
		return err
	}
	key := scopeKey(scope.Branch)

	e.mu.RLock()
	descriptors := e.descriptors
	e.mu.RUnlock()

	return e.kv.update(func(txn *mdbx.Txn) error {
		log, err := e.readScopeLog(txn, key)
		if err != nil {
			return err
		}
		if log == nil {
			log = scopeLog{}
		}
		if log[ts] == nil {
			log[ts] = map[string]storedDelta{}
		}

		for _, change := range changes {
			descriptor, ok := descriptors[change.Field]
			if !ok {
				return errUnknownDeltaField(change.Field)
			}

			sd, ok := log[ts][change.Field]
			if !ok {
				sd = storedDelta{
					fieldName: change.Field,
					before:    index.New(descriptor),
					after:     index.New(descriptor),
					affected:  roaring.New(),
				}
			}

			pos, err := record.IDToPosition(change.ID)
			if err != nil {
				return err
			}
			if change.Before != nil {
				if err := sd.before.Put(*change.Before, pos); err != nil {
					return err
				}
			}
			if change.After != nil {
				if err := sd.after.Put(*change.After, pos); err != nil {
					return err
				}
			}
			sd.affected.Add(pos)

			log[ts][change.Field] = sd
		}

		encoded, err := encodeScopeLog(log)
		if err != nil {
			return err
		}
		return txn.Put(e.kv.deltas, idKey(key), encoded, 0)
	})
}

func (e *EntityStorage) withReadTxn(fn func(txn *mdbx.Txn) error) error {
	return e.kv.view(context.Background(), fn)
}

func (e *EntityStorage) readAllPositions(txn *mdbx.Txn) (*roaring.Bitmap, error) {
	val, err := txn.Get(e.kv.documents, []byte(allItemsKey))
	if mdbx.IsNotFound(err) {
		return roaring.New(), nil
	}
	if err != nil {
		return nil, err
	}
	bitmap := roaring.New()
	if err := bitmap.UnmarshalBinary(val); err != nil {
		return nil, err
	}
	return bitmap, nil
}

func (e *EntityStorage) putPositions(txn *mdbx.Txn, all *roaring.Bitmap) error {
	encoded, err := all.MarshalBinary()
	if err != nil {
		return err
	}
	return txn.Put(e.kv.documents, []byte(allItemsKey), encoded, 0)
}

func (e *EntityStorage) readIndex(txn *mdbx.Txn, name string) (index.Index, error) {
	val, err := txn.Get(e.kv.indices, []byte(name))
	if mdbx.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return index.Decode(val)
}

func (e *EntityStorage) storeIndices(txn *mdbx.Txn, indices map[string]index.Index) error {
	for name, idx := range indices {
		encoded, err := index.Encode(idx)
		if err != nil {
			return err
		}
		if err := txn.Put(e.kv.indices, []byte(name), encoded, 0); err != nil {
			return err
		}
	}
	return nil
}

func (e *EntityStorage) readIndices(txn *mdbx.Txn, fields []string) (query.EntityIndices, error) {
	result := query.EntityIndices{Fields: make(map[string]index.Index, len(fields))}

	for _, name := range fields {
		idx, err := e.readIndex(txn, name)
		if err != nil {
			return query.EntityIndices{}, err
		}
		if idx != nil {
			result.Fields[name] = idx
		}
	}

	all, err := e.readAllPositions(txn)
	if err != nil {
		return query.EntityIndices{}, err
	}
	result.All = all
	return result, nil
}

func (e *EntityStorage) readAllIndices(txn *mdbx.Txn) (query.EntityIndices, error) {
	result := query.EntityIndices{Fields: map[string]index.Index{}}

	cur, err := txn.OpenCursor(e.kv.indices)
	if err != nil {
		return query.EntityIndices{}, err
	}
	defer cur.Close()

	for {
		key, val, err := cur.Get(nil, nil, mdbx.Next)
		if mdbx.IsNotFound(err) {
			break
		}
		if err != nil {
			return query.EntityIndices{}, err
		}
		idx, err := index.Decode(val)
		if err != nil {
			return query.EntityIndices{}, err
		}
		result.Fields[string(key)] = idx
	}

	all, err := e.readAllPositions(txn)
	if err != nil {
		return query.EntityIndices{}, err
	}
	result.All = all
	return result, nil
}

func (e *EntityStorage) readScopeLog(txn *mdbx.Txn, key uint64) (scopeLog, error) {
	val, err := txn.Get(e.kv.deltas, idKey(key))
	if mdbx.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeScopeLog(val)
}

func (e *EntityStorage) readDeltas(txn *mdbx.Txn, scope query.DeltaScope) (map[string]index.Delta, error) {
	log, err := e.readScopeLog(txn, scopeKey(scope.Branch))
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, nil
	}
	cutoff, err := value.ParseDate(scope.Date)
	if err != nil {
		return nil, err
	}
	return aggregateDeltas(log, cutoff)
}

// applyDeltas composes each field's aggregated delta onto the
// corresponding baseline index already present in fields, in place, and
// returns the names of the fields actually touched.
func applyDeltas(deltas map[string]index.Delta, fields map[string]index.Index) ([]string, error) {
	if len(deltas) == 0 {
		return nil, nil
	}

	var touched []string
	for name, delta := range deltas {
		idx, ok := fields[name]
		if !ok {
			continue
		}
		if err := idx.Minus(delta.Before); err != nil {
			return nil, err
		}
		if err := idx.Plus(delta.After); err != nil {
			return nil, err
		}
		touched = append(touched, name)
	}
	return touched, nil
}

func deltaFieldNames(deltas map[string]index.Delta) []string {
	names := make([]string, 0, len(deltas))
	for name := range deltas {
		names = append(names, name)
	}
	return names
}

func idKey(id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return buf[:]
}

func keyToID(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
