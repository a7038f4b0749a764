// Package engine ties the value/index/query layers to persistent
// storage and exposes the engine's public operation surface: named
// entities behind a single-writer/many-reader lock, a thin façade over
// a storage handle in the style of Erigon's `eth1/eth1_chain_reader.go`.
package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/query"
	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/storage"
)

// Engine exposes named entities and routes per-entity operations
// through each entity's own lock (§2 "single-writer / many-reader").
type Engine struct {
	log    *zap.Logger
	config storage.Config

	mu       sync.RWMutex
	entities map[string]*entityHandle
}

// entityHandle pairs one entity's storage with its read/write lock. MDBX
// already serializes writers at the transaction level; the write lock is
// taken only by descriptor mutations (CreateIndex, Clear), which therefore
// never interleave with a query or an ingest. Ingest (Add, Remove,
// StoreDeltas) takes the read lock, so the chunks of two concurrent Add
// calls may interleave. This matches the original's per-entity
// RwLock<EntityStorage>.
type entityHandle struct {
	mu      sync.RWMutex
	storage *storage.EntityStorage
}

// New builds an Engine rooted at config.RootDir, with no entities yet
// discovered; call Init to populate it from existing on-disk data.
func New(config storage.Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, config: config, entities: map[string]*entityHandle{}}
}

// Init discovers and opens every entity with an existing "<name>.mdb"
// directory under config.RootDir (§6 "init()").
func (e *Engine) Init() error {
	for _, name := range storage.DiscoverEntities(e.config.RootDir) {
		if _, err := e.openEntity(name); err != nil {
			return err
		}
	}
	e.log.Info("engine initialized", zap.Int("entities", len(e.entities)))
	return nil
}

// CreateEntity opens a fresh, empty entity named name.
func (e *Engine) CreateEntity(name string) error {
	e.mu.RLock()
	_, exists := e.entities[name]
	e.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: %q", ErrEntityExists, name)
	}

	_, err := e.openEntity(name)
	return err
}

func (e *Engine) openEntity(name string) (*entityHandle, error) {
	store, err := storage.Open(name, e.config, e.log)
	if err != nil {
		return nil, err
	}

	handle := &entityHandle{storage: store}

	e.mu.Lock()
	e.entities[name] = handle
	e.mu.Unlock()

	return handle, nil
}

func (e *Engine) entity(name string) (*entityHandle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	handle, ok := e.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntityNotFound, name)
	}
	return handle, nil
}

// FieldIndex names a field and the index shape CreateIndex should
// create it with.
type FieldIndex = storage.FieldIndex

// CreateIndex creates or backfills the named indices on entity.
func (e *Engine) CreateIndex(name string, fields []FieldIndex) error {
	handle, err := e.entity(name)
	if err != nil {
		return err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()
	return handle.storage.CreateIndices(fields)
}

// Add stores items in entity, in order, chunked per Config.ChunkSize. It
// takes entity's read lock, not its write lock: the storage layer itself
// serializes writers through MDBX's write-transaction queue, so concurrent
// ingest from multiple callers is permitted and only ordered at that
// boundary (§5 "Scheduling model").
func (e *Engine) Add(name string, items []record.Record) error {
	handle, err := e.entity(name)
	if err != nil {
		return err
	}

	handle.mu.RLock()
	defer handle.mu.RUnlock()
	return handle.storage.Add(items)
}

// Remove deletes items by id from entity. Takes the read lock; see Add.
func (e *Engine) Remove(name string, ids []record.ID) error {
	handle, err := e.entity(name)
	if err != nil {
		return err
	}

	handle.mu.RLock()
	defer handle.mu.RUnlock()
	return handle.storage.Remove(ids)
}

// Clear empties entity's records, indices and live-position bitmap.
func (e *Engine) Clear(name string) error {
	handle, err := e.entity(name)
	if err != nil {
		return err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()
	return handle.storage.Clear()
}

// StoreDeltas persists changes against entity, scoped to date and an
// optional branch. A nil branch defaults to 0, the only point in the
// public API where that default is applied (§ Open Question: "branch is
// required once a delta is persisted; it defaults to 0 only at the
// engine's public boundary"). Like Add/Remove, this takes the read lock:
// it is ingestion, serialized by storage's own write transactions, not a
// descriptor mutation (§5).
func (e *Engine) StoreDeltas(name, date string, branch *uint64, deltas []query.DeltaChange) error {
	handle, err := e.entity(name)
	if err != nil {
		return err
	}

	scope := query.NewDeltaScope(date)
	if branch != nil {
		scope = scope.WithBranch(*branch)
	}

	handle.mu.RLock()
	defer handle.mu.RUnlock()
	return handle.storage.AddDeltas(scope, deltas)
}

// Query runs exec against entity's current (or scoped) indices and
// returns the matching records.
func (e *Engine) Query(name string, exec query.QueryExecution) ([]record.Record, error) {
	handle, err := e.entity(name)
	if err != nil {
		return nil, err
	}

	handle.mu.RLock()
	defer handle.mu.RUnlock()
	return exec.Run(handle.storage)
}

// Options runs exec against entity's current (or scoped) indices and
// returns the resulting facet counts.
func (e *Engine) Options(name string, exec query.OptionsQueryExecution) ([]query.FilterOption, error) {
	handle, err := e.entity(name)
	if err != nil {
		return nil, err
	}

	handle.mu.RLock()
	defer handle.mu.RUnlock()
	return exec.Run(handle.storage)
}

// Close releases every entity's storage handle.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, handle := range e.entities {
		handle.storage.Close()
	}
}

// IndexDescriptor re-exports index.Descriptor so callers configuring
// CreateIndex don't need to import the index package directly.
type IndexDescriptor = index.Descriptor
