package storage

import (
	"context"

	"github.com/erigontech/mdbx-go/mdbx"
	"golang.org/x/sync/semaphore"
)

// kv wraps one entity's MDBX environment: the four table handles and a
// semaphore bounding concurrent read transactions against MDBX's fixed
// reader-slot table, the real operational limit Erigon tunes
// `--db.pagesize`/reader counts for on its own MDBX-backed chaindata.
type kv struct {
	env     *mdbx.Env
	readers *semaphore.Weighted

	records   mdbx.DBI
	indices   mdbx.DBI
	documents mdbx.DBI
	deltas    mdbx.DBI
}

func openKV(path string, cfg Config) (*kv, error) {
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, failure("mdbx.NewEnv", err)
	}

	if err := env.SetGeometry(-1, -1, int(cfg.MapSize.Bytes()), -1, -1, -1); err != nil {
		return nil, failure("SetGeometry", err)
	}
	if err := env.SetOption(mdbx.OptMaxDB, cfg.MaxDBs); err != nil {
		return nil, failure("SetOption(MaxDB)", err)
	}
	if err := env.SetOption(mdbx.OptMaxReaders, uint64(cfg.MaxReaders)); err != nil {
		return nil, failure("SetOption(MaxReaders)", err)
	}

	if err := env.Open(path, 0, 0664); err != nil {
		return nil, failure("Open", err)
	}

	store := &kv{env: env, readers: semaphore.NewWeighted(int64(cfg.MaxReaders))}

	err = env.Update(func(txn *mdbx.Txn) error {
		var err error
		if store.records, err = txn.OpenDBISimple(tableRecords, mdbx.Create); err != nil {
			return err
		}
		if store.indices, err = txn.OpenDBISimple(tableIndices, mdbx.Create); err != nil {
			return err
		}
		if store.documents, err = txn.OpenDBISimple(tableDocuments, mdbx.Create); err != nil {
			return err
		}
		if store.deltas, err = txn.OpenDBISimple(tableDeltas, mdbx.Create); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		env.Close()
		return nil, failure("create tables", err)
	}

	return store, nil
}

func (kv *kv) close() { kv.env.Close() }

func (kv *kv) path() string { return kv.env.Path() }

// update runs fn in a single read-write transaction, committing if fn
// returns nil and aborting otherwise. MDBX serializes writers itself, so
// no additional locking is needed here beyond the caller's own
// single-writer discipline.
func (kv *kv) update(fn func(txn *mdbx.Txn) error) error {
	return failure("update", kv.env.Update(fn))
}

// view runs fn in a read-only transaction, bounded by readers so a burst
// of concurrent queries queues instead of exhausting MDBX's reader slots.
func (kv *kv) view(ctx context.Context, fn func(txn *mdbx.Txn) error) error {
	if err := kv.readers.Acquire(ctx, 1); err != nil {
		return failure("acquire reader slot", err)
	}
	defer kv.readers.Release(1)

	return failure("view", kv.env.View(fn))
}
