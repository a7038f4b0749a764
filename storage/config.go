// Package storage persists entities to disk with github.com/erigontech/mdbx-go,
// an embedded transactional key-value store, using the table-name-constant
// + thin Tx wrapper pattern Erigon uses for its own KV layer
// (erigon-lib/kv/tables.go).
package storage

import "github.com/c2h5oh/datasize"

// Config controls how an entity's MDBX environment is opened.
type Config struct {
	// RootDir is the directory each entity's "<name>.mdb" subdirectory is
	// created under.
	RootDir string

	// MapSize is the maximum size MDBX will grow one entity's environment
	// to; expressed in human-readable form ("100MB") rather than a raw
	// byte count.
	MapSize datasize.ByteSize

	// MaxDBs bounds how many named tables one environment may hold. Four
	// tables are opened per entity; this is set generously above that so
	// the same environment could grow more tables later without a
	// reopen.
	MaxDBs uint64

	// MaxReaders bounds how many concurrent read transactions MDBX's
	// fixed reader-slot table will admit; enforced in this package with a
	// semaphore so a burst of concurrent queries degrades to queuing
	// instead of a reader-slot exhaustion error from MDBX itself.
	MaxReaders int

	// ChunkSize is how many records one bulk Add call commits per
	// transaction (§4.5 "chunks of 100"). Non-positive falls back to
	// DefaultChunkSize.
	ChunkSize int
}

const (
	DefaultMapSize    = 100 * datasize.MB
	DefaultMaxDBs     = 16
	DefaultMaxReaders = 126
	DefaultChunkSize  = 100
)

// DefaultConfig returns sane defaults rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		RootDir:    dir,
		MapSize:    DefaultMapSize,
		MaxDBs:     DefaultMaxDBs,
		MaxReaders: DefaultMaxReaders,
		ChunkSize:  DefaultChunkSize,
	}
}

func (c Config) chunkSize() int {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	return DefaultChunkSize
}
