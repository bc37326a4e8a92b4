// Package store persists generated chunks so repeat requests for the same
// (seed, chunkX, chunkZ) skip the generator entirely.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"voxelforge/internal/world"
)

// ChunkStore is a sqlite-backed chunk cache with zstd-compressed grids.
// Safe for concurrent use; the single sqlite connection serializes writes.
type ChunkStore struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open creates or opens the cache database at path.
func Open(path string) (*ChunkStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty cache path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, err
	}
	return &ChunkStore{db: db, enc: enc, dec: dec}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS chunks (
			seed INTEGER NOT NULL,
			chunk_x INTEGER NOT NULL,
			chunk_z INTEGER NOT NULL,
			blocks BLOB NOT NULL,
			PRIMARY KEY (seed, chunk_x, chunk_z)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the cached grid for a chunk, or ok=false on a miss. The
// returned buffer is freshly decompressed and owned by the caller.
func (s *ChunkStore) Get(seed int32, chunkX, chunkZ int) (world.Grid, bool) {
	var blob []byte
	err := s.db.QueryRow(
		"SELECT blocks FROM chunks WHERE seed = ? AND chunk_x = ? AND chunk_z = ?",
		seed, chunkX, chunkZ,
	).Scan(&blob)
	if err != nil {
		return nil, false
	}
	raw, err := s.dec.DecodeAll(blob, make([]byte, 0, world.ChunkVolume))
	if err != nil || len(raw) != world.ChunkVolume {
		return nil, false
	}
	return world.Grid(raw), true
}

// Put stores a chunk grid, replacing any previous entry.
func (s *ChunkStore) Put(seed int32, chunkX, chunkZ int, blocks world.Grid) error {
	if !blocks.Valid() {
		return fmt.Errorf("blocks buffer length %d, want %d", len(blocks), world.ChunkVolume)
	}
	blob := s.enc.EncodeAll(blocks, nil)
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO chunks (seed, chunk_x, chunk_z, blocks) VALUES (?, ?, ?, ?)",
		seed, chunkX, chunkZ, blob,
	)
	return err
}

// Count reports how many chunks are cached.
func (s *ChunkStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// Close releases the database and the codec state.
func (s *ChunkStore) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}
