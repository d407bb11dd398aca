// Package cache persists compiled declarations keyed by content hash, so a
// session can recognize a module it has already registered and skip the
// redundant work.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS declarations (
	hash       TEXT PRIMARY KEY,
	module     TEXT NOT NULL,
	decl       TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

type Store struct {
	db *sql.DB
}

// Open opens or creates the cache at path. An empty path keeps the cache in
// memory, which is what ephemeral sessions and tests want.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Hash derives the cache key for a declaration.
func Hash(decl string) string {
	sum := sha256.Sum256([]byte(decl))
	return hex.EncodeToString(sum[:])
}

// Get returns the stored declaration for hash, reporting whether it was found.
func (s *Store) Get(hash string) (string, bool, error) {
	var decl string
	err := s.db.QueryRow(`SELECT decl FROM declarations WHERE hash = ?`, hash).Scan(&decl)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return decl, true, nil
}

// Put stores a declaration under hash. Re-inserting the same hash is a no-op.
func (s *Store) Put(hash, module, decl string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO declarations (hash, module, decl) VALUES (?, ?, ?)`,
		hash, module, decl)
	if err != nil {
		slog.Error("failed to store declaration", slog.String("error", err.Error()))
	}
	return err
}
