package persist

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the keyed-cache Store backend: rows survive across
// process runs in one sqlite file, so a second analysis of an unchanged
// classpath can look its fixpoint up instead of re-running RTA's
// worklist. Grounded on the teacher's internal/database.DBManager,
// which holds one *sql.DB per backend behind a mutex-guarded map; here
// there is exactly one backend per Store, so the map collapses to a
// single *sql.DB field.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the cache table in the
// sqlite file at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "persist: open %s", path)
	}
	const schema = `CREATE TABLE IF NOT EXISTS snapshots (
		key   TEXT PRIMARY KEY,
		data  BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "persist: create schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(key string, snap *Snapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return errors.Wrap(err, "persist: encode snapshot")
	}
	_, err := s.db.Exec(
		`INSERT INTO snapshots (key, data) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		key, buf.Bytes(),
	)
	if err != nil {
		return errors.Wrapf(err, "persist: put %s", key)
	}
	return nil
}

func (s *SQLiteStore) Get(key string) (*Snapshot, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "persist: get %s", key)
	}

	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, false, errors.Wrapf(err, "persist: decode %s", key)
	}
	return &snap, true, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// HashKey folds parts into one deterministic blake2b digest, for
// building a Put/Get key out of whatever a caller considers "the
// classpath's identity" for caching purposes — e.g. the classpath spec
// string plus the sorted list of entry-point method signatures. Kept
// as a pure string-hash instead of hashing class bytes directly: this
// package has no reason to reach into classpath's internals (raw bytes
// aren't retained past decode there, only the decoded *ClassFile), and
// a caller-assembled identity string is cheaper and equally sound for
// cache-key purposes.
func HashKey(parts ...string) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // blake2b.New256 with a nil key never errors
	}
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s\x00", len(p), p)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NewRunID mints a fresh run identifier for Snapshot.RunID (spec §6).
func NewRunID() string {
	return uuid.NewString()
}
