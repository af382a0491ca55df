package bills

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/tbills/internal/database"
	"github.com/aristath/tbills/internal/domain"
	"github.com/rs/zerolog"
)

// SeriesTTL is how long a cached series stays fresh.
// Auction results are published daily, so anything older is re-fetched.
const SeriesTTL = 24 * time.Hour

// Store persists one encoded series per term length with an expiration
// timestamp and a content hash verified on every read.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a new cache store on top of an open database connection.
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "bill_store").Logger(),
	}
}

// InitSchema creates the cache table if it does not exist.
// Safe to call repeatedly; existing records are untouched.
func (s *Store) InitSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bill_series (
			term TEXT PRIMARY KEY,
			blob BLOB NOT NULL,
			content_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize bill_series schema: %w", err)
	}
	return nil
}

// Get returns the stored blob for a term and whether it is fresh at `now`.
// Fresh requires all of: a record exists, now < expires_at, and the stored
// content hash matches a digest recomputed over the blob. A hash mismatch
// is reported as not-fresh rather than an error, so corrupted entries are
// silently replaced by the next refresh instead of being served.
func (s *Store) Get(term domain.TermLength, now time.Time) ([]byte, bool, error) {
	var (
		blob      []byte
		hash      string
		expiresAt int64
	)

	err := s.db.QueryRow(
		"SELECT blob, content_hash, expires_at FROM bill_series WHERE term = ?",
		string(term),
	).Scan(&blob, &hash, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached series for %s: %w", term, err)
	}

	// Expiry boundary is exclusive: a record at exactly expires_at is stale.
	if now.Unix() >= expiresAt {
		return nil, false, nil
	}

	if Digest(blob) != hash {
		s.log.Warn().
			Str("term", string(term)).
			Msg("Cached series failed integrity check, forcing refresh")
		return nil, false, nil
	}

	return blob, true, nil
}

// Put upserts the record for a term as a single atomic row replace,
// with expires_at = createdAt + SeriesTTL.
func (s *Store) Put(term domain.TermLength, blob []byte, createdAt time.Time) error {
	return putRecord(s.db, term, blob, createdAt)
}

// PutAll writes one record per term inside a single transaction: either
// the whole refresh batch lands, or the store is left untouched.
func (s *Store) PutAll(blobs map[domain.TermLength][]byte, createdAt time.Time) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		for _, term := range domain.AllTermLengths() {
			blob, ok := blobs[term]
			if !ok {
				continue
			}
			if err := putRecord(tx, term, blob, createdAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func putRecord(e execer, term domain.TermLength, blob []byte, createdAt time.Time) error {
	expiresAt := createdAt.Add(SeriesTTL).Unix()

	_, err := e.Exec(`
		INSERT INTO bill_series (term, blob, content_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(term) DO UPDATE SET
			blob = excluded.blob,
			content_hash = excluded.content_hash,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, string(term), blob, Digest(blob), createdAt.Unix(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store series for %s: %w", term, err)
	}

	return nil
}
