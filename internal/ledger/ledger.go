// Package ledger persists which artwork uploads have already been counted.
// Upload outcomes are observed by polling, so the same resolution can be
// seen more than once; the ledger is the idempotency guard that keeps the
// fixed-artworks counter from double counting.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/corentel/artfix/internal/db"
)

const (
	appName    = "artfix"
	dbFileName = "artfix.db"

	// maxEntries bounds the dedup table; oldest entries are evicted first.
	// An evicted entry can in theory be re-counted, but only if the same
	// upload resolves again hundreds of fixes later.
	maxEntries = 500

	fixedCounter = "fixed_artworks"
)

type Ledger struct {
	db *sql.DB
}

// Open opens the ledger database under the XDG data directory, creating
// it on first use.
func Open() (*Ledger, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("resolve ledger path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens a ledger at an explicit path. ":memory:" works for tests.
func OpenPath(path string) (*Ledger, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := initSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return &Ledger{db: sqlDB}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// MarkFixed records that the upload identified by imageID resolved. It
// returns true only the first time a given imageID is recorded; repeated
// observations of the same resolution return false. The counter is only
// incremented on a first observation, atomically with the mark.
func (l *Ledger) MarkFixed(imageID string) (bool, error) {
	if imageID == "" {
		return false, nil
	}

	first := false
	err := db.WithTx(l.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT OR IGNORE INTO fixed_uploads (image_id, fixed_at) VALUES (?, ?)
		`, imageID, time.Now().Unix())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		first = true

		if _, err := tx.Exec(`
			INSERT INTO counters (name, value) VALUES (?, 1)
			ON CONFLICT(name) DO UPDATE SET value = value + 1
		`, fixedCounter); err != nil {
			return err
		}

		// Evict oldest entries beyond the cap.
		_, err = tx.Exec(`
			DELETE FROM fixed_uploads WHERE image_id IN (
				SELECT image_id FROM fixed_uploads
				ORDER BY fixed_at DESC, image_id DESC
				LIMIT -1 OFFSET ?
			)
		`, maxEntries)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("mark fixed: %w", err)
	}
	return first, nil
}

// FixedCount returns the lifetime number of artworks fixed. Unlike the
// dedup table it is never pruned.
func (l *Ledger) FixedCount() (int64, error) {
	var n sql.NullInt64
	err := l.db.QueryRow(`SELECT value FROM counters WHERE name = ?`, fixedCounter).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read fixed count: %w", err)
	}
	return db.NullInt64Value(n), nil
}

// Fixed reports whether imageID has already been recorded.
func (l *Ledger) Fixed(imageID string) (bool, error) {
	var one int
	err := l.db.QueryRow(`SELECT 1 FROM fixed_uploads WHERE image_id = ?`, imageID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func initSchema(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS fixed_uploads (
			image_id TEXT PRIMARY KEY,
			fixed_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_fixed_uploads_fixed_at ON fixed_uploads(fixed_at);

		CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL DEFAULT 0
		);
	`)
	return err
}
