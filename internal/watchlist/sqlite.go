package watchlist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"momentum-trading-bot/internal/types"
)

// SQLiteStore persists watchlists in an embedded SQLite database. Publish is
// a single INSERT OR REPLACE inside a transaction, so readers see either the
// old row or the new one.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS watchlists (
  scan_date TEXT PRIMARY KEY,
  regime TEXT NOT NULL,
  entries TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate watchlists: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, date string) (*types.Watchlist, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT regime, entries
FROM watchlists
WHERE scan_date=?
`, date)
	var regime, entriesJSON string
	if err := row.Scan(&regime, &entriesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query watchlist %s: %w", date, err)
	}

	var entries []types.MomentumEntry
	if err := json.Unmarshal([]byte(entriesJSON), &entries); err != nil {
		return nil, fmt.Errorf("decode watchlist %s: %w", date, err)
	}
	return &types.Watchlist{ScanDate: date, Entries: entries, Regime: types.Regime(regime)}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, wl *types.Watchlist) error {
	entriesJSON, err := json.Marshal(wl.Entries)
	if err != nil {
		return fmt.Errorf("encode watchlist %s: %w", wl.ScanDate, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
INSERT OR REPLACE INTO watchlists (scan_date, regime, entries, updated_at)
VALUES (?,?,?,?)
`, wl.ScanDate, string(wl.Regime), string(entriesJSON), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert watchlist %s: %w", wl.ScanDate, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit watchlist %s: %w", wl.ScanDate, err)
	}
	return nil
}

func (s *SQLiteStore) PurgeBefore(ctx context.Context, date string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlists WHERE scan_date < ?`, date)
	if err != nil {
		return 0, fmt.Errorf("purge watchlists before %s: %w", date, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
