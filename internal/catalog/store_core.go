package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"timelinekit/internal/config"
)

// Store is the catalog database. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Lock contention that outlives busy_timeout is retried a few more times
// with doubling waits.
const (
	sqliteBusy    = 5
	retryAttempts = 5
	firstBackoff  = 10 * time.Millisecond
	maxBackoff    = 200 * time.Millisecond
)

func busy(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		return coder.Code()&0xff == sqliteBusy
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// withRetry runs op until it succeeds, fails for a reason other than lock
// contention, or runs out of attempts.
func withRetry[T any](ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	wait := firstBackoff
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil || !busy(err) || attempt == retryAttempts {
			return result, err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
		wait = min(2*wait, maxBackoff)
	}
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return withRetry(ctx, func(ctx context.Context) (sql.Result, error) {
		return s.db.ExecContext(ctx, query, args...)
	})
}

// dataSource sets the pragmas on every pooled connection rather than only
// the first one.
func dataSource(path string, busyTimeout int) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout))
	return path + "?" + q.Encode()
}

// Open creates or opens the catalog at cfg.Paths.CatalogPath and checks its
// schema version.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	path := cfg.Paths.CatalogPath
	db, err := sql.Open("sqlite", dataSource(path, cfg.Catalog.BusyTimeoutMillis))
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	s := &Store{db: db, path: path}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path is the database file.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle. It is safe on a nil Store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
