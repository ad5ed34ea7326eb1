package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when no entry has the requested name.
var ErrNotFound = errors.New("catalog entry not found")

// Entry is a stored canonical document.
type Entry struct {
	Name     string
	Document []byte
	Digest   string
	// Precision is the digit count the document was serialized with; -1
	// means full precision.
	Precision       int
	IssueCount      int
	TrackCount      int
	DurationSeconds float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Digest returns the hex SHA-256 of a document.
func Digest(document []byte) string {
	sum := sha256.Sum256(document)
	return hex.EncodeToString(sum[:])
}

const entryColumns = "name, document, digest, precision, issue_count, track_count, duration_seconds, created_at, updated_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		e          Entry
		document   string
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&e.Name,
		&document,
		&e.Digest,
		&e.Precision,
		&e.IssueCount,
		&e.TrackCount,
		&e.DurationSeconds,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	e.Document = []byte(document)
	e.CreatedAt = parseTime(createdRaw)
	e.UpdatedAt = parseTime(updatedRaw)
	return &e, nil
}

func parseTime(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Put inserts or replaces the entry named e.Name and returns the stored row.
// The digest is recomputed from the document; CreatedAt survives
// replacement.
func (s *Store) Put(ctx context.Context, e Entry) (*Entry, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return nil, errors.New("catalog entry name is required")
	}
	if len(e.Document) == 0 {
		return nil, errors.New("catalog entry document is empty")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.exec(
		ctx,
		`INSERT INTO documents (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            document = excluded.document,
            digest = excluded.digest,
            precision = excluded.precision,
            issue_count = excluded.issue_count,
            track_count = excluded.track_count,
            duration_seconds = excluded.duration_seconds,
            updated_at = excluded.updated_at`,
		name,
		string(e.Document),
		Digest(e.Document),
		e.Precision,
		e.IssueCount,
		e.TrackCount,
		e.DurationSeconds,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("put entry: %w", err)
	}
	return s.Get(ctx, name)
}

// Get fetches an entry by name.
func (s *Store) Get(ctx context.Context, name string) (*Entry, error) {
	entry, err := withRetry(ctx, func(ctx context.Context) (*Entry, error) {
		return scanEntry(s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM documents WHERE name = ?`, strings.TrimSpace(name)))
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// List returns every entry ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	entries, err := withRetry(ctx, func(ctx context.Context) ([]Entry, error) {
		rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM documents ORDER BY name`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var entries []Entry
		for rows.Next() {
			entry, err := scanEntry(rows)
			if err != nil {
				return nil, err
			}
			entries = append(entries, *entry)
		}
		return entries, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// FindByDigest returns the names of entries whose document has digest.
func (s *Store) FindByDigest(ctx context.Context, digest string) ([]string, error) {
	names, err := withRetry(ctx, func(ctx context.Context) ([]string, error) {
		rows, err := s.db.QueryContext(ctx, `SELECT name FROM documents WHERE digest = ? ORDER BY name`, digest)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var names []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, err
			}
			names = append(names, name)
		}
		return names, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("find by digest: %w", err)
	}
	return names, nil
}

// Delete removes an entry.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.exec(ctx, `DELETE FROM documents WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
