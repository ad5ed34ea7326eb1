package catalog

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
)

type codedError int

func (e codedError) Error() string { return "sqlite error" }
func (e codedError) Code() int     { return int(e) }

func TestWithRetryRetriesBusy(t *testing.T) {
	calls := 0
	got, err := withRetry(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, codedError(sqliteBusy | 0x100)
		}
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("got %d, %v want 42, nil", got, err)
	}
	if calls != 3 {
		t.Fatalf("got %d calls want 3", calls)
	}
}

func TestWithRetryStopsOnOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("constraint failed")
	_, err := withRetry(context.Background(), func(context.Context) (struct{}, error) {
		calls++
		return struct{}{}, boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("got %v after %d calls want %v after 1", err, calls, boom)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, errors.New("database is locked")
	})
	if err == nil || calls != retryAttempts {
		t.Fatalf("got %v after %d calls want error after %d", err, calls, retryAttempts)
	}
}

func TestWithRetryHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := withRetry(ctx, func(context.Context) (int, error) {
		return 0, codedError(sqliteBusy)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v want %v", err, context.Canceled)
	}
}

func TestDataSourceSetsPragmas(t *testing.T) {
	dsn := dataSource("/tmp/catalog.db", 1500)
	path, query, ok := strings.Cut(dsn, "?")
	if !ok || path != "/tmp/catalog.db" {
		t.Fatalf("got %q want path followed by query", dsn)
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	pragmas := values["_pragma"]
	if len(pragmas) != 2 || pragmas[0] != "journal_mode(WAL)" || pragmas[1] != "busy_timeout(1500)" {
		t.Fatalf("got pragmas %v", pragmas)
	}
}
