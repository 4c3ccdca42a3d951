package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLSinkSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	sink, err := NewSQLSinkFromDSN("sqlite://" + path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer func() { _ = sink.Close() }()

	events := []Event{
		{Type: EventStart, OccurredAt: time.Now(), Record: Record{State: "starting", PID: 42}},
		{Type: EventReady, OccurredAt: time.Now(), Record: Record{State: "ready", PID: 42, Port: 4821, URL: "http://127.0.0.1:4821"}},
		{Type: EventStop, OccurredAt: time.Now(), Record: Record{State: "stopped"}},
	}
	for _, e := range events {
		if err := sink.Send(context.Background(), e); err != nil {
			t.Fatalf("send %s: %v", e.Type, err)
		}
	}

	var n int
	if err := sink.db.QueryRow(`SELECT COUNT(*) FROM cli_history`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != len(events) {
		t.Fatalf("rows = %d, want %d", n, len(events))
	}

	var port int
	var urlStr string
	err = sink.db.QueryRow(`SELECT port, url FROM cli_history WHERE event = 'ready'`).Scan(&port, &urlStr)
	if err != nil {
		t.Fatalf("select ready: %v", err)
	}
	if port != 4821 || urlStr != "http://127.0.0.1:4821" {
		t.Fatalf("ready row = %d %q", port, urlStr)
	}
}

func TestSQLSinkPlainPathDefaultsToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.db")
	sink, err := NewSQLSinkFromDSN(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer func() { _ = sink.Close() }()
	if sink.dialect != "sqlite" {
		t.Fatalf("dialect = %q", sink.dialect)
	}
}

func TestSQLSinkEmptyDSN(t *testing.T) {
	if _, err := NewSQLSinkFromDSN("  "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
