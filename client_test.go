package kaimono

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T, source Source) *Client {
	t.Helper()

	client, err := New(Config{
		DBPath: filepath.Join(t.TempDir(), "kaimono.db"),
	}, source)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClientInvalidConfig(t *testing.T) {
	_, err := New(Config{FetchTimeout: -1}, nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	if ve.Field != "FetchTimeout" {
		t.Errorf("expected the FetchTimeout field to be flagged, got %q", ve.Field)
	}
}

func TestClientLogsEmpty(t *testing.T) {
	client := newTestClient(t, nil)

	logs, err := client.Logs()
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected an empty store, got %d rows", len(logs))
	}
}

func TestClientSyncWithoutSource(t *testing.T) {
	client := newTestClient(t, nil)

	_, err := client.Sync(context.Background())
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}

func TestClientSyncAndList(t *testing.T) {
	session := &fakeSession{
		oldest: MustDate("2021-11-01"),
		records: []RawRecord{
			{Hash: "h1", Name: "coffee", Price: 300, PurchasedAt: MustDate("2021-11-03")},
			{Hash: "h2", Name: "beans", Price: 900, PurchasedAt: MustDate("2021-11-02")},
		},
	}
	client := newTestClient(t, &fakeSource{session: session})
	client.syncer.now = fixedNow

	outcome, err := client.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if outcome.Persisted != 2 {
		t.Errorf("expected 2 persisted, got %+v", outcome)
	}

	logs, err := client.Logs()
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(logs))
	}
	if logs[0].PurchasedAt.String() != "2021-11-02" {
		t.Errorf("expected date-ascending order, got %s first", logs[0].PurchasedAt)
	}

	runs, err := client.Runs(10)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != RunStatusDone {
		t.Errorf("unexpected journal: %+v", runs)
	}

	stats, err := client.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.LogCount != 2 {
		t.Errorf("expected 2 logs counted, got %+v", stats)
	}
}

func TestClientStoreComposition(t *testing.T) {
	client := newTestClient(t, nil)

	_, err := Run(client.Store(), CreateLog(NewLog{Hash: "h", Name: "n", Price: 1, PurchasedAt: MustDate("2021-11-01")}))
	if err != nil {
		t.Fatalf("CreateLog through the exposed store failed: %v", err)
	}

	logs, err := client.Logs()
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("expected the composed write to be visible, got %d rows", len(logs))
	}
}

func TestClientClose(t *testing.T) {
	client, err := New(Config{DBPath: filepath.Join(t.TempDir(), "kaimono.db")}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err = client.Logs()
	if !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed after Close, got %v", err)
	}
}
