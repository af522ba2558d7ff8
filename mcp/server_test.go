package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	kaimono "github.com/mfujimori/kaimono"
)

func newTestServer(t *testing.T) (*Server, *kaimono.Client) {
	t.Helper()

	client, err := kaimono.New(kaimono.Config{
		DBPath: filepath.Join(t.TempDir(), "kaimono.db"),
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return NewServer(client), client
}

func seedLog(t *testing.T, client *kaimono.Client, hash, name string, price int64, date string) {
	t.Helper()
	_, err := kaimono.Run(client.Store(), kaimono.CreateLog(kaimono.NewLog{
		Hash:        hash,
		Name:        name,
		Price:       price,
		PurchasedAt: kaimono.MustDate(date),
	}))
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestListTools(t *testing.T) {
	server, _ := newTestServer(t)

	tools := server.ListTools()
	if len(tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(tools))
	}

	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.Name] = true
		if tool.Description == "" {
			t.Errorf("tool %s has no description", tool.Name)
		}
	}
	if !names["purchase_list"] || !names["purchase_sync"] {
		t.Errorf("expected purchase_list and purchase_sync, got %v", names)
	}
}

func TestCallToolUnknown(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.CallTool(context.Background(), "nonexistent", nil)
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for an unknown tool")
	}
}

func TestPurchaseList(t *testing.T) {
	server, client := newTestServer(t)
	seedLog(t, client, "h1", "coffee", 300, "2021-11-01")
	seedLog(t, client, "h2", "beans", 900, "2021-11-03")

	result, err := server.CallTool(context.Background(), "purchase_list", nil)
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}

	var entries []listEntry
	if err := json.Unmarshal([]byte(result.Content), &entries); err != nil {
		t.Fatalf("expected JSON content, got %q: %v", result.Content, err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "coffee" || entries[0].PurchasedAt != "2021-11-01" {
		t.Errorf("expected oldest first, got %+v", entries[0])
	}
}

func TestPurchaseListLimit(t *testing.T) {
	server, client := newTestServer(t)
	seedLog(t, client, "h1", "coffee", 300, "2021-11-01")
	seedLog(t, client, "h2", "beans", 900, "2021-11-03")
	seedLog(t, client, "h3", "filter", 150, "2021-11-05")

	result, err := server.CallTool(context.Background(), "purchase_list", map[string]any{"limit": float64(2)})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}

	var entries []listEntry
	if err := json.Unmarshal([]byte(result.Content), &entries); err != nil {
		t.Fatalf("expected JSON content: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected the 2 most recent entries, got %d", len(entries))
	}
	if entries[0].Hash != "h2" || entries[1].Hash != "h3" {
		t.Errorf("expected the tail of the history, got %+v", entries)
	}
}

func TestPurchaseSyncWithoutSource(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.CallTool(context.Background(), "purchase_sync", nil)
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result with no source configured")
	}
	if !strings.Contains(result.Content, "sync failed") {
		t.Errorf("expected a sync failure message, got %q", result.Content)
	}
}

func TestHandleMessageToolsList(t *testing.T) {
	server, _ := newTestServer(t)

	// Initialize first per the protocol handshake.
	init := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`)
	if resp := server.HandleMessage(context.Background(), init); resp == nil {
		t.Fatal("expected an initialize response")
	}

	list := json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	resp := server.HandleMessage(context.Background(), list)
	if resp == nil {
		t.Fatal("expected a tools/list response")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	for _, name := range []string{"purchase_list", "purchase_sync"} {
		if !strings.Contains(string(data), name) {
			t.Errorf("expected %s in tools/list response: %s", name, data)
		}
	}
}
