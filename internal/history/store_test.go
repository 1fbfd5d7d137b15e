package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "history.db"), filepath.Join(dir, "history.lock"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSaveGetList(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	record := NewRecord("construct-transaction", "network")
	record.Network = "testnet"
	record.SignerID = "alice.testnet"
	record.ReceiverID = "alice.testnet"
	record.Actions = []string{"AddKey(ed25519:abc, full-access)"}
	record.Status = StatusSubmitted
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SignerID != "alice.testnet" || got.Command != "construct-transaction" {
		t.Fatalf("unexpected record: %#v", got)
	}

	got.Status = StatusSucceeded
	got.TransactionHash = "H1"
	got.Touch()
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save update failed: %v", err)
	}
	succeeded, err := store.List(ctx, string(StatusSucceeded), 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(succeeded) != 1 || succeeded[0].TransactionHash != "H1" {
		t.Fatalf("expected one succeeded record, got %#v", succeeded)
	}
	submitted, err := store.List(ctx, string(StatusSubmitted), 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(submitted) != 0 {
		t.Fatalf("expected update to replace status, got %d submitted", len(submitted))
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	var ids []string
	for i := 0; i < 3; i++ {
		record := NewRecord("add access-key", "offline")
		record.Status = StatusUnsigned
		if err := store.Save(ctx, record); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		ids = append(ids, record.ID)
	}
	all, err := store.List(ctx, "", 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != ids[2] {
		t.Fatalf("expected newest first limited to 2, got %#v", all)
	}
}

func TestStoreGetMissingRecord(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected missing record error")
	}
	if !clierr.Is(err, clierr.CodeUsage) {
		t.Fatalf("expected usage code, got %v", err)
	}
}

func TestNewRecordIDFormat(t *testing.T) {
	id := NewRecordID()
	if !strings.HasPrefix(id, "tx_") || len(id) != 35 {
		t.Fatalf("unexpected id %q", id)
	}
}
