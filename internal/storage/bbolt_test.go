package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) (*Storage, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.chatvault")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	return db, dbPath
}

func TestOpenCreatesBuckets(t *testing.T) {
	db, dbPath := openTemp(t)
	defer db.Close()

	if db.Path() != dbPath {
		t.Errorf("Path mismatch: got %s, want %s", db.Path(), dbPath)
	}

	created, err := db.GetCreated()
	if err != nil {
		t.Fatalf("Failed to get created time: %v", err)
	}
	if time.Since(created) > time.Minute {
		t.Errorf("Unexpected created time: %v", created)
	}

	keys, err := db.Keys()
	if err != nil {
		t.Fatalf("Failed to list keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Expected empty store, got %v", keys)
	}
}

func TestGetSetRemove(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	// Absent key
	_, found, err := db.Get("missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("Absent key should not be found")
	}

	// Set and read back
	if err := db.Set("gui-ai-theme", "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, found, err := db.Get("gui-ai-theme")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || value != "dark" {
		t.Errorf("Value mismatch: got %q (found=%v), want dark", value, found)
	}

	// Overwrite
	if err := db.Set("gui-ai-theme", "blue"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, _, _ = db.Get("gui-ai-theme")
	if value != "blue" {
		t.Errorf("Overwrite failed: got %q", value)
	}

	// Remove, twice
	if err := db.Remove("gui-ai-theme"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := db.Remove("gui-ai-theme"); err != nil {
		t.Fatalf("Removing an absent key should not fail: %v", err)
	}
	if _, found, _ := db.Get("gui-ai-theme"); found {
		t.Error("Key should be gone after Remove")
	}
}

func TestSetUpdatesModified(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	before, err := db.GetModified()
	if err != nil {
		t.Fatalf("Failed to get modified: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if err := db.Set("k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	after, err := db.GetModified()
	if err != nil {
		t.Fatalf("Failed to get modified: %v", err)
	}
	if !after.After(before) {
		t.Errorf("Modified not advanced: before %v, after %v", before, after)
	}
}

func TestKeysSorted(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	for _, k := range []string{"b", "c", "a"} {
		if err := db.Set(k, k); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := db.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("Unexpected keys: %v", keys)
	}
}

func TestPersistence(t *testing.T) {
	db, dbPath := openTemp(t)

	if err := db.Set("gui_ai_security_key", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	db.Close()

	// Reopen and verify
	db2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db2.Close()

	value, found, err := db2.Get("gui_ai_security_key")
	if err != nil || !found || value != "abc" {
		t.Errorf("Data not persisted: %q found=%v err=%v", value, found, err)
	}
}

func TestCompact(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	big := make([]byte, 64*1024)
	for i := 0; i < 20; i++ {
		if err := db.Set("blob", string(big)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := db.Set("keep", "me"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := db.Remove("blob"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if err := db.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	value, found, err := db.Get("keep")
	if err != nil || !found || value != "me" {
		t.Errorf("Data lost by compaction: %q found=%v err=%v", value, found, err)
	}
}
