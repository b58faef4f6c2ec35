package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghiac/ephdash/model"
)

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "envs.db"))
	if err != nil {
		t.Fatalf("Failed to create SQLiteStore: %v", err)
	}
	defer store.Close()

	testEnvStore(t, store)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore("")
	if err != nil {
		t.Fatalf("Failed to create SQLiteStore: %v", err)
	}
	defer store.Close()

	testEnvStore(t, store)
}

func TestSQLiteStore_AutoCreateDirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "nested", "deeper", "envs.db")

	store, err := NewSQLiteStore(tmpFile)
	if err != nil {
		t.Fatalf("Failed to create SQLiteStore: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Dir(tmpFile)); os.IsNotExist(err) {
		t.Errorf("Directory was not created: %s", filepath.Dir(tmpFile))
	}

	env := model.NewEnv("alice", model.EnvSpec{Repo: "r/a", Branch: "main", Path: "Tiltfile"}, time.Now(), time.Minute)
	if err := store.Put(context.Background(), env); err != nil {
		t.Fatalf("Failed to put env: %v", err)
	}
	if _, err := os.Stat(tmpFile); os.IsNotExist(err) {
		t.Errorf("Database file was not created: %s", tmpFile)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envs.db")
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Failed to create SQLiteStore: %v", err)
	}
	env := model.NewEnv("alice", model.EnvSpec{Repo: "r/a", Branch: "main", Path: "Tiltfile"}, now, time.Minute)
	if err := store.Put(ctx, env); err != nil {
		t.Fatalf("Failed to put env: %v", err)
	}
	if err := store.AppendLogs(ctx, "alice", []string{"hello"}); err != nil {
		t.Fatalf("Failed to append logs: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen SQLiteStore: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to get env after reopen: %v", err)
	}
	if !got.Expiration.Equal(now.Add(time.Minute)) {
		t.Errorf("Expiration = %v, want %v", got.Expiration, now.Add(time.Minute))
	}
	logs, err := reopened.Logs(ctx, "alice", 0)
	if err != nil || len(logs) != 1 || logs[0] != "hello" {
		t.Errorf("Logs after reopen = %v, %v", logs, err)
	}
}
