package storage

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
)

func TestFileKV(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := NewFile(dir)
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	if _, err := kv.Get(ctx, "tasks"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}
	if err := kv.Set(ctx, "tasks", []byte(`[{"id":"task-1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "theme", []byte("dark")); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened, err := NewFile(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(ctx, "tasks")
	if err != nil || string(got) != `[{"id":"task-1"}]` {
		t.Fatalf("get after reopen = %q, %v", got, err)
	}

	if err := reopened.Del(ctx, "theme"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := kv.Get(ctx, "theme"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected theme removed, got %v", err)
	}
}

func TestFileKVCorruptDocument(t *testing.T) {
	kv, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	if err := os.WriteFile(kv.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := kv.Get(context.Background(), "tasks"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFileKVConcurrentWriters(t *testing.T) {
	kv, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	ctx := context.Background()
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			if err := kv.Set(ctx, k, []byte(k)); err != nil {
				t.Errorf("set %s: %v", k, err)
			}
		}(k)
	}
	wg.Wait()

	for _, k := range keys {
		if v, err := kv.Get(ctx, k); err != nil || string(v) != k {
			t.Fatalf("key %s = %q, %v", k, v, err)
		}
	}
}
