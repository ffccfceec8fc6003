package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/bytedance/sonic"
)

// File keeps every key of a workspace in one JSON document on disk.
// No caching: each call reads or rewrites the file under an exclusive flock,
// so several CLI invocations can share a workspace safely.
type File struct {
	path string
}

// NewFile creates a file-backed KV under dir/.taskflow/store.json.
func NewFile(dir string) (*File, error) {
	path := filepath.Join(dir, ".taskflow", "store.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create .taskflow directory: %w", err)
	}
	return &File{path: path}, nil
}

// Path is the location of the backing document.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	var (
		value []byte
		found bool
	)
	err := f.withFileLock(func(file *os.File) error {
		entries, err := readEntries(file)
		if err != nil {
			return err
		}
		var v string
		v, found = entries[key]
		value = []byte(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	return f.withFileLock(func(file *os.File) error {
		entries, err := readEntries(file)
		if err != nil {
			return err
		}
		entries[key] = string(value)
		return writeEntries(file, entries)
	})
}

func (f *File) Del(_ context.Context, key string) error {
	return f.withFileLock(func(file *os.File) error {
		entries, err := readEntries(file)
		if err != nil {
			return err
		}
		if _, ok := entries[key]; !ok {
			return nil
		}
		delete(entries, key)
		return writeEntries(file, entries)
	})
}

func (f *File) withFileLock(fn func(*os.File) error) error {
	file, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("failed to lock file: %w", err)
	}
	defer syscall.Flock(int(file.Fd()), syscall.LOCK_UN)

	return fn(file)
}

func readEntries(file *os.File) (map[string]string, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	entries := map[string]string{}
	if info.Size() == 0 {
		return entries, nil
	}

	data := make([]byte, info.Size())
	if _, err := file.ReadAt(data, 0); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := sonic.ConfigStd.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal store: %w", err)
	}
	return entries, nil
}

func writeEntries(file *os.File, entries map[string]string) error {
	data, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
