package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// KV is a byte-oriented key-value store holding workspace blobs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

const defaultPartition = "global"

// Key namespaces name under the given user.
func Key(userID, name string) string {
	if userID == "" {
		return name
	}
	return userID + ":" + name
}

// SplitKey reverses Key. Keys without a namespace land in the global partition.
func SplitKey(key string) (userID, name string) {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return defaultPartition, key
	}
	return key[:i], key[i+1:]
}
