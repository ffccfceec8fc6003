package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"taskflow/storage"
)

// Storage keys of a workspace.
const (
	TasksKey         = "tasks"
	NotificationsKey = "notifications"
	LanguageKey      = "language"
	ThemeKey         = "theme"
)

var errNoSnapshot = errors.New("no snapshot stored")

// ErrUnavailable reports that a workspace could not be read from storage.
// Nothing is written back and the caller should retry later.
var ErrUnavailable = errors.New("workspace storage unavailable")

// snapshot reads and writes one JSON collection under a single key.
type snapshot struct {
	kv           storage.KV
	key          string
	persistEmpty bool
	logger       *log.Logger
}

func (s snapshot) load(ctx context.Context, dst any) error {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return errNoSnapshot
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrUnavailable, s.key, err)
	}
	if err := sonic.ConfigStd.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", s.key, err)
	}
	return nil
}

// save overwrites the stored collection. While the collection is empty the
// write is skipped unless persistEmpty is set, so the last non-empty
// snapshot survives. Failures are logged; the caller keeps its in-memory state.
func (s snapshot) save(ctx context.Context, size int, v any) {
	if size == 0 && !s.persistEmpty {
		s.logger.WithField("key", s.key).Debug("skipping write of empty collection")
		return
	}
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		s.logger.WithError(err).WithField("key", s.key).Error("encode snapshot")
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.WithError(err).WithField("key", s.key).Error("write snapshot")
	}
}
