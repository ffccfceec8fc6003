package board

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"taskflow/domain"
	"taskflow/storage"
)

// Config describes how workspaces are assembled.
type Config struct {
	// Seed fills a workspace that has never stored tasks.
	Seed bool
	// PersistEmpty disables the empty-collection write guard.
	PersistEmpty bool
	// Sinks receive every task event after the notification log.
	Sinks  []Publisher
	Logger *log.Logger
	Now    func() time.Time
}

// Workspace bundles the task store, notification log and preferences of a
// single user, all persisted through the same KV.
type Workspace struct {
	UserID        string
	Tasks         *Store
	Notifications *Notifications
	Preferences   *Preferences
}

// Open assembles and loads a workspace. It fails only when storage cannot be
// read, in which case nothing has been written.
func Open(ctx context.Context, kv storage.KV, userID string, cfg Config) (*Workspace, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	prefs := NewPreferences(kv, userID, logger)
	if err := prefs.Load(ctx); err != nil {
		return nil, err
	}

	notes := NewNotifications(kv, userID, NotificationOptions{
		PersistEmpty: cfg.PersistEmpty,
		Logger:       logger,
		Now:          cfg.Now,
	})
	if err := notes.Load(ctx); err != nil {
		return nil, err
	}

	sinks := append([]Publisher{NewNotifier(notes, prefs.Language)}, cfg.Sinks...)
	var seed []domain.Task
	if cfg.Seed {
		seed = SeedTasks()
	}
	tasks := NewStore(kv, userID, StoreOptions{
		Seed:         seed,
		PersistEmpty: cfg.PersistEmpty,
		Publisher:    NewFanout(logger, sinks...),
		Logger:       logger,
		Now:          cfg.Now,
	})
	if err := tasks.Load(ctx); err != nil {
		return nil, err
	}

	return &Workspace{
		UserID:        userID,
		Tasks:         tasks,
		Notifications: notes,
		Preferences:   prefs,
	}, nil
}

// Registry lazily opens one workspace per user and keeps it in memory.
// Concurrent first requests for the same user share one load; other users
// are not held up by it.
type Registry struct {
	kv    storage.KV
	cfg   Config
	loads singleflight.Group

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry(kv storage.KV, cfg Config) *Registry {
	if kv == nil {
		panic("board.NewRegistry: kv is nil")
	}
	return &Registry{kv: kv, cfg: cfg, workspaces: make(map[string]*Workspace)}
}

// Workspace returns the user's workspace, loading it on first use. A failed
// load is not cached, so the next call tries storage again.
func (r *Registry) Workspace(ctx context.Context, userID string) (*Workspace, error) {
	if ws, ok := r.cached(userID); ok {
		return ws, nil
	}
	v, err, _ := r.loads.Do(userID, func() (any, error) {
		if ws, ok := r.cached(userID); ok {
			return ws, nil
		}
		ws, err := Open(ctx, r.kv, userID, r.cfg)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.workspaces[userID] = ws
		r.mu.Unlock()
		return ws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workspace), nil
}

func (r *Registry) cached(userID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[userID]
	return ws, ok
}

// Invalidate drops the cached workspace so the next access reloads it from
// storage. Used when another process changed the user's data.
func (r *Registry) Invalidate(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, userID)
}

// Len reports how many workspaces are open.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
