package board

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"taskflow/domain"
	"taskflow/storage"
)

var lastTimestamp int64

// nextTimestamp returns the current time in nanoseconds, bumped so that
// successive calls in this process are strictly increasing.
func nextTimestamp() int64 {
	for {
		now := time.Now().UnixNano()
		last := atomic.LoadInt64(&lastTimestamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTimestamp, last, now) {
			return now
		}
	}
}

// Notifications is the most-recent-first notification log of a workspace.
type Notifications struct {
	mu     sync.Mutex
	items  []domain.Notification
	snap   snapshot
	logger *log.Logger
	now    func() time.Time
}

// NotificationOptions tune a notification log.
type NotificationOptions struct {
	PersistEmpty bool
	Logger       *log.Logger
	Now          func() time.Time
}

func NewNotifications(kv storage.KV, userID string, opts NotificationOptions) *Notifications {
	if kv == nil {
		panic("board.NewNotifications: kv is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	n := &Notifications{
		items: []domain.Notification{},
		snap: snapshot{
			kv:           kv,
			key:          storage.Key(userID, NotificationsKey),
			persistEmpty: opts.PersistEmpty,
			logger:       logger,
		},
		logger: logger,
		now:    opts.Now,
	}
	if n.now == nil {
		n.now = time.Now
	}
	return n
}

// Load restores the persisted log. Malformed data leaves the log empty. A
// storage read failure is returned and the log is left as it was.
func (n *Notifications) Load(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var items []domain.Notification
	if err := n.snap.load(ctx, &items); err != nil {
		switch {
		case errors.Is(err, ErrUnavailable):
			n.logger.WithError(err).Error("read notifications")
			return err
		case !errors.Is(err, errNoSnapshot):
			n.logger.WithError(err).Error("load notifications")
		}
		n.items = []domain.Notification{}
		return nil
	}
	if items == nil {
		items = []domain.Notification{}
	}
	n.items = items
	return nil
}

// Record prepends an unread notification and returns its id.
func (n *Notifications) Record(ctx context.Context, title, message string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	item := domain.Notification{
		ID:        "notification-" + strconv.FormatInt(nextTimestamp(), 10),
		Title:     title,
		Message:   message,
		Timestamp: n.now(),
	}
	n.items = append([]domain.Notification{item}, n.items...)
	n.persist(ctx)
	return item.ID
}

// MarkRead flags one notification as read.
func (n *Notifications) MarkRead(ctx context.Context, id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := range n.items {
		if n.items[i].ID == id {
			n.items[i].Read = true
			n.persist(ctx)
			return true
		}
	}
	return false
}

// MarkAllRead flags every notification as read and returns how many changed.
func (n *Notifications) MarkAllRead(ctx context.Context) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	changed := 0
	for i := range n.items {
		if !n.items[i].Read {
			n.items[i].Read = true
			changed++
		}
	}
	if changed > 0 {
		n.persist(ctx)
	}
	return changed
}

// Remove deletes one notification.
func (n *Notifications) Remove(ctx context.Context, id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := range n.items {
		if n.items[i].ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			n.persist(ctx)
			return true
		}
	}
	return false
}

// List returns a copy of the log, newest first.
func (n *Notifications) List() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification{}, n.items...)
}

// Unread counts notifications not yet read.
func (n *Notifications) Unread() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, item := range n.items {
		if !item.Read {
			count++
		}
	}
	return count
}

func (n *Notifications) persist(ctx context.Context) {
	n.snap.save(ctx, len(n.items), n.items)
}
