package board

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/domain"
	"taskflow/storage"
)

func newTestNotifications(t *testing.T, kv storage.KV) *Notifications {
	t.Helper()
	logger, _ := test.NewNullLogger()
	n := NewNotifications(kv, "u1", NotificationOptions{
		Logger: logger,
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, n.Load(context.Background()))
	return n
}

func TestRecordPrependsUnread(t *testing.T) {
	ctx := context.Background()
	n := newTestNotifications(t, storage.NewMemory())

	first := n.Record(ctx, "one", "first")
	second := n.Record(ctx, "two", "second")

	items := n.List()
	require.Len(t, items, 2)
	assert.Equal(t, second, items[0].ID)
	assert.Equal(t, first, items[1].ID)
	assert.False(t, items[0].Read)
	assert.Equal(t, fixedNow, items[0].Timestamp)
	assert.Equal(t, 2, n.Unread())
}

func TestNotificationIDsIncrease(t *testing.T) {
	ctx := context.Background()
	n := newTestNotifications(t, storage.NewMemory())

	var last int64
	for i := 0; i < 50; i++ {
		id := n.Record(ctx, "t", "m")
		require.True(t, strings.HasPrefix(id, "notification-"))
		ts, err := strconv.ParseInt(strings.TrimPrefix(id, "notification-"), 10, 64)
		require.NoError(t, err)
		assert.Greater(t, ts, last)
		last = ts
	}
}

func TestMarkReadAndRemove(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	n := newTestNotifications(t, kv)
	a := n.Record(ctx, "a", "a")
	b := n.Record(ctx, "b", "b")

	assert.True(t, n.MarkRead(ctx, a))
	assert.False(t, n.MarkRead(ctx, "notification-0"))
	assert.Equal(t, 1, n.Unread())

	assert.Equal(t, 1, n.MarkAllRead(ctx))
	assert.Equal(t, 0, n.MarkAllRead(ctx))
	assert.Equal(t, 0, n.Unread())

	assert.True(t, n.Remove(ctx, b))
	assert.False(t, n.Remove(ctx, b))
	require.Len(t, n.List(), 1)

	reloaded := newTestNotifications(t, kv)
	items := reloaded.List()
	require.Len(t, items, 1)
	assert.Equal(t, a, items[0].ID)
	assert.True(t, items[0].Read)
}

func TestRemovingLastNotificationKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	n := newTestNotifications(t, kv)
	id := n.Record(ctx, "a", "a")
	require.True(t, n.Remove(ctx, id))

	reloaded := newTestNotifications(t, kv)
	assert.Len(t, reloaded.List(), 1)
}

func TestLoadCorruptNotifications(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.Key("u1", NotificationsKey), []byte("[{")))

	logger, hook := test.NewNullLogger()
	n := NewNotifications(kv, "u1", NotificationOptions{Logger: logger})
	require.NoError(t, n.Load(ctx))

	assert.Empty(t, n.List())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "load notifications", hook.LastEntry().Message)
}

func TestLoadNotificationsReadFailureKeepsHistory(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyKV()
	stored := newTestNotifications(t, kv)
	stored.Record(ctx, "Task created", "first")
	stored.Record(ctx, "Task deleted", "second")
	key := storage.Key("u1", NotificationsKey)
	before, err := kv.Memory.Get(ctx, key)
	require.NoError(t, err)

	kv.getErr = errors.New("connection reset")
	n := NewNotifications(kv, "u1", NotificationOptions{Logger: nullLogger()})
	assert.ErrorIs(t, n.Load(ctx), ErrUnavailable)

	after, err := kv.Memory.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	kv.getErr = nil
	require.NoError(t, n.Load(ctx))
	assert.Len(t, n.List(), 2)
}

func TestOpenFailsWhenStorageUnreadable(t *testing.T) {
	kv := newFlakyKV()
	seedStoredTasks(t, kv, "u1", 2)
	writes := kv.writes
	kv.getErr = errors.New("i/o timeout")

	cfg := testConfig()
	cfg.Seed = true
	ws, err := Open(context.Background(), kv, "u1", cfg)
	assert.Nil(t, ws)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, writes, kv.writes)
}

func TestNotifierPhrasesByLanguage(t *testing.T) {
	ctx := context.Background()
	n := newTestNotifications(t, storage.NewMemory())
	lang := domain.LanguageEnglish
	notifier := NewNotifier(n, func() domain.Language { return lang })

	require.NoError(t, notifier.Publish(ctx, domain.Event{Type: domain.TaskCreated, TaskTitle: "Draft proposal"}))
	require.NoError(t, notifier.Publish(ctx, domain.Event{Type: domain.TaskStatusChanged, TaskTitle: "Draft proposal", Status: domain.StatusDone}))
	lang = domain.LanguageArabic
	require.NoError(t, notifier.Publish(ctx, domain.Event{Type: domain.TaskDeleted, TaskTitle: "Draft proposal"}))

	items := n.List()
	require.Len(t, items, 3)
	assert.Equal(t, "تم حذف المهمة", items[0].Title)
	assert.Equal(t, "تم حذف \"Draft proposal\" بنجاح", items[0].Message)
	assert.Equal(t, "Task status updated", items[1].Title)
	assert.Equal(t, "\"Draft proposal\" moved to Done", items[1].Message)
	assert.Equal(t, "Task created", items[2].Title)

	assert.Error(t, notifier.Publish(ctx, domain.Event{Type: "task-archived"}))
	assert.Len(t, n.List(), 3)
}
