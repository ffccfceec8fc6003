package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/domain"
	"taskflow/storage"
)

func testConfig(sinks ...Publisher) Config {
	logger, _ := test.NewNullLogger()
	return Config{Sinks: sinks, Logger: logger, Now: func() time.Time { return fixedNow }}
}

func mustOpen(t *testing.T, kv storage.KV, userID string, cfg Config) *Workspace {
	t.Helper()
	ws, err := Open(context.Background(), kv, userID, cfg)
	require.NoError(t, err)
	return ws
}

func mustWorkspace(t *testing.T, reg *Registry, userID string) *Workspace {
	t.Helper()
	ws, err := reg.Workspace(context.Background(), userID)
	require.NoError(t, err)
	return ws
}

func TestOpenWiresNotificationsToTaskEvents(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	extra := &eventLog{}
	ws := mustOpen(t, kv, "u1", testConfig(extra))

	require.NoError(t, ws.Preferences.Set(ctx, domain.Preferences{Language: domain.LanguageEnglish, Theme: domain.ThemeDark}))
	task, err := ws.Tasks.Create(ctx, draft("Draft proposal", fixedNow, domain.StatusTodo))
	require.NoError(t, err)
	ws.Tasks.Delete(ctx, task.ID)

	items := ws.Notifications.List()
	require.Len(t, items, 2)
	assert.Equal(t, "Task deleted", items[0].Title)
	assert.Equal(t, "Task created", items[1].Title)
	assert.Equal(t, 2, ws.Notifications.Unread())
	assert.Equal(t, []string{domain.TaskCreated, domain.TaskDeleted}, extra.types())

	reopened := mustOpen(t, kv, "u1", testConfig())
	assert.Equal(t, domain.LanguageEnglish, reopened.Preferences.Get().Language)
	assert.Equal(t, domain.ThemeDark, reopened.Preferences.Get().Theme)
	assert.Len(t, reopened.Notifications.List(), 2)
}

func TestWorkspacesAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	a := mustOpen(t, kv, "alice", testConfig())
	_, err := a.Tasks.Create(ctx, draft("mine", fixedNow, domain.StatusTodo))
	require.NoError(t, err)

	b := mustOpen(t, kv, "bob", testConfig())
	assert.Empty(t, b.Tasks.Tasks())
	assert.Empty(t, b.Notifications.List())
}

func TestPreferencesDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.Key("u1", LanguageKey), []byte("klingon")))
	require.NoError(t, kv.Set(ctx, storage.Key("u1", ThemeKey), []byte("dark")))

	logger, _ := test.NewNullLogger()
	prefs := NewPreferences(kv, "u1", logger)
	require.NoError(t, prefs.Load(ctx))
	assert.Equal(t, domain.Preferences{Language: domain.LanguageArabic, Theme: domain.ThemeDark}, prefs.Get())

	err := prefs.Set(ctx, domain.Preferences{Language: "de", Theme: domain.ThemeLight})
	assert.ErrorIs(t, err, domain.ErrInvalidLanguage)
	assert.Equal(t, domain.ThemeDark, prefs.Get().Theme)

	require.NoError(t, prefs.Set(ctx, domain.Preferences{Language: domain.LanguageEnglish, Theme: domain.ThemeLight}))
	raw, err := kv.Get(ctx, storage.Key("u1", LanguageKey))
	require.NoError(t, err)
	assert.Equal(t, "en", string(raw))
}

func TestRegistryCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	reg := NewRegistry(kv, testConfig())

	first := mustWorkspace(t, reg, "u1")
	assert.Same(t, first, mustWorkspace(t, reg, "u1"))
	assert.Equal(t, 1, reg.Len())

	other := mustOpen(t, kv, "u1", testConfig())
	_, err := other.Tasks.Create(ctx, draft("from elsewhere", fixedNow, domain.StatusTodo))
	require.NoError(t, err)
	assert.Empty(t, first.Tasks.Tasks())

	reg.Invalidate("u1")
	fresh := mustWorkspace(t, reg, "u1")
	assert.NotSame(t, first, fresh)
	assert.Len(t, fresh.Tasks.Tasks(), 1)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(storage.NewMemory(), testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws, err := reg.Workspace(ctx, "shared")
			if !assert.NoError(t, err) {
				return
			}
			_, err = ws.Tasks.Create(ctx, draft("parallel", fixedNow, domain.StatusTodo))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ws := mustWorkspace(t, reg, "shared")
	assert.Len(t, ws.Tasks.Tasks(), 20)
	assert.Len(t, ws.Notifications.List(), 20)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryDoesNotCacheFailedLoad(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyKV()
	stored := seedStoredTasks(t, kv, "u1", 3)
	cfg := testConfig()
	cfg.Seed = true
	reg := NewRegistry(kv, cfg)

	kv.getErr = errors.New("i/o timeout")
	_, err := reg.Workspace(ctx, "u1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, reg.Len())
	assert.Zero(t, kv.writes, "a failed load must not write")

	kv.getErr = nil
	ws := mustWorkspace(t, reg, "u1")
	assert.Equal(t, taskIDs(stored), taskIDs(ws.Tasks.Tasks()))
}

// gatedKV blocks reads of one user until released.
type gatedKV struct {
	*storage.Memory
	user    string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedKV) Get(ctx context.Context, key string) ([]byte, error) {
	if user, _ := storage.SplitKey(key); user == g.user {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.Memory.Get(ctx, key)
}

func TestRegistrySlowLoadDoesNotBlockOtherUsers(t *testing.T) {
	ctx := context.Background()
	kv := &gatedKV{
		Memory:  storage.NewMemory(),
		user:    "slow",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	reg := NewRegistry(kv, testConfig())

	slowDone := make(chan error, 1)
	go func() {
		_, err := reg.Workspace(ctx, "slow")
		slowDone <- err
	}()
	<-kv.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := reg.Workspace(ctx, "fast")
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loading one user blocked another")
	}

	close(kv.release)
	require.NoError(t, <-slowDone)
	assert.Equal(t, 2, reg.Len())
}

func TestFanoutContinuesAfterFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	after := &eventLog{}
	failing := PublisherFunc(func(context.Context, domain.Event) error { return errors.New("sink down") })

	f := NewFanout(logger, failing, nil, after)
	require.NoError(t, f.Publish(context.Background(), domain.Event{Type: domain.TaskCreated}))

	assert.Equal(t, []string{domain.TaskCreated}, after.types())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "event sink failed", hook.LastEntry().Message)
}

func TestRedisPublisherAndSubscriber(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger, _ := test.NewNullLogger()

	received := make(chan domain.Event, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		SubscribeEvents(ctx, logger, client, "taskflow-events", "instance-a", func(ev domain.Event) {
			received <- ev
		})
	}()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("taskflow-events")) == 1
	}, time.Second, 10*time.Millisecond)

	own := NewRedisPublisher(client, "taskflow-events", "instance-a")
	remote := NewRedisPublisher(client, "taskflow-events", "instance-b")
	require.NoError(t, own.Publish(ctx, domain.Event{Type: domain.TaskCreated, UserID: "self"}))
	require.NoError(t, remote.Publish(ctx, domain.Event{Type: domain.TaskDeleted, UserID: "u9", TaskID: "task-1"}))

	select {
	case ev := <-received:
		assert.Equal(t, "u9", ev.UserID)
		assert.Equal(t, domain.TaskDeleted, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for remote event")
	}
	select {
	case ev := <-received:
		t.Fatalf("own event should be filtered, got %#v", ev)
	default:
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop")
	}
}

type fakeQueue struct {
	messages []string
}

func (f *fakeQueue) EnqueueMessage(_ context.Context, content string, _ *azqueue.EnqueueMessageOptions) (azqueue.EnqueueMessagesResponse, error) {
	f.messages = append(f.messages, content)
	return azqueue.EnqueueMessagesResponse{}, nil
}

func TestQueueSinkEnqueuesEvent(t *testing.T) {
	q := &fakeQueue{}
	sink := &QueueSink{queue: q}
	ev := domain.Event{Type: domain.TaskStatusChanged, TaskID: "task-1", Status: domain.StatusDone, UserID: "u1", Time: fixedNow}

	require.NoError(t, sink.Publish(context.Background(), ev))
	require.Len(t, q.messages, 1)

	var got domain.Event
	require.NoError(t, sonic.ConfigStd.Unmarshal([]byte(q.messages[0]), &got))
	assert.Equal(t, ev.TaskID, got.TaskID)
	assert.Equal(t, ev.Status, got.Status)
	assert.True(t, ev.Time.Equal(got.Time))
}
