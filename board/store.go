package board

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskflow/domain"
	"taskflow/storage"
)

// StoreOptions tune a task store.
type StoreOptions struct {
	// Seed is used when nothing usable is persisted. Nil means start empty.
	Seed []domain.Task
	// PersistEmpty writes "[]" when the collection becomes empty instead of
	// keeping the previous snapshot.
	PersistEmpty bool
	Publisher    Publisher
	Logger       *log.Logger
	Now          func() time.Time
	NewID        func() string
}

// Store owns the ordered task collection of one workspace and mirrors it to
// a KV after every mutation.
type Store struct {
	mu     sync.Mutex
	userID string
	tasks  []domain.Task
	snap   snapshot
	pub    Publisher
	logger *log.Logger
	now    func() time.Time
	newID  func() string
	seed   []domain.Task
}

// NewStore creates an empty store bound to the user's "tasks" key. Call Load
// to restore the persisted collection.
func NewStore(kv storage.KV, userID string, opts StoreOptions) *Store {
	if kv == nil {
		panic("board.NewStore: kv is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Store{
		userID: userID,
		tasks:  []domain.Task{},
		snap: snapshot{
			kv:           kv,
			key:          storage.Key(userID, TasksKey),
			persistEmpty: opts.PersistEmpty,
			logger:       logger,
		},
		pub:    opts.Publisher,
		logger: logger,
		now:    opts.Now,
		newID:  opts.NewID,
		seed:   opts.Seed,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = newTaskID
	}
	return s
}

func newTaskID() string {
	return "task-" + uuid.NewString()
}

// Load replaces the in-memory collection with the persisted one. A missing or
// malformed snapshot falls back to the seed set. When storage cannot be read
// Load returns an error wrapping ErrUnavailable and leaves both the store and
// the stored snapshot untouched.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []domain.Task
	err := s.snap.load(ctx, &tasks)
	switch {
	case err == nil:
		s.tasks = validTasks(tasks, s.logger)
		return nil
	case errors.Is(err, ErrUnavailable):
		s.logger.WithError(err).WithField("user", s.userID).Error("read tasks")
		return err
	case errors.Is(err, errNoSnapshot):
		s.logger.WithField("user", s.userID).Debug("no stored tasks, using seed set")
	default:
		s.logger.WithError(err).WithField("user", s.userID).Error("load tasks")
	}
	s.tasks = append([]domain.Task{}, s.seed...)
	s.persist(ctx)
	return nil
}

// validTasks drops stored records that could not have been created through
// the store: no id, unknown status or priority, negative counts.
func validTasks(tasks []domain.Task, logger *log.Logger) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			logger.WithField("title", t.Title).Warn("dropping stored task without id")
			continue
		}
		if err := t.Validate(); err != nil {
			logger.WithError(err).WithField("task", t.ID).Warn("dropping invalid stored task")
			continue
		}
		out = append(out, t)
	}
	return out
}

// Tasks returns a copy of the collection in order.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Task{}, s.tasks...)
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return domain.Task{}, false
}

// Create assigns a fresh id to the draft and appends it. A draft without a
// due date is due now.
func (s *Store) Create(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	if err := draft.Validate(); err != nil {
		return domain.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.DueDate.IsZero() {
		draft.DueDate = s.now()
	}
	task := draft.WithID(s.newID())
	s.tasks = append(s.tasks, task)
	s.persist(ctx)
	s.emit(ctx, domain.TaskCreated, task)
	return task, nil
}

// Update replaces the stored task that has task.ID. It reports false and
// changes nothing when no such task exists.
func (s *Store) Update(ctx context.Context, task domain.Task) (bool, error) {
	if err := task.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(task.ID)
	if i < 0 {
		return false, nil
	}
	s.tasks[i] = task
	s.persist(ctx)
	s.emit(ctx, domain.TaskUpdated, task)
	return true, nil
}

// Delete removes the task with the given id, if present.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.persist(ctx)
	s.emit(ctx, domain.TaskDeleted, removed)
	return true
}

// ChangeStatus moves a task to another column. Any transition is allowed.
func (s *Store) ChangeStatus(ctx context.Context, id string, status domain.Status) (bool, error) {
	if !status.Valid() {
		return false, domain.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.tasks[i].Status = status
	s.persist(ctx)
	s.emit(ctx, domain.TaskStatusChanged, s.tasks[i])
	return true, nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) {
	s.snap.save(ctx, len(s.tasks), s.tasks)
}

func (s *Store) emit(ctx context.Context, kind string, task domain.Task) {
	if s.pub == nil {
		return
	}
	ev := domain.Event{
		Type:      kind,
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Time:      s.now(),
		UserID:    s.userID,
	}
	if kind == domain.TaskStatusChanged {
		ev.Status = task.Status
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.logger.WithError(err).WithField("event", kind).Warn("publish task event")
	}
}
