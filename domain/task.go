package domain

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Status is the board column a task belongs to.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts raw input into a Priority.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.TrimSpace(raw))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

// Task represents a single card on the board.
type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Priority      Priority  `json:"priority"`
	DueDate       time.Time `json:"dueDate"`
	Attachments   int       `json:"attachments"`
	Collaborators int       `json:"collaborators"`
	Status        Status    `json:"status"`
}

// Draft carries the fields of a task that has not been assigned an id yet.
type Draft struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Priority      Priority  `json:"priority"`
	DueDate       time.Time `json:"dueDate"`
	Attachments   int       `json:"attachments"`
	Collaborators int       `json:"collaborators"`
	Status        Status    `json:"status"`
}

// WithID turns the draft into a task with the given id.
func (d Draft) WithID(id string) Task {
	return Task{
		ID:            id,
		Title:         strings.TrimSpace(d.Title),
		Description:   d.Description,
		Priority:      d.Priority,
		DueDate:       d.DueDate,
		Attachments:   d.Attachments,
		Collaborators: d.Collaborators,
		Status:        d.Status,
	}
}

// Validate checks the draft the same way the task form does before submit.
func (d Draft) Validate() error {
	return validateFields(d.Title, d.Priority, d.Status, d.Attachments, d.Collaborators)
}

// Validate checks every enumerated and counted field of the task. A stored
// task always carries a due date.
func (t Task) Validate() error {
	if err := validateFields(t.Title, t.Priority, t.Status, t.Attachments, t.Collaborators); err != nil {
		return err
	}
	if t.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidDate)
	}
	return nil
}

func validateFields(title string, p Priority, s Status, attachments, collaborators int) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, p)
	}
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	if attachments < 0 || collaborators < 0 {
		return ErrNegativeCount
	}
	return nil
}

type taskAlias Task

type taskWire struct {
	taskAlias
	DueDate string `json:"dueDate"`
}

func (w taskWire) task() (Task, error) {
	due, err := ParseDate(w.DueDate)
	if err != nil {
		return Task{}, err
	}
	t := Task(w.taskAlias)
	t.DueDate = due
	return t, nil
}

// UnmarshalJSON accepts the due date either as an RFC 3339 timestamp or as a
// bare calendar date.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskWire
	if err := sonic.ConfigStd.Unmarshal(data, &w); err != nil {
		return err
	}
	task, err := w.task()
	if err != nil {
		return err
	}
	*t = task
	return nil
}

// DecodeTask reads one task from r, rejecting fields the task does not have.
func DecodeTask(r io.Reader) (Task, error) {
	var w taskWire
	if err := decodeStrict(r, &w); err != nil {
		return Task{}, err
	}
	return w.task()
}

type draftAlias Draft

type draftWire struct {
	draftAlias
	DueDate string `json:"dueDate"`
}

func (w draftWire) draft() (Draft, error) {
	due, err := ParseDate(w.DueDate)
	if err != nil {
		return Draft{}, err
	}
	d := Draft(w.draftAlias)
	d.DueDate = due
	return d, nil
}

// UnmarshalJSON accepts the same due date forms as Task.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var w draftWire
	if err := sonic.ConfigStd.Unmarshal(data, &w); err != nil {
		return err
	}
	draft, err := w.draft()
	if err != nil {
		return err
	}
	*d = draft
	return nil
}

// DecodeDraft reads one draft from r, rejecting fields a draft does not have.
func DecodeDraft(r io.Reader) (Draft, error) {
	var w draftWire
	if err := decodeStrict(r, &w); err != nil {
		return Draft{}, err
	}
	return w.draft()
}

func decodeStrict(r io.Reader, dst any) error {
	dec := sonic.ConfigStd.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

const dateOnly = "2006-01-02"

// ParseDate parses an RFC 3339 timestamp (fractional seconds allowed) or a
// YYYY-MM-DD date. Bare dates resolve to local midnight. An empty string
// yields the zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(dateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return ts, nil
}
