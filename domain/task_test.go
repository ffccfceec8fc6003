package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func TestTaskMarshalUsesWireNames(t *testing.T) {
	task := Task{
		ID:       "task-1",
		Title:    "Ship",
		Priority: PriorityHigh,
		DueDate:  time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		Status:   StatusInProgress,
	}

	payload, err := sonic.Marshal(task)
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}
	for _, want := range []string{`"dueDate":"2025-06-20T00:00:00Z"`, `"status":"inProgress"`, `"attachments":0`} {
		if !strings.Contains(string(payload), want) {
			t.Fatalf("expected %s in %s", want, payload)
		}
	}
}

func TestTaskUnmarshalAcceptsDateForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "rfc3339", raw: "2025-06-19T21:00:00Z", want: time.Date(2025, 6, 19, 21, 0, 0, 0, time.UTC)},
		{name: "millis", raw: "2025-06-19T21:00:00.000Z", want: time.Date(2025, 6, 19, 21, 0, 0, 0, time.UTC)},
		{name: "date", raw: "2025-06-20", want: time.Date(2025, 6, 20, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task Task
			payload := `{"id":"1","title":"x","priority":"low","dueDate":"` + tt.raw + `","status":"todo"}`
			if err := sonic.ConfigStd.Unmarshal([]byte(payload), &task); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !task.DueDate.Equal(tt.want) {
				t.Fatalf("due date = %v, want %v", task.DueDate, tt.want)
			}
			if task.ID != "1" || task.Status != StatusTodo {
				t.Fatalf("other fields lost: %#v", task)
			}
		})
	}
}

func TestTaskDateRoundTrip(t *testing.T) {
	due := time.Date(2025, 6, 25, 12, 30, 0, 0, time.UTC)
	in := Task{ID: "t", Title: "t", Priority: PriorityMedium, DueDate: due, Status: StatusDone, Attachments: 2}

	data, err := sonic.ConfigStd.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Task
	if err := sonic.ConfigStd.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.DueDate.Equal(due) || out.Attachments != 2 || out.Status != StatusDone {
		t.Fatalf("round trip mismatch: %#v", out)
	}
}

func TestTaskUnmarshalRejectsGarbageDate(t *testing.T) {
	var task Task
	err := task.UnmarshalJSON([]byte(`{"id":"1","dueDate":"soon"}`))
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{Title: "Write docs", Priority: PriorityLow, Status: StatusTodo}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		mut  func(*Draft)
		want error
	}{
		{name: "blankTitle", mut: func(d *Draft) { d.Title = "   " }, want: ErrEmptyTitle},
		{name: "status", mut: func(d *Draft) { d.Status = "blocked" }, want: ErrInvalidStatus},
		{name: "priority", mut: func(d *Draft) { d.Priority = "urgent" }, want: ErrInvalidPriority},
		{name: "negative", mut: func(d *Draft) { d.Attachments = -1 }, want: ErrNegativeCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mut(&d)
			if err := d.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDraftWithIDTrimsTitle(t *testing.T) {
	task := Draft{Title: "  Plan  ", Priority: PriorityLow, Status: StatusTodo}.WithID("task-9")
	if task.ID != "task-9" || task.Title != "Plan" {
		t.Fatalf("unexpected task: %#v", task)
	}
}

func TestParsePreferences(t *testing.T) {
	if l, err := ParseLanguage("EN"); err != nil || l != LanguageEnglish {
		t.Fatalf("ParseLanguage = %q, %v", l, err)
	}
	if _, err := ParseLanguage("fr"); !errors.Is(err, ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
	if _, err := ParseTheme("blue"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
	if p := DefaultPreferences(); p.Language != LanguageArabic || p.Theme != ThemeLight {
		t.Fatalf("unexpected defaults: %#v", p)
	}
}

func TestTaskValidateRequiresDueDate(t *testing.T) {
	task := Draft{Title: "Plan", Priority: PriorityLow, Status: StatusTodo}.WithID("task-1")
	if err := task.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	task.DueDate = time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	if err := task.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	const draft = `{"title":"x","description":"","priority":"low","dueDate":"2025-06-20","attachments":0,"collaborators":0,"status":"todo"`

	d, err := DecodeDraft(strings.NewReader(draft + `}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Title != "x" || d.DueDate.IsZero() {
		t.Fatalf("unexpected draft: %#v", d)
	}
	if _, err := DecodeDraft(strings.NewReader(draft + `,"bogus":1}`)); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
	if _, err := DecodeDraft(strings.NewReader(`{"title":"x","dueDate":"soon"}`)); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	task, err := DecodeTask(strings.NewReader(`{"id":"t1",` + draft[1:] + `}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "t1" || task.Priority != PriorityLow {
		t.Fatalf("unexpected task: %#v", task)
	}
	if _, err := DecodeTask(strings.NewReader(draft + `,"archived":true}`)); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}

	var lenient Task
	if err := sonic.ConfigStd.Unmarshal([]byte(`{"id":"t1","dueDate":"2025-06-20","extra":1}`), &lenient); err != nil {
		t.Fatalf("stored data with extra fields should still load: %v", err)
	}
}
