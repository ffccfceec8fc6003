package domain

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPartitionKeepsOrderAndCoversAll(t *testing.T) {
	tasks := []Task{
		{ID: "a", Status: StatusDone},
		{ID: "b", Status: StatusTodo},
		{ID: "c", Status: StatusInProgress},
		{ID: "d", Status: StatusTodo},
		{ID: "e", Status: StatusDone},
	}

	cols := Partition(tasks)
	if got := ids(cols.Todo); got != "bd" {
		t.Fatalf("todo = %s", got)
	}
	if got := ids(cols.InProgress); got != "c" {
		t.Fatalf("inProgress = %s", got)
	}
	if got := ids(cols.Done); got != "ae" {
		t.Fatalf("done = %s", got)
	}

	stats := Summarize(tasks, day(2025, 6, 1))
	if total := len(cols.Todo) + len(cols.InProgress) + len(cols.Done); total != stats.Total {
		t.Fatalf("columns hold %d tasks, stats total %d", total, stats.Total)
	}
}

func TestPartitionEmptyColumnsAreNotNil(t *testing.T) {
	cols := Partition(nil)
	if cols.Todo == nil || cols.InProgress == nil || cols.Done == nil {
		t.Fatalf("expected empty, non-nil columns: %#v", cols)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 6, 17, 15, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "1", DueDate: day(2025, 6, 20), Status: StatusInProgress, Attachments: 2, Collaborators: 3},
		{ID: "2", DueDate: day(2025, 6, 25), Status: StatusTodo, Attachments: 1, Collaborators: 2},
		{ID: "3", DueDate: day(2025, 6, 18), Status: StatusDone, Attachments: 0, Collaborators: 1},
		{ID: "4", DueDate: day(2025, 6, 17), Status: StatusTodo},
		{ID: "5", DueDate: day(2025, 6, 16), Status: StatusTodo},
	}

	got := Summarize(tasks, now)
	want := Stats{Total: 5, Completed: 1, UpcomingDeadlines: 2, Attachments: 3, Collaborators: 6}
	if got != want {
		t.Fatalf("Summarize = %#v, want %#v", got, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil, time.Now()); got != (Stats{}) {
		t.Fatalf("expected zero stats, got %#v", got)
	}
}

func TestProjectTimeline(t *testing.T) {
	now := time.Date(2025, 6, 17, 9, 30, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "late", Title: "late", DueDate: day(2025, 6, 25)},
		{ID: "soon", Title: "soon", DueDate: day(2025, 6, 19)},
		{ID: "past", Title: "past", DueDate: day(2025, 6, 10)},
	}
	fixed := func(Task) int { return 2 }

	tl := ProjectTimeline(tasks, now, fixed)
	if len(tl.Days) != TimelineDays {
		t.Fatalf("expected %d days, got %d", TimelineDays, len(tl.Days))
	}
	if !tl.Days[0].Equal(day(2025, 6, 17)) || !tl.Days[13].Equal(day(2025, 6, 30)) {
		t.Fatalf("unexpected window: %v .. %v", tl.Days[0], tl.Days[13])
	}

	order := ""
	for _, r := range tl.Rows {
		order += r.TaskID + ","
	}
	if order != "past,soon,late," {
		t.Fatalf("rows not sorted by due date: %s", order)
	}

	past, soon, late := tl.Rows[0], tl.Rows[1], tl.Rows[2]
	if !soon.Start.Equal(day(2025, 6, 15)) {
		t.Fatalf("unexpected start: %v", soon.Start)
	}
	if soon.Duration != 4 {
		t.Fatalf("soon duration = %d", soon.Duration)
	}
	if past.Duration != 1 {
		t.Fatalf("past duration should floor at 1, got %d", past.Duration)
	}
	for i, a := range past.Active {
		if a {
			t.Fatalf("past task active on day %d", i)
		}
	}
	wantSoon := []bool{true, true, true, false}
	for i, w := range wantSoon {
		if soon.Active[i] != w {
			t.Fatalf("soon active[%d] = %v", i, soon.Active[i])
		}
	}
	if !late.Active[8] || late.Active[9] {
		t.Fatalf("late should end on 25 June: %v", late.Active)
	}
	if soon.DaysRemaining != 2 {
		t.Fatalf("days remaining = %d", soon.DaysRemaining)
	}
}

func TestProjectTimelineClampsLead(t *testing.T) {
	now := day(2025, 6, 17)
	tasks := []Task{{ID: "x", DueDate: day(2025, 6, 20)}}

	tl := ProjectTimeline(tasks, now, func(Task) int { return 40 })
	if !tl.Rows[0].Start.Equal(day(2025, 6, 13)) {
		t.Fatalf("lead not clamped: %v", tl.Rows[0].Start)
	}
	tl = ProjectTimeline(tasks, now, func(Task) int { return -3 })
	if !tl.Rows[0].Start.Equal(now) {
		t.Fatalf("negative lead not clamped: %v", tl.Rows[0].Start)
	}
}

func TestHashedStartIsStableAndBounded(t *testing.T) {
	for _, id := range []string{"task-1", "task-2", "notification-3", ""} {
		task := Task{ID: id}
		first := HashedStart(task)
		if first < 0 || first > MaxLeadDays {
			t.Fatalf("lead %d out of range for %q", first, id)
		}
		if HashedStart(task) != first {
			t.Fatalf("lead not stable for %q", id)
		}
	}
}

func ids(tasks []Task) string {
	out := ""
	for _, t := range tasks {
		out += t.ID
	}
	return out
}
