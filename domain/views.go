package domain

import (
	"math"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Columns is the Kanban partition of a task collection.
type Columns struct {
	Todo       []Task `json:"todo"`
	InProgress []Task `json:"inProgress"`
	Done       []Task `json:"done"`
}

// Partition splits tasks by status, keeping collection order inside each column.
func Partition(tasks []Task) Columns {
	cols := Columns{Todo: []Task{}, InProgress: []Task{}, Done: []Task{}}
	for _, t := range tasks {
		switch t.Status {
		case StatusTodo:
			cols.Todo = append(cols.Todo, t)
		case StatusInProgress:
			cols.InProgress = append(cols.InProgress, t)
		case StatusDone:
			cols.Done = append(cols.Done, t)
		}
	}
	return cols
}

// Stats are the dashboard counters.
type Stats struct {
	Total             int `json:"total"`
	Completed         int `json:"completed"`
	UpcomingDeadlines int `json:"upcomingDeadlines"`
	Attachments       int `json:"attachments"`
	Collaborators     int `json:"collaborators"`
}

// UpcomingWindowDays is how far ahead a due date still counts as upcoming.
const UpcomingWindowDays = 3

// Summarize computes Stats relative to now. A deadline is upcoming when its
// calendar day lies in [today, today+3] and the task is not done.
func Summarize(tasks []Task, now time.Time) Stats {
	today := calendarDay(now, now.Location())
	horizon := today.AddDate(0, 0, UpcomingWindowDays)

	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Status == StatusDone {
			s.Completed++
		} else {
			due := calendarDay(t.DueDate, now.Location())
			if !due.Before(today) && !due.After(horizon) {
				s.UpcomingDeadlines++
			}
		}
		s.Attachments += t.Attachments
		s.Collaborators += t.Collaborators
	}
	return s
}

// TimelineDays is the width of the Gantt window.
const TimelineDays = 14

// MaxLeadDays bounds how far before today a synthesized start may lie.
const MaxLeadDays = 4

// StartEstimator returns how many days before today a task is assumed to
// have started. Results are clamped to [0, MaxLeadDays]. Tasks carry no real
// start date, so this is a placeholder until one is tracked.
type StartEstimator func(Task) int

// HashedStart derives a stable lead from the task id so repeated projections
// of the same task agree.
func HashedStart(t Task) int {
	return int(xxhash.Sum64String(t.ID) % (MaxLeadDays + 1))
}

// TimelineRow is one bar of the Gantt chart.
type TimelineRow struct {
	TaskID        string    `json:"taskId"`
	Title         string    `json:"title"`
	Status        Status    `json:"status"`
	Priority      Priority  `json:"priority"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Duration      int       `json:"duration"`
	DaysRemaining int       `json:"daysRemaining"`
	Active        []bool    `json:"active"`
}

// Timeline is the Gantt projection of a collection.
type Timeline struct {
	Days []time.Time   `json:"days"`
	Rows []TimelineRow `json:"rows"`
}

// ProjectTimeline builds the Gantt view for the 14 days starting today. Rows
// are ordered by due date; ties keep collection order. A nil estimator uses
// HashedStart.
func ProjectTimeline(tasks []Task, now time.Time, estimate StartEstimator) Timeline {
	if estimate == nil {
		estimate = HashedStart
	}
	loc := now.Location()
	today := calendarDay(now, loc)

	days := make([]time.Time, TimelineDays)
	for i := range days {
		days[i] = today.AddDate(0, 0, i)
	}

	ordered := append([]Task(nil), tasks...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DueDate.Before(ordered[j].DueDate)
	})

	rows := make([]TimelineRow, 0, len(ordered))
	for _, t := range ordered {
		lead := estimate(t)
		if lead < 0 {
			lead = 0
		}
		if lead > MaxLeadDays {
			lead = MaxLeadDays
		}
		start := today.AddDate(0, 0, -lead)
		end := calendarDay(t.DueDate, loc)

		duration := daysBetween(start, end)
		if duration < 1 {
			duration = 1
		}

		active := make([]bool, TimelineDays)
		for i, d := range days {
			active[i] = !d.Before(start) && !d.After(end)
		}

		rows = append(rows, TimelineRow{
			TaskID:        t.ID,
			Title:         t.Title,
			Status:        t.Status,
			Priority:      t.Priority,
			Start:         start,
			End:           end,
			Duration:      duration,
			DaysRemaining: int(math.Ceil(t.DueDate.Sub(now).Hours() / 24)),
			Active:        active,
		})
	}
	return Timeline{Days: days, Rows: rows}
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
