package domain

import "time"

const (
	TaskCreated       = "task-created"
	TaskUpdated       = "task-updated"
	TaskDeleted       = "task-deleted"
	TaskStatusChanged = "task-status-changed"
)

// Event describes a mutation applied to the task collection.
type Event struct {
	Type      string    `json:"type"`
	TaskID    string    `json:"taskId"`
	TaskTitle string    `json:"taskTitle"`
	Status    Status    `json:"status,omitempty"`
	Time      time.Time `json:"time"`
	UserID    string    `json:"userId,omitempty"`
}
