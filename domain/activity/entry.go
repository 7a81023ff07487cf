package activity

import "time"

// Entry is one line of a user's activity feed.
type Entry struct {
	TaskID    string    `json:"taskId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
