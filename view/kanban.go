package view

import (
	"fmt"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
)

// Column is a kanban column id.
type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "in-progress"
	ColumnCompleted  Column = "completed"
)

// Columns lists the board's columns left to right.
var Columns = []Column{ColumnTodo, ColumnInProgress, ColumnCompleted}

// Lane is one kanban column with its tasks.
type Lane struct {
	Column Column      `json:"column"`
	Title  string      `json:"title"`
	Tasks  []task.Task `json:"tasks"`
}

var laneTitles = map[Column]string{
	ColumnTodo:       "To Do",
	ColumnInProgress: "In Progress",
	ColumnCompleted:  "Completed",
}

// ParseColumn accepts a column id.
func ParseColumn(s string) (Column, error) {
	c := Column(s)
	if _, ok := laneTitles[c]; !ok {
		return "", fmt.Errorf("unknown column %q (want todo, in-progress or completed)", s)
	}
	return c, nil
}

// ColumnOf places a task: done tasks are completed, open high-priority tasks
// are in progress and everything else is to do.
func ColumnOf(t *task.Task) Column {
	switch {
	case t.Completed:
		return ColumnCompleted
	case t.Priority == task.PriorityHigh:
		return ColumnInProgress
	}
	return ColumnTodo
}

// Kanban returns all three lanes, empty ones included.
func Kanban(tasks []task.Task) []Lane {
	lanes := make([]Lane, len(Columns))
	for i, c := range Columns {
		lanes[i] = Lane{Column: c, Title: laneTitles[c], Tasks: []task.Task{}}
	}
	for _, t := range tasks {
		switch ColumnOf(&t) {
		case ColumnTodo:
			lanes[0].Tasks = append(lanes[0].Tasks, t)
		case ColumnInProgress:
			lanes[1].Tasks = append(lanes[1].Tasks, t)
		default:
			lanes[2].Tasks = append(lanes[2].Tasks, t)
		}
	}
	return lanes
}

// MoveTo returns the patch that puts t into column c. The bool is false when
// t is already there.
func MoveTo(t *task.Task, c Column) (task.Patch, bool) {
	if ColumnOf(t) == c {
		return task.Patch{}, false
	}
	done, open := true, false
	switch c {
	case ColumnCompleted:
		return task.Patch{Completed: &done}, true
	case ColumnInProgress:
		high := task.PriorityHigh
		return task.Patch{Completed: &open, Priority: &high}, true
	default:
		p := task.Patch{Completed: &open}
		if t.Priority == task.PriorityHigh {
			med := task.PriorityMed
			p.Priority = &med
		}
		return p, true
	}
}
