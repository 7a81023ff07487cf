package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"gorm.io/gorm"
)

// TaskRepository handles task persistence using GORM.
type TaskRepository struct {
	db *gorm.DB
}

var _ task.Repository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindByID loads a task owned by owner.
func (r *TaskRepository) FindByID(ctx context.Context, id, owner string) (*task.Task, error) {
	var t task.Task
	result := r.db.WithContext(ctx).First(&t, "id = ? AND user_id = ?", id, owner)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, task.ErrNotFound
		}
		return nil, result.Error
	}
	return &t, nil
}

// List returns the owner's tasks matching the status filter. Timestamps are
// compared in UTC, the zone every row is written in.
func (r *TaskRepository) List(ctx context.Context, q task.Query) ([]task.Task, error) {
	now := q.Now.UTC()
	start, end := q.Day.Start.UTC(), q.Day.End.UTC()

	db := r.db.WithContext(ctx).Where("user_id = ?", q.Owner)
	switch q.Status {
	case task.StatusCompleted:
		db = db.Where("completed = ?", true)
	case task.StatusOverdue:
		db = db.Where("completed = ? AND due_at IS NOT NULL AND due_at < ?", false, now)
	case task.StatusToday:
		db = db.Where("completed = ? AND due_at >= ? AND due_at <= ?", false, start, end)
	case task.StatusUpcoming:
		db = db.Where("completed = ? AND due_at IS NOT NULL AND due_at > ?", false, end)
	}

	var tasks []task.Task
	if err := db.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update applies patch to the owner's task inside a transaction so the
// read-modify-write sees a consistent row.
func (r *TaskRepository) Update(ctx context.Context, id, owner string, patch task.Patch, now time.Time) (*task.Task, error) {
	var updated task.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ? AND user_id = ?", id, owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return task.ErrNotFound
			}
			return err
		}
		patch.Apply(&updated, now.UTC())
		return tx.Save(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the owner's task.
func (r *TaskRepository) Delete(ctx context.Context, id, owner string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&task.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return task.ErrNotFound
	}
	return nil
}
