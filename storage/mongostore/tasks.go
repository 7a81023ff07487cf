package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository stores tasks as documents keyed by their string id.
type TaskRepository struct {
	coll *mongo.Collection
}

var _ task.Repository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(coll *mongo.Collection) *TaskRepository {
	return &TaskRepository{coll: coll}
}

func ownerFilter(id, owner string) bson.M {
	return bson.M{"_id": id, "userId": owner}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.coll.InsertOne(ctx, t)
	return err
}

// FindByID loads a task owned by owner.
func (r *TaskRepository) FindByID(ctx context.Context, id, owner string) (*task.Task, error) {
	var t task.Task
	if err := r.coll.FindOne(ctx, ownerFilter(id, owner)).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// statusQuery translates a status filter into a Mongo filter document.
func statusQuery(q task.Query) bson.M {
	filter := bson.M{"userId": q.Owner}
	switch q.Status {
	case task.StatusCompleted:
		filter["completed"] = true
	case task.StatusOverdue:
		filter["completed"] = false
		filter["dueAt"] = bson.M{"$ne": nil, "$lt": q.Now}
	case task.StatusToday:
		filter["completed"] = false
		filter["dueAt"] = bson.M{"$gte": q.Day.Start, "$lte": q.Day.End}
	case task.StatusUpcoming:
		filter["completed"] = false
		filter["dueAt"] = bson.M{"$ne": nil, "$gt": q.Day.End}
	}
	return filter
}

// List returns the owner's tasks matching the status filter.
func (r *TaskRepository) List(ctx context.Context, q task.Query) ([]task.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dueAt", Value: 1}, {Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, statusQuery(q), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []task.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// updateDocument builds the update for patch. updatedAt only ever moves
// forward, which $max enforces server-side.
func updateDocument(patch task.Patch, now time.Time) bson.M {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.ClearDueAt {
		set["dueAt"] = nil
	} else if patch.DueAt != nil {
		set["dueAt"] = patch.DueAt.UTC()
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	update := bson.M{"$max": bson.M{"updatedAt": now.UTC()}}
	if len(set) > 0 {
		update["$set"] = set
	}
	return update
}

// Update applies patch atomically and returns the resulting document.
func (r *TaskRepository) Update(ctx context.Context, id, owner string, patch task.Patch, now time.Time) (*task.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t task.Task
	err := r.coll.FindOneAndUpdate(ctx, ownerFilter(id, owner), updateDocument(patch, now), opts).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete removes the owner's task.
func (r *TaskRepository) Delete(ctx context.Context, id, owner string) error {
	res, err := r.coll.DeleteOne(ctx, ownerFilter(id, owner))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return task.ErrNotFound
	}
	return nil
}
