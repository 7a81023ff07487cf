package task

import (
	"context"
	"testing"
	"time"

	domain "github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
	"github.com/NathanHodgkiss447/smart-tasks/storage/gormstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := gormstore.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	svc := NewService(store.Tasks(), time.UTC)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestService_CreateDefaults(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.Create(context.Background(), "alice", domain.Draft{Title: "  Pay rent  "})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "Pay rent", got.Title)
	assert.Equal(t, domain.PriorityMed, got.Priority)
	assert.False(t, got.Completed)
	assert.Nil(t, got.DueAt)
	assert.True(t, got.CreatedAt.Equal(fixedNow))
	assert.True(t, got.UpdatedAt.Equal(got.CreatedAt))
}

func TestService_CreateValidation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name  string
		draft domain.Draft
		field string
	}{
		{name: "blank title", draft: domain.Draft{Title: "   "}, field: "title"},
		{name: "bad priority", draft: domain.Draft{Title: "x", Priority: "urgent"}, field: "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "alice", tt.draft)
			ve, ok := validation.As(err)
			require.True(t, ok, "error = %v", err)
			assert.Equal(t, tt.field, ve.Fields[0].Field)
		})
	}
}

func TestService_ListOrdering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	create := func(title string, due *time.Time) string {
		tk, err := svc.Create(ctx, "alice", domain.Draft{Title: title, DueAt: due})
		require.NoError(t, err)
		return tk.ID
	}
	undated := create("undated", nil)
	later := create("later", ptr(fixedNow.Add(48*time.Hour)))
	sooner := create("sooner", ptr(fixedNow.Add(2*time.Hour)))

	list, err := svc.List(ctx, "alice", domain.StatusAll)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{sooner, later, undated}, []string{list[0].ID, list[1].ID, list[2].ID})

	empty, err := svc.List(ctx, "nobody", domain.StatusAll)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestService_UpdateAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", domain.Draft{Title: "Write report", DueAt: ptr(fixedNow.Add(time.Hour))})
	require.NoError(t, err)

	svc.now = func() time.Time { return fixedNow.Add(time.Minute) }
	updated, err := svc.Update(ctx, created.ID, "alice", domain.Patch{Completed: ptr(true), ClearDueAt: true})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Nil(t, updated.DueAt)
	assert.Equal(t, "Write report", updated.Title)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = svc.Update(ctx, created.ID, "bob", domain.Patch{Title: ptr("mine")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, created.ID, "alice"))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID, "alice"), domain.ErrNotFound)

	_, err = svc.Get(ctx, created.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
