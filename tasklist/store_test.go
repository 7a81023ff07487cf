package tasklist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errBoom = errors.New("boom")

// fakeAPI is an in-memory server. Ids in fail are rejected on every call.
type fakeAPI struct {
	mu       sync.Mutex
	tasks    map[string]task.Task
	order    []string
	fail     map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func newFakeAPI(n int) *fakeAPI {
	f := &fakeAPI{tasks: map[string]task.Task{}, fail: map[string]bool{}}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("t%d", i)
		f.tasks[id] = task.Task{ID: id, Title: "task " + id, Priority: task.PriorityMed}
		f.order = append(f.order, id)
	}
	return f
}

func (f *fakeAPI) enter() func() {
	n := f.inFlight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeAPI) ListTasks(_ context.Context, status task.StatusFilter) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []task.Task{}
	for _, id := range f.order {
		t, ok := f.tasks[id]
		if !ok {
			continue
		}
		if status == task.StatusCompleted && !t.Completed {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, d task.Draft) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("t%d", len(f.order)+1)
	t := task.Task{ID: id, Title: d.Title, Priority: task.PriorityMed}
	f.tasks[id] = t
	f.order = append(f.order, id)
	return &t, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id string, p task.Patch) (*task.Task, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	if f.fail[id] {
		return nil, errBoom
	}
	p.Apply(&t, time.Now())
	f.tasks[id] = t
	return &t, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return task.ErrNotFound
	}
	if f.fail[id] {
		return errBoom
	}
	delete(f.tasks, id)
	return nil
}

func loadedStore(t *testing.T, api *fakeAPI) *Store {
	t.Helper()
	s := New(api)
	require.NoError(t, s.Refresh(context.Background(), task.StatusAll))
	return s
}

func TestStore_SingleMutations(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(3)
	s := loadedStore(t, api)
	require.Len(t, s.Tasks(), 3)

	toggled, err := s.Toggle(ctx, "t2")
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	got, _ := s.Find("t2")
	assert.True(t, got.Completed)

	_, err = s.Toggle(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownTask)

	created, err := s.Create(ctx, task.Draft{Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, s.Tasks()[0].ID)

	require.NoError(t, s.Delete(ctx, "t1"))
	_, ok := s.Find("t1")
	assert.False(t, ok)

	// A failed delete leaves the list untouched.
	assert.ErrorIs(t, s.Delete(ctx, "t1"), task.ErrNotFound)
	assert.Len(t, s.Tasks(), 3)
}

func TestStore_FailedPatchKeepsState(t *testing.T) {
	api := newFakeAPI(2)
	api.fail["t1"] = true
	s := loadedStore(t, api)

	_, err := s.Toggle(context.Background(), "t1")
	assert.ErrorIs(t, err, errBoom)
	got, _ := s.Find("t1")
	assert.False(t, got.Completed)
}

func TestStore_ApplySuggestion(t *testing.T) {
	s := loadedStore(t, newFakeAPI(1))
	at := time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)

	_, err := s.ApplySuggestion(context.Background(), "t1", at)
	require.NoError(t, err)
	got, _ := s.Find("t1")
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(at))
}

func TestStore_RefreshScope(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(3)
	s := loadedStore(t, api)
	_, err := s.Toggle(ctx, "t3")
	require.NoError(t, err)

	require.NoError(t, s.Refresh(ctx, task.StatusCompleted))
	assert.Equal(t, task.StatusCompleted, s.Status())
	assert.Equal(t, []string{"t3"}, s.IDs())
}

func TestStore_Reorder(t *testing.T) {
	s := loadedStore(t, newFakeAPI(4))

	require.NoError(t, s.Reorder(0, 2))
	assert.Equal(t, []string{"t2", "t3", "t1", "t4"}, s.IDs())

	require.NoError(t, s.Reorder(3, 0))
	assert.Equal(t, []string{"t4", "t2", "t3", "t1"}, s.IDs())

	assert.Error(t, s.Reorder(0, 4))
}

func TestBulkComplete_PartialFailure(t *testing.T) {
	api := newFakeAPI(5)
	api.fail["t2"] = true
	s := loadedStore(t, api)

	sel := NewSelection()
	sel.SelectAll([]string{"t1", "t2", "t3", "missing"})

	res := s.BulkComplete(context.Background(), sel)

	assert.Equal(t, 2, res.Succeeded())
	assert.Equal(t, 2, res.Failed())
	require.Error(t, res.Err())
	assert.ErrorIs(t, res.Err(), errBoom)
	assert.ErrorIs(t, res.Err(), task.ErrNotFound)
	assert.Equal(t, []string{"t1", "t2", "t3", "missing"}, []string{res.Items[0].ID, res.Items[1].ID, res.Items[2].ID, res.Items[3].ID})

	// Successful items stay applied; nothing is rolled back.
	for id, want := range map[string]bool{"t1": true, "t2": false, "t3": true, "t4": false} {
		got, _ := s.Find(id)
		assert.Equal(t, want, got.Completed, id)
	}
	assert.Zero(t, sel.Len())
}

func TestBulkDelete(t *testing.T) {
	api := newFakeAPI(4)
	s := loadedStore(t, api)

	sel := NewSelection()
	sel.SelectAll([]string{"t1", "t3"})
	res := s.BulkDelete(context.Background(), sel)

	require.NoError(t, res.Err())
	assert.Equal(t, []string{"t2", "t4"}, s.IDs())
}

func TestBulkReschedule(t *testing.T) {
	s := loadedStore(t, newFakeAPI(3))
	due := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	sel := NewSelection()
	sel.SelectAll(s.IDs())
	res := s.BulkReschedule(context.Background(), sel, due)

	require.NoError(t, res.Err())
	for _, tk := range s.Tasks() {
		require.NotNil(t, tk.DueAt)
		assert.True(t, tk.DueAt.Equal(due))
	}
}

func TestBulk_RespectsConcurrencyLimit(t *testing.T) {
	api := newFakeAPI(20)
	api.delay = 5 * time.Millisecond
	s := loadedStore(t, api)
	s.SetConcurrency(3)

	sel := NewSelection()
	sel.SelectAll(s.IDs())
	res := s.BulkComplete(context.Background(), sel)

	require.NoError(t, res.Err())
	assert.LessOrEqual(t, api.peak.Load(), int32(3))
}

func TestBulk_CanceledContext(t *testing.T) {
	api := newFakeAPI(3)
	s := loadedStore(t, api)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sel := NewSelection()
	sel.SelectAll(s.IDs())
	res := s.BulkDelete(ctx, sel)

	assert.Equal(t, 3, res.Failed())
	assert.ErrorIs(t, res.Err(), context.Canceled)
	assert.Len(t, s.Tasks(), 3)
}

func TestBulk_SetConcurrencyWhileRunning(t *testing.T) {
	api := newFakeAPI(10)
	api.delay = time.Millisecond
	s := loadedStore(t, api)

	var wg sync.WaitGroup
	for i := 1; i <= 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SetConcurrency(i)
		}()
	}
	var sel Selection
	sel.SelectAll(s.IDs())
	res := s.BulkComplete(context.Background(), &sel)
	wg.Wait()

	require.NoError(t, res.Err())
	assert.LessOrEqual(t, api.peak.Load(), int32(DefaultConcurrency))
}
