package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"gorm.io/gorm"

	"taskdeck/internal/apperr"
	"taskdeck/internal/model"
	"taskdeck/internal/repository"
)

// testEnv wires the services against an in-memory database and an
// in-memory attachment store.
type testEnv struct {
	db    *gorm.DB
	store *memStore

	users  *repository.UserRepository
	lists  *ListService
	tasks  *TaskService
	order  *OrderService
	search *SearchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	// The in-memory database lives per connection.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	store := newMemStore()
	listRepo := repository.NewListRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		db:     db,
		store:  store,
		users:  repository.NewUserRepository(db),
		lists:  NewListService(listRepo),
		tasks:  NewTaskService(taskRepo, listRepo, store, log),
		order:  NewOrderService(taskRepo),
		search: NewSearchService(taskRepo, listRepo, store),
	}
}

func (e *testEnv) seedUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Name: "Test User", Email: email, Password: "x"}
	if err := e.users.CreateWithDefaultList(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func (e *testEnv) defaultList(t *testing.T, userID uint) *model.TaskList {
	t.Helper()
	lists, err := e.lists.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("load lists: %v", err)
	}
	if len(lists) == 0 {
		t.Fatalf("user %d has no lists", userID)
	}
	return &lists[0]
}

func (e *testEnv) seedTask(t *testing.T, userID, listID uint, title string) *model.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), userID, TaskCreateInput{
		TaskListID: listID,
		Title:      title,
	}, nil)
	if err != nil {
		t.Fatalf("seed task %q: %v", title, err)
	}
	return task
}

func (e *testEnv) taskRowCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&model.Task{}).Unscoped().Count(&n).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	return n
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected error kind %d, got %d (%v)", kind, got, err)
	}
}

func wantField(t *testing.T, err error, field string) {
	t.Helper()
	wantKind(t, err, apperr.Validation)
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("not an apperr: %v", err)
	}
	if ae.Field != field {
		t.Fatalf("expected validation on field %q, got %q (%v)", field, ae.Field, err)
	}
}

func strPtr(s string) *string { return &s }

// memStore is an in-memory attachment store with optional failure
// injection.
type memStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	next     int
	failSave bool
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (m *memStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return "", apperr.New(apperr.Storage, "store unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", apperr.Wrap(apperr.Storage, "read upload", err)
	}
	m.next++
	ref := fmt.Sprintf("blob-%d", m.next)
	m.files[ref] = data
	return ref, nil
}

func (m *memStore) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, ref)
	return nil
}

func (m *memStore) URL(ref string) string {
	return "http://test.local/storage/" + ref
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
