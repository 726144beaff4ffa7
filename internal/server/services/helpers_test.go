package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/taskit/internal/common"
	"github.com/dmitrijs2005/taskit/internal/dbx"
	"github.com/dmitrijs2005/taskit/internal/logging"
	"github.com/dmitrijs2005/taskit/internal/server/config"
	"github.com/dmitrijs2005/taskit/internal/server/models"
	sessiontokensrepo "github.com/dmitrijs2005/taskit/internal/server/repositories/sessiontokens"
	tasksrepo "github.com/dmitrijs2005/taskit/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/taskit/internal/server/repositories/users"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: 0,
		BcryptCost:            bcrypt.MinCost,
	}
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byID    map[string]*models.User
	byIDErr error

	byEmail    map[string]*models.User
	byEmailErr error

	updateErr   error
	lastUpdated *models.User

	deleteErr error
	deletedID string
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "u-new"
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.lastUpdated = u
	u.UpdatedAt = time.Now()
	return u, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

type fakeSessionTokensRepo struct {
	mu     sync.Mutex
	added  []string
	addErr error

	existsOut bool
	existsErr error

	delErr       error
	deletedToken string

	delAllErr    error
	deletedAllID string
}

func (f *fakeSessionTokensRepo) Add(ctx context.Context, userID, token string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, token)
	return nil
}

func (f *fakeSessionTokensRepo) Exists(ctx context.Context, userID, token string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existsOut, nil
}

func (f *fakeSessionTokensRepo) Delete(ctx context.Context, userID, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deletedToken = token
	return nil
}

func (f *fakeSessionTokensRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	if f.delAllErr != nil {
		return f.delAllErr
	}
	f.deletedAllID = userID
	return nil
}

type fakeTasksRepo struct {
	createErr error

	getOut *models.Task
	getErr error

	listOut    []*models.Task
	listErr    error
	lastFilter tasksrepo.ListFilter

	updateErr   error
	lastUpdated *models.Task

	deleteOut *models.Task
	deleteErr error

	delAllErr    error
	deletedAllID string
}

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	task.ID = "t-new"
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	return task, nil
}

func (f *fakeTasksRepo) GetByOwner(ctx context.Context, ownerID, id string) (*models.Task, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeTasksRepo) ListByOwner(ctx context.Context, ownerID string, filter tasksrepo.ListFilter) ([]*models.Task, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listOut == nil {
		return make([]*models.Task, 0), nil
	}
	return f.listOut, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.lastUpdated = task
	return task, nil
}

func (f *fakeTasksRepo) DeleteByOwner(ctx context.Context, ownerID, id string) (*models.Task, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return f.deleteOut, nil
}

func (f *fakeTasksRepo) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	if f.delAllErr != nil {
		return f.delAllErr
	}
	f.deletedAllID = ownerID
	return nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	st *fakeSessionTokensRepo
	tk *fakeTasksRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) SessionTokens(db dbx.DBTX) sessiontokensrepo.Repository {
	return m.st
}
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository { return m.tk }

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u:  &fakeUsersRepo{byID: map[string]*models.User{}, byEmail: map[string]*models.User{}},
		st: &fakeSessionTokensRepo{existsOut: true},
		tk: &fakeTasksRepo{},
	}
}

// fakeNotifier records deliveries on a channel so tests can wait for the
// fire-and-forget goroutine.
type fakeNotifier struct {
	welcome      chan string
	cancellation chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		welcome:      make(chan string, 1),
		cancellation: make(chan string, 1),
	}
}

func (f *fakeNotifier) SendWelcome(ctx context.Context, email, name string) error {
	f.welcome <- email
	return nil
}

func (f *fakeNotifier) SendCancellation(ctx context.Context, email, name string) error {
	f.cancellation <- email
	return nil
}

func waitForDelivery(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case email := <-ch:
		return email
	case <-time.After(2 * time.Second):
		t.Fatalf("notification never delivered")
		return ""
	}
}

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	putErr error
	getErr error
	delErr error

	deletedKey string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if data, ok := f.objects[key]; ok {
		return data, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deletedKey = key
	return nil
}

type fakeNormalizer struct {
	out []byte
	err error
}

func (f *fakeNormalizer) Normalize(data []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func newTokenService(db *sql.DB, rm *fakeRepoManager) *TokenService {
	return NewTokenService(db, rm, testConfig())
}

func newUserService(db *sql.DB, rm *fakeRepoManager, notifier *fakeNotifier, blobs *fakeBlobStore, n *fakeNormalizer) *UserService {
	return NewUserService(db, rm, newTokenService(db, rm), notifier, blobs, n, testLogger(), testConfig())
}
