// Package httpapi exposes the public HTTP surface: account and task
// endpoints behind bearer-token authentication.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskit/internal/logging"
	"github.com/dmitrijs2005/taskit/internal/server/models"
	"github.com/dmitrijs2005/taskit/internal/server/services"
)

// userService is the slice of UserService the handlers need.
type userService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	UpdateProfile(ctx context.Context, user *models.User, upd services.ProfileUpdate) (*models.User, error)
	DeleteAccount(ctx context.Context, user *models.User) (*models.User, error)
	SetAvatar(ctx context.Context, user *models.User, data []byte) error
	ClearAvatar(ctx context.Context, user *models.User) error
	GetAvatar(ctx context.Context, userID string) ([]byte, error)
}

// tokenService resolves and revokes session tokens.
type tokenService interface {
	Validate(ctx context.Context, token string) (*models.User, error)
	Revoke(ctx context.Context, userID, token string) error
	RevokeAll(ctx context.Context, userID string) error
}

// taskService is the owner-scoped task store.
type taskService interface {
	Create(ctx context.Context, ownerID, description string) (*models.Task, error)
	Get(ctx context.Context, ownerID, id string) (*models.Task, error)
	List(ctx context.Context, ownerID string, opts services.ListOptions) ([]*models.Task, error)
	Update(ctx context.Context, ownerID, id string, upd services.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id string) (*models.Task, error)
}

// Server serves the HTTP API.
type Server struct {
	address string
	logger  logging.Logger
	users   userService
	tokens  tokenService
	tasks   taskService
}

// NewServer constructs the HTTP server around the given services.
func NewServer(address string, logger logging.Logger, us userService, ts tokenService, tks taskService) *Server {
	return &Server{
		address: address,
		logger:  logger.With("module", "http_server"),
		users:   us,
		tokens:  ts,
		tasks:   tks,
	}
}

// Router wires all endpoints. Registration, login, and avatar-read are the
// only public routes; everything else goes through the auth gate.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/users", s.handleRegister).Methods("POST")
	r.HandleFunc("/users/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/users/logout", s.authenticate(s.handleLogout)).Methods("POST")
	r.HandleFunc("/users/logoutAll", s.authenticate(s.handleLogoutAll)).Methods("POST")
	r.HandleFunc("/users/me", s.authenticate(s.handleMe)).Methods("GET")
	r.HandleFunc("/users/me", s.authenticate(s.handleUpdateMe)).Methods("PATCH")
	r.HandleFunc("/users/me", s.authenticate(s.handleDeleteMe)).Methods("DELETE")
	r.HandleFunc("/users/me/avatar", s.authenticate(s.handleUploadAvatar)).Methods("POST")
	r.HandleFunc("/users/me/avatar", s.authenticate(s.handleDeleteAvatar)).Methods("DELETE")
	r.HandleFunc("/users/{id}/avatar", s.handleGetAvatar).Methods("GET")

	r.HandleFunc("/tasks", s.authenticate(s.handleCreateTask)).Methods("POST")
	r.HandleFunc("/tasks", s.authenticate(s.handleListTasks)).Methods("GET")
	r.HandleFunc("/task/{id}", s.authenticate(s.handleGetTask)).Methods("GET")
	r.HandleFunc("/task/{id}", s.authenticate(s.handleUpdateTask)).Methods("PATCH")
	r.HandleFunc("/task/{id}", s.authenticate(s.handleDeleteTask)).Methods("DELETE")

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
