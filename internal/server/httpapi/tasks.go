package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskit/internal/common"
	"github.com/dmitrijs2005/taskit/internal/server/services"
)

var taskUpdateFields = map[string]struct{}{
	"description": {}, "completed": {},
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.FieldError("body", "invalid request body"))
		return
	}

	user := userFromContext(r.Context())
	task, err := s.tasks.Create(r.Context(), user.ID, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// parseListOptions reads the listing query parameters:
// ?completed=true&limit=10&skip=20&sortBy=createdAt:desc.
// Unparsable or negative limit/skip values are ignored, matching the
// reference behavior of treating them as absent.
func parseListOptions(r *http.Request) services.ListOptions {
	opts := services.ListOptions{}
	q := r.URL.Query()

	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		opts.Completed = &completed
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Limit = &n
		}
	}

	if v := q.Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Skip = &n
		}
	}

	if v := q.Get("sortBy"); v != "" {
		parts := strings.SplitN(v, ":", 2)
		opts.SortField = parts[0]
		opts.SortDesc = len(parts) == 2 && parts[1] == "desc"
	}

	return opts
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	list, err := s.tasks.List(r.Context(), user.ID, parseListOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	task, err := s.tasks.Get(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, common.FieldError("body", "invalid request body"))
		return
	}

	var upd services.TaskUpdate
	if err := decodeAllowListed(body, taskUpdateFields, &upd); err != nil {
		writeError(w, err)
		return
	}

	user := userFromContext(r.Context())
	task, err := s.tasks.Update(r.Context(), user.ID, mux.Vars(r)["id"], upd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	task, err := s.tasks.Delete(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}
