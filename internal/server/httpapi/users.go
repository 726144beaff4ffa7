package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskit/internal/common"
	"github.com/dmitrijs2005/taskit/internal/server/avatar"
	"github.com/dmitrijs2005/taskit/internal/server/models"
	"github.com/dmitrijs2005/taskit/internal/server/services"
)

// maxAvatarSize caps avatar uploads at 1MB, enforced before the image
// collaborator ever sees the bytes.
const maxAvatarSize = 1 << 20

// avatarFileRe restricts uploads by extension at the boundary; content is
// still validated by the normalizer.
var avatarFileRe = regexp.MustCompile(`(?i)\.(jpe?g|png)$`)

var profileUpdateFields = map[string]struct{}{
	"name": {}, "age": {}, "email": {}, "password": {},
}

// authResponse pairs an account with a freshly issued session token.
type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.FieldError("body", "invalid request body"))
		return
	}

	user, token, err := s.users.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.FieldError("body", "invalid request body"))
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	token := tokenFromContext(r.Context())

	if err := s.tokens.Revoke(r.Context(), user.ID, token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: "Logged out successfully!"})
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := s.tokens.RevokeAll(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: "Logged out successfully!"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, common.FieldError("body", "invalid request body"))
		return
	}

	var upd services.ProfileUpdate
	if err := decodeAllowListed(body, profileUpdateFields, &upd); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), userFromContext(r.Context()), upd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.DeleteAccount(r.Context(), userFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, common.FieldError("avatar", "avatar must be an image up to 1MB"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, common.FieldError("avatar", "please upload an avatar file"))
		return
	}
	defer file.Close()

	if !avatarFileRe.MatchString(header.Filename) {
		writeError(w, common.FieldError("avatar", "only jpg, jpeg and png images are supported"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, common.ErrorInternal)
		return
	}

	if err := s.users.SetAvatar(r.Context(), userFromContext(r.Context()), data); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: "Uploaded successfully."})
}

func (s *Server) handleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	err := s.users.ClearAvatar(r.Context(), userFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "No avatar found"})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: "Deleted successfully."})
}

func (s *Server) handleGetAvatar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	data, err := s.users.GetAvatar(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", avatar.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
