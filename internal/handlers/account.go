package handlers

import (
	"net/http"

	"eventhub/internal/middleware"
	"eventhub/internal/models"
	"eventhub/internal/services"
)

// SessionBinder ties the caller's cookie session to a user
type SessionBinder interface {
	Login(w http.ResponseWriter, r *http.Request, user *models.User) error
	Logout(w http.ResponseWriter, r *http.Request) error
}

// AccountHandler handles registration and sign-in
type AccountHandler struct {
	users    services.UserServiceInterface
	sessions SessionBinder
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(users services.UserServiceInterface, sessions SessionBinder) *AccountHandler {
	return &AccountHandler{
		users:    users,
		sessions: sessions,
	}
}

// SignInRequest carries sign-in credentials. Login is a username or an email.
type SignInRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register handles POST /api/users/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// SignIn handles POST /api/session
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SignOut handles DELETE /api/session
func (h *AccountHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/session
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.GetUserFromContext(r.Context()))
}
