package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"eventhub/internal/config"
	"eventhub/internal/models"

	"github.com/gorilla/sessions"
)

const sessionUserKey = "user_id"

// SessionUserLoader resolves the user bound to a session
type SessionUserLoader interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// SessionManager binds users to a cookie session and loads them into request context
type SessionManager struct {
	store sessions.Store
	name  string
	users SessionUserLoader
}

// NewSessionManager creates a new session manager
func NewSessionManager(store sessions.Store, name string, users SessionUserLoader) *SessionManager {
	if name == "" {
		name = "session"
	}
	return &SessionManager{
		store: store,
		name:  name,
		users: users,
	}
}

// NewCookieStore builds the signed cookie store used for sessions
func NewCookieStore(cfg config.SessionConfig, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// LoadUser loads the current user from the session and adds it to the request context
func (m *SessionManager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, m.name)
		if err != nil {
			// Continue anonymously if the cookie cannot be decoded
			next.ServeHTTP(w, r)
			return
		}

		userID := sessionUserID(session.Values[sessionUserKey])
		if userID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.GetUser(r.Context(), userID)
		if err != nil {
			if !models.IsNotFound(err) {
				log.Printf("Failed to load session user %d: %v", userID, err)
				next.ServeHTTP(w, r)
				return
			}
			// The account is gone, drop the binding
			delete(session.Values, sessionUserKey)
			session.Options.MaxAge = -1
			if err := session.Save(r, w); err != nil {
				log.Printf("Failed to clear session: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		noteUser(w, user.ID)
		next.ServeHTTP(w, r.WithContext(SetUserContext(r.Context(), user)))
	})
}

// Login binds the session to user
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session, err := m.store.Get(r, m.name)
	if err != nil && session == nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	session.Values[sessionUserKey] = user.ID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout clears the session cookie
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	session, err := m.store.Get(r, m.name)
	if err != nil && session == nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	delete(session.Values, sessionUserKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// sessionUserID accepts the id as stored by Login or as rewritten by other encoders
func sessionUserID(v any) int {
	switch id := v.(type) {
	case int:
		return id
	case int64:
		return int(id)
	case float64:
		return int(id)
	case string:
		n, err := strconv.Atoi(id)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// SecureHeaders adds security headers to API responses
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Only set HSTS for HTTPS
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
