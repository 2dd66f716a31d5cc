package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"eventhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_Register(t *testing.T) {
	api := newTestAPI(nil)
	api.users.On("Register", mock.Anything, mock.MatchedBy(func(req *models.UserCreateRequest) bool {
		return req.Username == "amira" && !req.IsStaff && len(req.Interests) == 2
	})).Return(&models.User{ID: 7, Username: "amira", PasswordHash: "$argon2id$secret"}, nil)

	rr := api.do("POST", "/api/users/register",
		`{"username":"amira","email":"amira@example.com","password":"correcthorse","interests":["jazz","tech"],"is_staff":true}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "argon2id", "password hashes never leave the server")
	require.NotNil(t, api.sessions.loggedIn)
	assert.Equal(t, 7, api.sessions.loggedIn.ID)
}

func TestAccountHandler_RegisterErrors(t *testing.T) {
	api := newTestAPI(nil)
	api.users.On("Register", mock.Anything, mock.MatchedBy(func(req *models.UserCreateRequest) bool {
		return req.Username == "taken"
	})).Return(nil, fmt.Errorf("%w: username or email already registered", models.ErrDuplicateEntry))
	api.users.On("Register", mock.Anything, mock.MatchedBy(func(req *models.UserCreateRequest) bool {
		return req.Username == "x"
	})).Return(nil, fmt.Errorf("%w: username too short", models.ErrInvalidInput))

	rr := api.do("POST", "/api/users/register", `{"username":"taken","email":"t@example.com","password":"correcthorse"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "duplicate", decodeError(t, rr).Reason)

	rr = api.do("POST", "/api/users/register", `{"username":"x","email":"x@example.com","password":"correcthorse"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Nil(t, api.sessions.loggedIn)
}

func TestAccountHandler_SignIn(t *testing.T) {
	api := newTestAPI(nil)
	api.users.On("Authenticate", mock.Anything, "amira", "correcthorse").Return(&models.User{ID: 7, Username: "amira"}, nil)
	api.users.On("Authenticate", mock.Anything, "amira", "wrong").Return(nil, models.ErrUnauthorized)

	rr := api.do("POST", "/api/session", `{"login":"amira","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid credentials", decodeError(t, rr).Error)
	assert.Nil(t, api.sessions.loggedIn)

	rr = api.do("POST", "/api/session", `{"login":"amira","password":"correcthorse"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, api.sessions.loggedIn)
	assert.Equal(t, 7, api.sessions.loggedIn.ID)
}

func TestAccountHandler_SignInIsRateLimited(t *testing.T) {
	api := newTestAPI(nil)
	api.users.On("Authenticate", mock.Anything, "amira", "wrong").Return(nil, models.ErrUnauthorized)

	for i := 0; i < 5; i++ {
		rr := api.do("POST", "/api/session", `{"login":"amira","password":"wrong"}`)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}

	rr := api.do("POST", "/api/session", `{"login":"amira","password":"wrong"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	api.users.AssertNumberOfCalls(t, "Authenticate", 5)
}

func TestAccountHandler_SignOutAndMe(t *testing.T) {
	api := newTestAPI(buyer)

	rr := api.do("GET", "/api/session", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"amira"`)

	rr = api.do("DELETE", "/api/session", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, api.sessions.loggedOut)

	rr = newTestAPI(nil).do("GET", "/api/session", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
