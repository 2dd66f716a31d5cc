package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"eventhub/internal/models"
	"eventhub/internal/utils"
)

// UserStore is the persistence the user service needs
type UserStore interface {
	Create(ctx context.Context, req *models.UserCreateRequest) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
}

// UserService handles registration and account bootstrap
type UserService struct {
	users UserStore
	hash  func(string) (string, error)
}

// NewUserService creates a new user service
func NewUserService(users UserStore) *UserService {
	return &UserService{
		users: users,
		hash:  utils.HashPassword,
	}
}

// Register validates the request, hashes the password and stores the user with their interests
func (s *UserService) Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	hashed, err := s.hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	create := *req
	create.Password = hashed
	user, err := s.users.Create(ctx, &create)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEntry) {
			return nil, fmt.Errorf("%w: username or email already registered", models.ErrDuplicateEntry)
		}
		return nil, err
	}

	log.Printf("Registered user %s (id %d)", user.Username, user.ID)
	return user, nil
}

// EnsureUser returns the account matching the username or email, creating it
// when none exists. The boolean reports whether a new account was created.
func (s *UserService) EnsureUser(ctx context.Context, req *models.UserCreateRequest) (*models.User, bool, error) {
	existing, err := s.users.GetByUsernameOrEmail(ctx, req.Username, req.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, false, err
	}

	user, err := s.Register(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// Authenticate returns the user whose username or email is login when password
// matches. Unknown logins and wrong passwords both yield ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, login, login)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}

	ok, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		log.Printf("Stored password hash for user %d is unreadable: %v", user.ID, err)
		return nil, models.ErrUnauthorized
	}
	if !ok {
		return nil, models.ErrUnauthorized
	}
	return user, nil
}

// GetUser returns a user by id
func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}
