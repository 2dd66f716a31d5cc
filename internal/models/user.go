package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// User represents a user in the system
type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Bio          string    `json:"bio" db:"bio"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserInterest is a free-text interest tag used for recommendations
type UserInterest struct {
	ID     int    `json:"id" db:"id"`
	UserID int    `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`
}

// ParticipationHistory records a user's attendance at an event
type ParticipationHistory struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	EventID    int       `json:"event_id" db:"event_id"`
	AttendedAt time.Time `json:"attended_at" db:"attended_at"`
}

// UserCreateRequest represents the data needed to register a new user
type UserCreateRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Bio       string   `json:"bio"`
	Interests []string `json:"interests"`
	IsStaff   bool     `json:"-"`
}

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.@+-]+$`)
	nameRegex     = regexp.MustCompile(`^[\p{L}\s\-']+$`)
)

// Validate validates user registration data
func (req *UserCreateRequest) Validate() error {
	if err := validateUsername(req.Username); err != nil {
		return err
	}

	if err := validateEmail(req.Email); err != nil {
		return err
	}

	if err := validatePassword(req.Password); err != nil {
		return err
	}

	if err := validateName(req.FirstName, req.LastName); err != nil {
		return err
	}

	for _, interest := range req.Interests {
		if len(interest) > 100 {
			return errors.New("interest must be less than 100 characters")
		}
	}

	return nil
}

// CleanInterests trims interests and drops blanks and case-insensitive duplicates.
func (req *UserCreateRequest) CleanInterests() []string {
	seen := make(map[string]bool)
	var out []string
	for _, interest := range req.Interests {
		interest = strings.TrimSpace(interest)
		key := strings.ToLower(interest)
		if interest == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, interest)
	}
	return out
}

func validateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}

	if len(username) > 150 {
		return errors.New("username must be less than 150 characters")
	}

	if !usernameRegex.MatchString(username) {
		return errors.New("username contains invalid characters")
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}

	if len(email) > 255 {
		return errors.New("email must be less than 255 characters")
	}

	if !emailRegex.MatchString(email) {
		return errors.New("email format is invalid")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}

	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	if len(password) > 128 {
		return errors.New("password must be less than 128 characters")
	}

	return nil
}

// Names are optional, but must be plain letters when present.
func validateName(firstName, lastName string) error {
	if len(firstName) > 150 {
		return errors.New("first name must be less than 150 characters")
	}

	if len(lastName) > 150 {
		return errors.New("last name must be less than 150 characters")
	}

	if firstName != "" && !nameRegex.MatchString(firstName) {
		return errors.New("first name contains invalid characters")
	}

	if lastName != "" && !nameRegex.MatchString(lastName) {
		return errors.New("last name contains invalid characters")
	}

	return nil
}

// FullName returns the user's full name, falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
