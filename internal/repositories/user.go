package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/models"
)

// UserRepository handles user, interest, and participation data
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, bio, is_staff, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Bio,
		&user.IsStaff,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a user and their interests. req.Password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, bio, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	user, err := scanUser(tx.QueryRowContext(ctx, query,
		req.Username,
		req.Email,
		req.Password,
		req.FirstName,
		req.LastName,
		req.Bio,
		req.IsStaff,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	for _, interest := range req.CleanInterests() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_interests (user_id, name) VALUES ($1, $2)`, user.ID, interest); err != nil {
			return nil, fmt.Errorf("failed to add interest: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByUsernameOrEmail retrieves a user matching either identifier
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2 LIMIT 1`, username, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetInterests returns the user's interest tags
func (r *UserRepository) GetInterests(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM user_interests WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interests: %w", err)
	}
	defer rows.Close()

	var interests []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan interest: %w", err)
		}
		interests = append(interests, name)
	}
	return interests, rows.Err()
}

// RecordParticipation adds an attendance record for a user at an event
func (r *UserRepository) RecordParticipation(ctx context.Context, userID, eventID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO participation_history (user_id, event_id) VALUES ($1, $2)`, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to record participation: %w", err)
	}
	return nil
}
