package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/streamtube/pkg/models"
)

var (
	// ErrNotFound is returned when no matching record exists.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
)

const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Health checks the underlying connection.
func (r *Repository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

const userColumns = `id, username, email, full_name, password_hash, avatar_url,
       COALESCE(cover_image_url, ''), COALESCE(refresh_token, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash,
		&user.AvatarURL, &user.CoverImageURL, &user.RefreshToken,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// CreateUser creates a new user record. Password hashing happens here, on
// the write path, so callers never handle hashes directly.
func (r *Repository) CreateUser(ctx context.Context, user *models.User, password string) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	query := `
		INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING created_at, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.FullName, user.PasswordHash,
		user.AvatarURL, user.CoverImageURL,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.Pool.QueryRow(ctx, query, id))
}

// GetUserByUsernameOrEmail retrieves a user matching either identifier.
func (r *Repository) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE (username = $1 AND $1 <> '') OR (email = $2 AND $2 <> '')
		LIMIT 1
	`
	return scanUser(r.db.Pool.QueryRow(ctx, query, username, email))
}

// UpdateRefreshToken overwrites the user's single refresh-token slot. A plain
// single-statement UPDATE: concurrent refreshes race and the last writer
// wins, which is the accepted consistency model for this slot.
func (r *Repository) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`,
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearRefreshToken empties the refresh-token slot. Idempotent.
func (r *Repository) ClearRefreshToken(ctx context.Context, userID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET refresh_token = NULL, updated_at = NOW() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// UpdatePassword writes a new password for the user, hashing on the write
// path. Nothing else about the record is touched.
func (r *Repository) UpdatePassword(ctx context.Context, userID, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, hash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAccountDetails updates the user's full name and email and returns
// the updated record.
func (r *Repository) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.User, error) {
	query := `
		UPDATE users SET full_name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, userID, fullName, email))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, ErrDuplicate
	}
	return user, err
}

// UpdateAvatar updates the user's avatar URL and returns the updated record.
func (r *Repository) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*models.User, error) {
	query := `
		UPDATE users SET avatar_url = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.Pool.QueryRow(ctx, query, userID, avatarURL))
}

// UpdateCoverImage updates the user's cover image URL and returns the
// updated record.
func (r *Repository) UpdateCoverImage(ctx context.Context, userID, coverImageURL string) (*models.User, error) {
	query := `
		UPDATE users SET cover_image_url = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.Pool.QueryRow(ctx, query, userID, coverImageURL))
}
