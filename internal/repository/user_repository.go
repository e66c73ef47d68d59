package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

const userColumns = `id, name, email, COALESCE(password_hash, '') AS password_hash, COALESCE(phone, '') AS phone, user_type, COALESCE(google_id, '') AS google_id, COALESCE(microsoft_id, '') AS microsoft_id, COALESCE(avatar, '') AS avatar, created_at, updated_at`

// UserRepository provides database access for accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByProvider returns the user linked to a federated identity, falling back to the email.
func (r *UserRepository) FindByProvider(ctx context.Context, provider, subject, email string) (*models.User, error) {
	column, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1 OR email = $2 ORDER BY (%s = $1) DESC LIMIT 1`, userColumns, column, column)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, subject, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find user by provider: %w", err)
	}
	return &user, nil
}

// LinkProvider stores the federated subject on an existing account.
func (r *UserRepository) LinkProvider(ctx context.Context, id, provider, subject string) error {
	column, err := providerColumn(provider)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE users SET %s = $2, updated_at = $3 WHERE id = $1`, column)
	if _, err := r.db.ExecContext(ctx, query, id, subject, time.Now().UTC()); err != nil {
		return fmt.Errorf("link provider: %w", err)
	}
	return nil
}

// ListByType returns every user of the given type, oldest first.
func (r *UserRepository) ListByType(ctx context.Context, userType models.UserType) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_type = $1 ORDER BY created_at ASC`
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, userType); err != nil {
		return nil, fmt.Errorf("list users by type: %w", err)
	}
	return users, nil
}

// Create inserts a new user. A duplicate email yields appErrors.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, name, email, password_hash, phone, user_type, google_id, microsoft_id, avatar, created_at, updated_at)
VALUES (:id, :name, :email, NULLIF(:password_hash, ''), NULLIF(:phone, ''), :user_type, NULLIF(:google_id, ''), NULLIF(:microsoft_id, ''), NULLIF(:avatar, ''), :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user: %w", appErrors.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateProfile overwrites name, email and phone and returns the stored record.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update models.UserProfileUpdate) (*models.User, error) {
	query := `UPDATE users SET name = $2, email = $3, phone = NULLIF($4, ''), updated_at = $5 WHERE id = $1 RETURNING ` + userColumns
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id, update.Name, update.Email, update.Phone, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRecordNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update user: %w", appErrors.ErrConflict)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

// DeleteWithComplaints removes the user and every complaint filed by it in one transaction.
// Messages and assignments that reference those complaints are left in place.
func (r *UserRepository) DeleteWithComplaints(ctx context.Context, id string) (deleted int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete user transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user rows affected: %w", err)
	}
	if affected == 0 {
		err = appErrors.ErrRecordNotFound
		return 0, err
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM complaints WHERE user_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete user complaints: %w", err)
	}
	if deleted, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("delete user complaints rows affected: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete user: %w", err)
	}
	return deleted, nil
}

// Ping verifies connectivity for readiness probes.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func providerColumn(provider string) (string, error) {
	switch provider {
	case "google":
		return "google_id", nil
	case "microsoft":
		return "microsoft_id", nil
	}
	return "", fmt.Errorf("unknown identity provider %q", provider)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
