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
)

const complaintColumns = `id, user_id, name, address, city, state, pincode, comment, status, created_at, updated_at`

// ComplaintRepository manages complaint persistence on Postgres.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs a complaint repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a complaint and fills its id and timestamps.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	const query = `INSERT INTO complaints (id, user_id, name, address, city, state, pincode, comment, status, created_at, updated_at)
VALUES (:id, :user_id, :name, :address, :city, :state, :pincode, :comment, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// ListByUser returns all complaints filed by a user.
func (r *ComplaintRepository) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE user_id = $1 ORDER BY created_at ASC`
	complaints := []models.Complaint{}
	if err := r.db.SelectContext(ctx, &complaints, query, userID); err != nil {
		return nil, fmt.Errorf("list complaints by user: %w", err)
	}
	return complaints, nil
}

// List returns every complaint in insertion order.
func (r *ComplaintRepository) List(ctx context.Context) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints ORDER BY created_at ASC`
	complaints := []models.Complaint{}
	if err := r.db.SelectContext(ctx, &complaints, query); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, nil
}

// FindByIDs returns the complaints whose id is in ids. Unknown ids are skipped.
func (r *ComplaintRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Complaint, error) {
	complaints := []models.Complaint{}
	if len(ids) == 0 {
		return complaints, nil
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &complaints, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find complaints by ids: %w", err)
	}
	return complaints, nil
}

// UpdateStatus sets the status on the complaint and on every assignment that references it, in one
// transaction. The returned complaint is nil when no complaint row matched.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, complaintID string, status models.ComplaintStatus) (complaint *models.Complaint, assignments int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin status update transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	var updated models.Complaint
	query := `UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + complaintColumns
	switch err = tx.GetContext(ctx, &updated, query, complaintID, status, now); {
	case err == nil:
		complaint = &updated
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	default:
		return nil, 0, fmt.Errorf("update complaint status: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE assigned_complaints SET status = $2, updated_at = $3 WHERE complaint_id = $1`, complaintID, status, now)
	if err != nil {
		return nil, 0, fmt.Errorf("update assignment status: %w", err)
	}
	if assignments, err = res.RowsAffected(); err != nil {
		return nil, 0, fmt.Errorf("update assignment status rows affected: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit status update: %w", err)
	}
	return complaint, assignments, nil
}
