package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

// AssignmentRepository stores complaint-to-agent assignments on Postgres.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts an assignment. Duplicate pairs are allowed.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.AssignedComplaint) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	const query = `INSERT INTO assigned_complaints (id, complaint_id, agent_id, agent_name, status, created_at, updated_at)
VALUES (:id, :complaint_id, :agent_id, :agent_name, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// ListByAgent returns the assignments held by an agent, oldest first.
func (r *AssignmentRepository) ListByAgent(ctx context.Context, agentID string) ([]models.AssignedComplaint, error) {
	const query = `SELECT id, complaint_id, agent_id, agent_name, status, created_at, updated_at FROM assigned_complaints WHERE agent_id = $1 ORDER BY created_at ASC`
	assignments := []models.AssignedComplaint{}
	if err := r.db.SelectContext(ctx, &assignments, query, agentID); err != nil {
		return nil, fmt.Errorf("list assignments by agent: %w", err)
	}
	return assignments, nil
}
