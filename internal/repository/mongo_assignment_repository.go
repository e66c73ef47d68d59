package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

// MongoAssignmentRepository stores assignments in the document store.
type MongoAssignmentRepository struct {
	assignments *mongo.Collection
	timeout     time.Duration
}

// NewMongoAssignmentRepository constructs a document-store assignment repository.
func NewMongoAssignmentRepository(db *mongo.Database, timeout time.Duration) *MongoAssignmentRepository {
	return &MongoAssignmentRepository{assignments: db.Collection(CollectionAssignments), timeout: timeout}
}

// Create inserts an assignment. Duplicate pairs are allowed.
func (r *MongoAssignmentRepository) Create(ctx context.Context, assignment *models.AssignedComplaint) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.assignments.InsertOne(ctx, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// ListByAgent returns the assignments held by an agent, oldest first.
func (r *MongoAssignmentRepository) ListByAgent(ctx context.Context, agentID string) ([]models.AssignedComplaint, error) {
	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.assignments.Find(ctx, bson.M{"agentId": agentID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list assignments by agent: %w", err)
	}
	assignments := []models.AssignedComplaint{}
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("decode assignments: %w", err)
	}
	return assignments, nil
}
