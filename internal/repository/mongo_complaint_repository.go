package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

// MongoComplaintRepository stores complaints in the document store.
type MongoComplaintRepository struct {
	complaints  *mongo.Collection
	assignments *mongo.Collection
	timeout     time.Duration
}

// NewMongoComplaintRepository constructs a document-store complaint repository.
func NewMongoComplaintRepository(db *mongo.Database, timeout time.Duration) *MongoComplaintRepository {
	return &MongoComplaintRepository{
		complaints:  db.Collection(CollectionComplaints),
		assignments: db.Collection(CollectionAssignments),
		timeout:     timeout,
	}
}

// Create inserts a complaint and fills its id and timestamps.
func (r *MongoComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.complaints.InsertOne(ctx, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// ListByUser returns all complaints filed by a user.
func (r *MongoComplaintRepository) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	return r.find(ctx, bson.M{"userId": userID}, "list complaints by user")
}

// List returns every complaint in insertion order.
func (r *MongoComplaintRepository) List(ctx context.Context) ([]models.Complaint, error) {
	return r.find(ctx, bson.M{}, "list complaints")
}

// FindByIDs returns the complaints whose id is in ids. Unknown ids are skipped.
func (r *MongoComplaintRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Complaint, error) {
	if len(ids) == 0 {
		return []models.Complaint{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, "find complaints by ids")
}

// UpdateStatus sets the status on the complaint and then on every assignment that references it.
// The writes are separate; both are plain $set operations, so retrying the same update converges.
func (r *MongoComplaintRepository) UpdateStatus(ctx context.Context, complaintID string, status models.ComplaintStatus) (*models.Complaint, int64, error) {
	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}

	var complaint *models.Complaint
	var updated models.Complaint
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.complaints.FindOneAndUpdate(ctx, bson.M{"_id": complaintID}, set, opts).Decode(&updated)
	switch {
	case err == nil:
		complaint = &updated
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		return nil, 0, fmt.Errorf("update complaint status: %w", err)
	}

	res, err := r.assignments.UpdateMany(ctx, bson.M{"complaintId": complaintID}, set)
	if err != nil {
		return nil, 0, fmt.Errorf("update assignment status: %w", err)
	}
	return complaint, res.MatchedCount, nil
}

func (r *MongoComplaintRepository) find(ctx context.Context, filter bson.M, op string) ([]models.Complaint, error) {
	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.complaints.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	complaints := []models.Complaint{}
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return complaints, nil
}
