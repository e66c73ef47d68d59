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

// MongoMessageRepository stores chat messages in the document store.
type MongoMessageRepository struct {
	messages *mongo.Collection
	timeout  time.Duration
}

// NewMongoMessageRepository constructs a document-store message repository.
func NewMongoMessageRepository(db *mongo.Database, timeout time.Duration) *MongoMessageRepository {
	return &MongoMessageRepository{messages: db.Collection(CollectionMessages), timeout: timeout}
}

// Create appends a message.
func (r *MongoMessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.messages.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListByComplaint returns the thread of a complaint, newest first.
func (r *MongoMessageRepository) ListByComplaint(ctx context.Context, complaintID string) ([]models.Message, error) {
	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.messages.Find(ctx, bson.M{"complaintId": complaintID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

// MongoAuditRepository writes audit trail entries to the auditlogs collection.
type MongoAuditRepository struct {
	logs    *mongo.Collection
	timeout time.Duration
}

// NewMongoAuditRepository constructs a document-store audit repository.
func NewMongoAuditRepository(db *mongo.Database, timeout time.Duration) *MongoAuditRepository {
	return &MongoAuditRepository{logs: db.Collection(CollectionAuditLogs), timeout: timeout}
}

// CreateAuditLog stores an audit log entry.
func (r *MongoAuditRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.logs.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
