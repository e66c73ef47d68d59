package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names used by the document store backend.
const (
	CollectionUsers       = "users"
	CollectionComplaints  = "complaints"
	CollectionAssignments = "assignedcomplaints"
	CollectionMessages    = "messages"
	CollectionAuditLogs   = "auditlogs"
)

const defaultMongoTimeout = 10 * time.Second

// EnsureMongoIndexes creates the indexes the document store relies on, most importantly the unique email index.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userType", Value: 1}}},
		},
		CollectionComplaints: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		CollectionAssignments: {
			{Keys: bson.D{{Key: "agentId", Value: 1}}},
			{Keys: bson.D{{Key: "complaintId", Value: 1}}},
		},
		CollectionMessages: {
			{Keys: bson.D{{Key: "complaintId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for collection, specs := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// PingMongo checks that the primary is reachable.
func PingMongo(ctx context.Context, db *mongo.Database) error {
	return db.Client().Ping(ctx, readpref.Primary())
}

func mongoTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultMongoTimeout
	}
	return context.WithTimeout(ctx, d)
}
