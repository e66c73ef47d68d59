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
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

// MongoUserRepository stores accounts in the users collection.
type MongoUserRepository struct {
	db      *mongo.Database
	users   *mongo.Collection
	timeout time.Duration
}

// NewMongoUserRepository constructs a document-store user repository.
func NewMongoUserRepository(db *mongo.Database, timeout time.Duration) *MongoUserRepository {
	return &MongoUserRepository{db: db, users: db.Collection(CollectionUsers), timeout: timeout}
}

// FindByEmail returns a user by email address.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "find user by email")
}

// FindByID returns a user by identifier.
func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "find user by id")
}

// FindByProvider looks the subject up first and falls back to the email.
func (r *MongoUserRepository) FindByProvider(ctx context.Context, provider, subject, email string) (*models.User, error) {
	field, err := providerField(provider)
	if err != nil {
		return nil, err
	}
	user, err := r.findOne(ctx, bson.M{field: subject}, "find user by provider")
	if !errors.Is(err, appErrors.ErrRecordNotFound) || email == "" {
		return user, err
	}
	return r.findOne(ctx, bson.M{"email": email}, "find user by provider email")
}

// LinkProvider stores the federated subject on an existing account.
func (r *MongoUserRepository) LinkProvider(ctx context.Context, id, provider, subject string) error {
	field, err := providerField(provider)
	if err != nil {
		return err
	}
	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{field: subject, "updatedAt": time.Now().UTC()}}
	if _, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("link provider: %w", err)
	}
	return nil
}

// ListByType returns every user of the given type, oldest first.
func (r *MongoUserRepository) ListByType(ctx context.Context, userType models.UserType) ([]models.User, error) {
	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.users.Find(ctx, bson.M{"userType": userType}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users by type: %w", err)
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// Create inserts a new user. A duplicate email yields appErrors.ErrConflict.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", appErrors.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateProfile overwrites name, email and phone and returns the stored record.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, update models.UserProfileUpdate) (*models.User, error) {
	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{"$set": bson.M{
		"name":      update.Name,
		"email":     update.Email,
		"phone":     update.Phone,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, set, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrRecordNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("update user: %w", appErrors.ErrConflict)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

// DeleteWithComplaints removes the user and then every complaint filed by it. The two deletes are
// not atomic; repeating the call after a partial failure finishes the cascade only if the user still exists.
func (r *MongoUserRepository) DeleteWithComplaints(ctx context.Context, id string) (int64, error) {
	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return 0, appErrors.ErrRecordNotFound
	}

	complaints, err := r.db.Collection(CollectionComplaints).DeleteMany(ctx, bson.M{"userId": id})
	if err != nil {
		return 0, fmt.Errorf("delete user complaints: %w", err)
	}
	return complaints.DeletedCount, nil
}

// Ping verifies connectivity for readiness probes.
func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return PingMongo(ctx, r.db)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, op string) (*models.User, error) {
	ctx, cancel := mongoTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

func providerField(provider string) (string, error) {
	switch provider {
	case "google":
		return "googleId", nil
	case "microsoft":
		return "microsoftId", nil
	}
	return "", fmt.Errorf("unknown identity provider %q", provider)
}
