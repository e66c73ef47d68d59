package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByType(ctx context.Context, userType models.UserType) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.UserProfileUpdate) (*models.User, error)
	DeleteWithComplaints(ctx context.Context, id string) (int64, error)
}

// UserService handles agent and ordinary user administration.
type UserService struct {
	repo      userRepository
	cache     *CacheService
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, cache *CacheService, audit *AuditService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, cache: cache, audit: audit, validator: validate, logger: logger}
}

// ListAgents returns every agent account. An empty result is reported as not found.
func (s *UserService) ListAgents(ctx context.Context) ([]models.User, error) {
	return s.listByType(ctx, models.UserTypeAgent, "no agents found")
}

// ListOrdinary returns every ordinary account. An empty result is reported as not found.
func (s *UserService) ListOrdinary(ctx context.Context) ([]models.User, error) {
	return s.listByType(ctx, models.UserTypeOrdinary, "no users found")
}

func (s *UserService) listByType(ctx context.Context, userType models.UserType, emptyMessage string) ([]models.User, error) {
	users, err := s.repo.ListByType(ctx, userType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	if len(users) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, emptyMessage)
	}
	return users, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrRecordNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// GetAgent returns an agent by ID. Accounts of other types are reported as not found.
func (s *UserService) GetAgent(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.UserType != models.UserTypeAgent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "agent not found")
	}
	return user, nil
}

// UpdateProfile changes name, email and phone. Empty fields keep their stored value.
func (s *UserService) UpdateProfile(ctx context.Context, id string, req dto.UpdateProfileRequest, meta models.RequestMeta) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	update := models.UserProfileUpdate{
		Name:  orDefault(req.Name, current.Name),
		Email: orDefault(req.Email, current.Email),
		Phone: orDefault(req.Phone, current.Phone),
	}
	user, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, appErrors.ErrRecordNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		case errors.Is(err, appErrors.ErrConflict):
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.audit.Record(ctx, meta, models.AuditActionUserUpdate, "user", user.ID, update)
	return user, nil
}

// Delete removes a user together with every complaint it filed. Messages and assignments
// referencing those complaints are kept.
func (s *UserService) Delete(ctx context.Context, id string, meta models.RequestMeta) error {
	removed, err := s.repo.DeleteWithComplaints(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrRecordNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	s.logger.Info("user deleted", zap.String("user_id", id), zap.Int64("complaints_removed", removed))
	s.cache.Invalidate(ctx, complaintCachePattern)
	s.audit.Record(ctx, meta, models.AuditActionUserDelete, "user", id, map[string]int64{"complaintsRemoved": removed})
	return nil
}
