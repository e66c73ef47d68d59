package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	ListByUser(ctx context.Context, userID string) ([]models.Complaint, error)
	List(ctx context.Context) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, complaintID string, status models.ComplaintStatus) (*models.Complaint, int64, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ComplaintService handles complaint submission, retrieval and status changes.
type ComplaintService struct {
	repo    complaintRepository
	users   userFinder
	cache   *CacheService
	audit   *AuditService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewComplaintService constructs a ComplaintService.
func NewComplaintService(repo complaintRepository, users userFinder, cache *CacheService, audit *AuditService, metrics *MetricsService, logger *zap.Logger) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{repo: repo, users: users, cache: cache, audit: audit, metrics: metrics, logger: logger}
}

// Create stores a new pending complaint for userID. The user must exist; the complaint fields are
// stored as given.
func (s *ComplaintService) Create(ctx context.Context, userID string, req dto.CreateComplaintRequest) (*models.Complaint, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		UserID:  userID,
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
		Comment: req.Comment,
		Status:  models.StatusPending,
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}

	s.metrics.ComplaintCreated()
	s.cache.Invalidate(ctx, complaintCachePattern)
	return complaint, nil
}

// ListByUser returns the complaints filed by userID.
func (s *ComplaintService) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	complaints, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return complaints, nil
}

// List returns every complaint matching filter. Pagination is nil unless filter asks for a page.
func (s *ComplaintService) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, *models.Pagination, error) {
	complaints, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	page, pagination := Paginate(FilterComplaints(complaints, filter), filter)
	return page, pagination, nil
}

// UpdateStatus sets the status on the complaint and on every assignment of it. It fails with not
// found only when neither record exists. Repeating the same update is safe.
func (s *ComplaintService) UpdateStatus(ctx context.Context, complaintID string, req dto.UpdateStatusRequest, meta models.RequestMeta) (*models.Complaint, error) {
	if complaintID == "" || req.Status == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "complaint id and status are required")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}

	complaint, assignments, err := s.repo.UpdateStatus(ctx, complaintID, req.Status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update complaint status")
	}
	if complaint == nil && assignments == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}
	if complaint == nil {
		s.logger.Warn("status updated on assignments of a missing complaint", zap.String("complaint_id", complaintID), zap.Int64("assignments", assignments))
	}

	s.metrics.StatusUpdated(string(req.Status))
	s.cache.Invalidate(ctx, complaintCachePattern)
	s.audit.Record(ctx, meta, models.AuditActionStatusUpdate, "complaint", complaintID, map[string]interface{}{"status": req.Status, "assignments": assignments})
	return complaint, nil
}

func (s *ComplaintService) ensureUser(ctx context.Context, userID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, appErrors.ErrRecordNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return nil
}
