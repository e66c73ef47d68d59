package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.AssignedComplaint) error
	ListByAgent(ctx context.Context, agentID string) ([]models.AssignedComplaint, error)
}

type complaintBatchFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Complaint, error)
}

// AssignmentService links complaints to agents and builds the agent work list.
type AssignmentService struct {
	repo       assignmentRepository
	complaints complaintBatchFinder
	audit      *AuditService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, complaints complaintBatchFinder, audit *AuditService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, complaints: complaints, audit: audit, metrics: metrics, validator: validate, logger: logger}
}

// Assign records an assignment as supplied by the caller. Neither the agent nor the complaint is
// checked, and assigning the same complaint again adds another record.
func (s *AssignmentService) Assign(ctx context.Context, req dto.AssignComplaintRequest, meta models.RequestMeta) (*models.AssignedComplaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment := &models.AssignedComplaint{
		ComplaintID: req.ComplaintID,
		AgentID:     req.AgentID,
		AgentName:   req.AgentName,
		Status:      req.Status,
	}
	if assignment.Status == "" {
		assignment.Status = models.StatusPending
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign complaint")
	}

	s.metrics.AssignmentCreated()
	s.audit.Record(ctx, meta, models.AuditActionAssign, "complaint", assignment.ComplaintID, map[string]string{"agentId": assignment.AgentID})
	return assignment, nil
}

// AgentComplaints returns the joined view of every assignment held by agentID. An agent without
// assignments gets an empty list.
func (s *AssignmentService) AgentComplaints(ctx context.Context, agentID string) ([]models.AgentComplaint, error) {
	assignments, err := s.repo.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if len(assignments) == 0 {
		return []models.AgentComplaint{}, nil
	}

	ids := make([]string, 0, len(assignments))
	seen := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		if _, ok := seen[a.ComplaintID]; ok {
			continue
		}
		seen[a.ComplaintID] = struct{}{}
		ids = append(ids, a.ComplaintID)
	}

	complaints, err := s.complaints.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assigned complaints")
	}
	return MergeAgentComplaints(assignments, complaints), nil
}
