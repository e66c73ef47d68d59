package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/pkg/jobs"
)

const auditJobType = "audit_log"

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type auditQueue interface {
	TryEnqueue(job jobs.Job) error
}

// AuditService records audit trail entries. With a queue attached the write happens on a
// background worker, otherwise inline. Failures are logged and never fail the request.
type AuditService struct {
	store   auditStore
	queue   auditQueue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService constructs an AuditService. store may be nil to disable auditing.
func NewAuditService(store auditStore, metrics *MetricsService, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{store: store, metrics: metrics, logger: logger}
}

// AttachQueue routes future records through q.
func (s *AuditService) AttachQueue(q auditQueue) {
	if s != nil {
		s.queue = q
	}
}

// Handle is the jobs.Handler that persists a queued entry.
func (s *AuditService) Handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	return s.store.CreateAuditLog(ctx, entry)
}

// Record stores an audit entry for action on resource.
func (s *AuditService) Record(ctx context.Context, meta models.RequestMeta, action, resource, resourceID string, newValues interface{}) {
	if s == nil || s.store == nil {
		return
	}

	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if meta.ActorID != "" {
		actor := meta.ActorID
		entry.UserID = &actor
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if newValues != nil {
		payload, err := json.Marshal(newValues)
		if err != nil {
			s.logger.Warn("failed to encode audit values", zap.String("action", action), zap.Error(err))
		} else {
			entry.NewValues = payload
		}
	}

	if s.queue != nil {
		if err := s.queue.TryEnqueue(jobs.Job{Type: auditJobType, Payload: entry}); err != nil {
			s.metrics.AuditDropped()
			s.logger.Warn("failed to queue audit log", zap.String("action", action), zap.Error(err))
		}
		return
	}

	if err := s.store.CreateAuditLog(ctx, entry); err != nil {
		s.metrics.AuditDropped()
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
