package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type messageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByComplaint(ctx context.Context, complaintID string) ([]models.Message, error)
}

// MessageBroker pushes newly stored messages to live subscribers.
type MessageBroker interface {
	Publish(ctx context.Context, message *models.Message) error
	Subscribe(ctx context.Context, complaintID string) (<-chan models.Message, error)
}

// MessageService manages complaint chat threads. The stored thread is authoritative; the broker
// only notifies open streams.
type MessageService struct {
	repo    messageRepository
	broker  MessageBroker
	metrics *MetricsService
	logger  *zap.Logger
}

// NewMessageService constructs a MessageService. broker may be nil to disable streaming.
func NewMessageService(repo messageRepository, broker MessageBroker, metrics *MetricsService, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{repo: repo, broker: broker, metrics: metrics, logger: logger}
}

// StreamEnabled reports whether live subscriptions are available.
func (s *MessageService) StreamEnabled() bool {
	return s.broker != nil
}

// Create appends a message to the thread of req.ComplaintID.
func (s *MessageService) Create(ctx context.Context, req dto.CreateMessageRequest) (*models.Message, error) {
	message := &models.Message{
		ComplaintID: req.ComplaintID,
		Name:        req.Name,
		Message:     req.Message,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create message")
	}
	s.metrics.MessageCreated()

	if s.broker != nil {
		if err := s.broker.Publish(ctx, message); err != nil {
			s.logger.Warn("failed to publish chat message", zap.String("complaint_id", message.ComplaintID), zap.Error(err))
		}
	}
	return message, nil
}

// List returns the thread of complaintID, newest first.
func (s *MessageService) List(ctx context.Context, complaintID string) ([]models.Message, error) {
	messages, err := s.repo.ListByComplaint(ctx, complaintID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// Subscribe streams messages created on complaintID after the call until ctx ends.
func (s *MessageService) Subscribe(ctx context.Context, complaintID string) (<-chan models.Message, error) {
	if s.broker == nil {
		return nil, appErrors.Clone(appErrors.ErrNotImplemented, "chat stream is disabled")
	}
	ch, err := s.broker.Subscribe(ctx, complaintID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open chat stream")
	}
	return ch, nil
}
