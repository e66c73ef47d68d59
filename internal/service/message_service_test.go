package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type mockMessageRepo struct {
	messages []models.Message
	err      error
}

func (m *mockMessageRepo) Create(ctx context.Context, message *models.Message) error {
	if m.err != nil {
		return m.err
	}
	message.CreatedAt = time.Now()
	m.messages = append(m.messages, *message)
	return nil
}

func (m *mockMessageRepo) ListByComplaint(ctx context.Context, complaintID string) ([]models.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Message{}
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].ComplaintID == complaintID {
			out = append(out, m.messages[i])
		}
	}
	return out, nil
}

type mockBroker struct {
	published  []models.Message
	publishErr error
	stream     chan models.Message
}

func (m *mockBroker) Publish(ctx context.Context, message *models.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, *message)
	return nil
}

func (m *mockBroker) Subscribe(ctx context.Context, complaintID string) (<-chan models.Message, error) {
	if m.stream == nil {
		return nil, errors.New("no stream")
	}
	return m.stream, nil
}

func TestMessageServiceCreateAndList(t *testing.T) {
	repo := &mockMessageRepo{}
	broker := &mockBroker{}
	svc := NewMessageService(repo, broker, nil, zap.NewNop())

	for _, text := range []string{"first", "second"} {
		_, err := svc.Create(context.Background(), dto.CreateMessageRequest{Name: "A", Message: text, ComplaintID: "c1"})
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), dto.CreateMessageRequest{Name: "B", Message: "other", ComplaintID: "c2"})
	require.NoError(t, err)

	thread, err := svc.List(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "second", thread[0].Message)
	assert.Equal(t, "first", thread[1].Message)
	assert.Len(t, broker.published, 3)
}

func TestMessageServicePublishFailureIsNotFatal(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := NewMessageService(repo, &mockBroker{publishErr: errors.New("redis down")}, nil, zap.NewNop())

	message, err := svc.Create(context.Background(), dto.CreateMessageRequest{Message: "hi", ComplaintID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "hi", message.Message)
	assert.Len(t, repo.messages, 1)
}

func TestMessageServiceStoreFailure(t *testing.T) {
	svc := NewMessageService(&mockMessageRepo{err: errors.New("down")}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateMessageRequest{ComplaintID: "c1"})
	assert.Equal(t, appErrors.ErrInternal.Status, appErrors.FromError(err).Status)

	_, err = svc.List(context.Background(), "c1")
	assert.Equal(t, appErrors.ErrInternal.Status, appErrors.FromError(err).Status)
}

func TestMessageServiceSubscribe(t *testing.T) {
	disabled := NewMessageService(&mockMessageRepo{}, nil, nil, zap.NewNop())
	assert.False(t, disabled.StreamEnabled())
	_, err := disabled.Subscribe(context.Background(), "c1")
	assert.Equal(t, http.StatusNotImplemented, appErrors.FromError(err).Status)

	stream := make(chan models.Message, 1)
	svc := NewMessageService(&mockMessageRepo{}, &mockBroker{stream: stream}, nil, zap.NewNop())
	assert.True(t, svc.StreamEnabled())

	ch, err := svc.Subscribe(context.Background(), "c1")
	require.NoError(t, err)
	stream <- models.Message{Message: "live"}
	assert.Equal(t, "live", (<-ch).Message)

	broken := NewMessageService(&mockMessageRepo{}, &mockBroker{}, nil, zap.NewNop())
	_, err = broken.Subscribe(context.Background(), "c1")
	assert.Equal(t, appErrors.ErrInternal.Status, appErrors.FromError(err).Status)
}
