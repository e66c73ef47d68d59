package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/pkg/jobs"
)

type rejectingQueue struct{}

func (rejectingQueue) TryEnqueue(job jobs.Job) error { return jobs.ErrQueueFull }

func TestAuditServiceRecordInline(t *testing.T) {
	store := &mockAuditStore{}
	svc := NewAuditService(store, nil, zap.NewNop())

	svc.Record(context.Background(), models.RequestMeta{ActorID: "admin", IP: "10.0.0.1", UserAgent: "test"}, models.AuditActionAssign, "complaint", "c1", map[string]string{"agentId": "a1"})

	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	assert.Equal(t, "admin", *entry.UserID)
	assert.Equal(t, "c1", *entry.ResourceID)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
	assert.JSONEq(t, `{"agentId":"a1"}`, string(entry.NewValues))
}

func TestAuditServiceRecordWithoutActor(t *testing.T) {
	store := &mockAuditStore{}
	svc := NewAuditService(store, nil, zap.NewNop())

	svc.Record(context.Background(), models.RequestMeta{}, models.AuditActionLogout, "auth", "", nil)

	require.Len(t, store.logs, 1)
	assert.Nil(t, store.logs[0].UserID)
	assert.Nil(t, store.logs[0].ResourceID)
	assert.Nil(t, store.logs[0].NewValues)
}

func TestAuditServiceRecordThroughQueue(t *testing.T) {
	store := &mockAuditStore{}
	svc := NewAuditService(store, nil, zap.NewNop())
	queue := jobs.NewQueue("audit", svc.Handle, jobs.QueueConfig{Workers: 2, BufferSize: 8, DrainTimeout: time.Second})
	svc.AttachQueue(queue)
	queue.Start(context.Background())

	for i := 0; i < 5; i++ {
		svc.Record(context.Background(), models.RequestMeta{}, models.AuditActionLogin, "auth", "u1", nil)
	}
	queue.Stop()

	assert.Len(t, store.logs, 5)
}

func TestAuditServiceDroppedEntries(t *testing.T) {
	metrics := NewMetricsService()
	store := &mockAuditStore{}
	svc := NewAuditService(store, metrics, zap.NewNop())
	svc.AttachQueue(rejectingQueue{})

	svc.Record(context.Background(), models.RequestMeta{}, models.AuditActionLogin, "auth", "u1", nil)
	assert.Empty(t, store.logs)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.auditDropped))

	failing := NewAuditService(&mockAuditStore{err: errors.New("down")}, metrics, zap.NewNop())
	failing.Record(context.Background(), models.RequestMeta{}, models.AuditActionLogin, "auth", "u1", nil)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.auditDropped))
}

func TestAuditServiceNilIsNoop(t *testing.T) {
	var svc *AuditService
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), models.RequestMeta{}, models.AuditActionLogin, "auth", "u1", nil)
		svc.AttachQueue(rejectingQueue{})
	})
}

func TestAuditServiceHandleRejectsUnknownPayload(t *testing.T) {
	svc := NewAuditService(&mockAuditStore{}, nil, zap.NewNop())
	assert.Error(t, svc.Handle(context.Background(), jobs.Job{Payload: "bogus"}))
}
