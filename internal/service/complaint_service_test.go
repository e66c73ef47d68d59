package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

// mockComplaintStore keeps complaints and assignments in insertion order.
type mockComplaintStore struct {
	complaints  []models.Complaint
	assignments []models.AssignedComplaint
	err         error
}

func (m *mockComplaintStore) Create(ctx context.Context, complaint *models.Complaint) error {
	if m.err != nil {
		return m.err
	}
	complaint.ID = fmt.Sprintf("c%d", len(m.complaints)+1)
	m.complaints = append(m.complaints, *complaint)
	return nil
}

func (m *mockComplaintStore) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	out := []models.Complaint{}
	for _, c := range m.complaints {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, m.err
}

func (m *mockComplaintStore) List(ctx context.Context) ([]models.Complaint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Complaint{}, m.complaints...), nil
}

func (m *mockComplaintStore) FindByIDs(ctx context.Context, ids []string) ([]models.Complaint, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Complaint{}
	for _, c := range m.complaints {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *mockComplaintStore) UpdateStatus(ctx context.Context, complaintID string, status models.ComplaintStatus) (*models.Complaint, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var updated *models.Complaint
	for i := range m.complaints {
		if m.complaints[i].ID == complaintID {
			m.complaints[i].Status = status
			c := m.complaints[i]
			updated = &c
		}
	}
	var count int64
	for i := range m.assignments {
		if m.assignments[i].ComplaintID == complaintID {
			m.assignments[i].Status = status
			count++
		}
	}
	return updated, count, nil
}

func newComplaintFixture() (*ComplaintService, *mockComplaintStore, *mockAuditStore) {
	users := &mockUserRepo{users: map[string]*models.User{"u1": {ID: "u1"}}}
	store := &mockComplaintStore{}
	audit := &mockAuditStore{}
	svc := NewComplaintService(store, users, nil, NewAuditService(audit, nil, zap.NewNop()), NewMetricsService(), zap.NewNop())
	return svc, store, audit
}

func TestComplaintServiceCreate(t *testing.T) {
	svc, store, _ := newComplaintFixture()

	complaint, err := svc.Create(context.Background(), "u1", dto.CreateComplaintRequest{City: "X", Comment: "urgent issue"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, complaint.Status)
	assert.Equal(t, "u1", complaint.UserID)
	assert.Equal(t, "X", complaint.City)
	assert.Len(t, store.complaints, 1)
}

func TestComplaintServiceCreateUnknownUser(t *testing.T) {
	svc, store, _ := newComplaintFixture()

	_, err := svc.Create(context.Background(), "ghost", dto.CreateComplaintRequest{City: "X"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
	assert.Empty(t, store.complaints)
}

func TestComplaintServiceCreateStoreFailure(t *testing.T) {
	svc, store, _ := newComplaintFixture()
	store.err = errors.New("insert failed")

	_, err := svc.Create(context.Background(), "u1", dto.CreateComplaintRequest{})
	assert.Equal(t, appErrors.ErrInternal.Status, appErrors.FromError(err).Status)
}

func TestComplaintServiceListByUser(t *testing.T) {
	svc, store, _ := newComplaintFixture()
	store.complaints = []models.Complaint{{ID: "c1", UserID: "u1"}, {ID: "c2", UserID: "u2"}}

	complaints, err := svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, "c1", complaints[0].ID)

	_, err = svc.ListByUser(context.Background(), "ghost")
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestComplaintServiceListFilters(t *testing.T) {
	svc, store, _ := newComplaintFixture()
	store.complaints = sampleComplaints()

	all, pagination, err := svc.List(context.Background(), models.ComplaintFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Nil(t, pagination)

	page, pagination, err := svc.List(context.Background(), models.ComplaintFilter{Search: "mh", Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestComplaintServiceUpdateStatus(t *testing.T) {
	svc, store, audit := newComplaintFixture()
	store.complaints = []models.Complaint{{ID: "c1", Status: models.StatusPending}}
	store.assignments = []models.AssignedComplaint{{ComplaintID: "c1", Status: models.StatusPending}, {ComplaintID: "c1"}}

	updated, err := svc.UpdateStatus(context.Background(), "c1", dto.UpdateStatusRequest{Status: models.StatusCompleted}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	for _, a := range store.assignments {
		assert.Equal(t, models.StatusCompleted, a.Status)
	}
	assert.Equal(t, []string{models.AuditActionStatusUpdate}, audit.actions())

	again, err := svc.UpdateStatus(context.Background(), "c1", dto.UpdateStatusRequest{Status: models.StatusCompleted}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, updated.Status, again.Status)
}

func TestComplaintServiceUpdateStatusAssignmentOnly(t *testing.T) {
	svc, store, _ := newComplaintFixture()
	store.assignments = []models.AssignedComplaint{{ComplaintID: "orphan"}}

	updated, err := svc.UpdateStatus(context.Background(), "orphan", dto.UpdateStatusRequest{Status: models.StatusInProgress}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, models.StatusInProgress, store.assignments[0].Status)
}

func TestComplaintServiceUpdateStatusErrors(t *testing.T) {
	svc, _, _ := newComplaintFixture()

	cases := []struct {
		name   string
		id     string
		status models.ComplaintStatus
		want   int
	}{
		{name: "missing status", id: "c1", want: appErrors.ErrValidation.Status},
		{name: "missing id", status: models.StatusCompleted, want: appErrors.ErrValidation.Status},
		{name: "unknown status", id: "c1", status: "archived", want: appErrors.ErrValidation.Status},
		{name: "nothing matched", id: "ghost", status: models.StatusCompleted, want: appErrors.ErrNotFound.Status},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(context.Background(), tc.id, dto.UpdateStatusRequest{Status: tc.status}, models.RequestMeta{})
			require.Error(t, err)
			assert.Equal(t, tc.want, appErrors.FromError(err).Status)
		})
	}
}
