package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

func TestClassifyPriority(t *testing.T) {
	cases := map[string]models.Priority{
		"urgent issue":               models.PriorityHigh,
		"EMERGENCY: pipe burst":      models.PriorityHigh,
		"critical and important":     models.PriorityHigh,
		"Important, please fix soon": models.PriorityMedium,
		"will need attention soon":   models.PriorityMedium,
		"street light flickers":      models.PriorityLow,
		"":                           models.PriorityLow,
	}
	for text, want := range cases {
		assert.Equal(t, want, ClassifyPriority(text), text)
	}
}

func sampleComplaints() []models.Complaint {
	return []models.Complaint{
		{ID: "c1", Name: "Water", City: "Pune", State: "MH", Comment: "urgent leak", Status: models.StatusPending},
		{ID: "c2", Name: "Road", City: "Delhi", State: "DL", Comment: "pothole needs fixing soon", Status: models.StatusInProgress},
		{ID: "c3", Name: "Noise", City: "Mumbai", State: "MH", Comment: "loud music", Status: models.StatusCompleted},
	}
}

func TestFilterComplaints(t *testing.T) {
	all := sampleComplaints()

	assert.Len(t, FilterComplaints(all, models.ComplaintFilter{}), 3)

	bySearch := FilterComplaints(all, models.ComplaintFilter{Search: "mh"})
	require.Len(t, bySearch, 2)
	assert.Equal(t, "c1", bySearch[0].ID)
	assert.Equal(t, "c3", bySearch[1].ID)

	byStatus := FilterComplaints(all, models.ComplaintFilter{Status: models.StatusInProgress})
	require.Len(t, byStatus, 1)
	assert.Equal(t, "c2", byStatus[0].ID)

	byPriority := FilterComplaints(all, models.ComplaintFilter{Priority: models.PriorityHigh})
	require.Len(t, byPriority, 1)
	assert.Equal(t, "c1", byPriority[0].ID)

	combined := FilterComplaints(all, models.ComplaintFilter{Search: "MH", Priority: models.PriorityLow})
	require.Len(t, combined, 1)
	assert.Equal(t, "c3", combined[0].ID)
}

func TestPaginate(t *testing.T) {
	all := sampleComplaints()

	page, pagination := Paginate(all, models.ComplaintFilter{})
	assert.Len(t, page, 3)
	assert.Nil(t, pagination)

	page, pagination = Paginate(all, models.ComplaintFilter{Page: 2, PageSize: 2})
	require.Len(t, page, 1)
	assert.Equal(t, "c3", page[0].ID)
	assert.Equal(t, &models.Pagination{Page: 2, PageSize: 2, TotalCount: 3}, pagination)

	page, _ = Paginate(all, models.ComplaintFilter{Page: 5, PageSize: 2})
	assert.Empty(t, page)

	_, pagination = Paginate(all, models.ComplaintFilter{Page: 1, PageSize: 1000})
	assert.Equal(t, maxPageSize, pagination.PageSize)

	assert.NotPanics(t, func() {
		page, pagination = Paginate(all, models.ComplaintFilter{Page: math.MaxInt / 10, PageSize: maxPageSize})
	})
	assert.Empty(t, page)
	assert.Equal(t, 3, pagination.TotalCount)
}

func TestMergeAgentComplaints(t *testing.T) {
	now := time.Now()
	assignments := []models.AssignedComplaint{
		{ComplaintID: "c1", AgentID: "a1", Status: models.StatusInProgress, CreatedAt: now},
		{ComplaintID: "gone", AgentID: "a1"},
	}
	complaints := []models.Complaint{
		{ID: "c9", City: "Elsewhere"},
		{ID: "c1", Name: "Water", City: "X", State: "S", Address: "1 Main", Pincode: "123", Comment: "urgent issue"},
	}

	views := MergeAgentComplaints(assignments, complaints)
	require.Len(t, views, 2)

	assert.Equal(t, "c1", views[0].ComplaintID)
	assert.Equal(t, "X", views[0].City)
	assert.Equal(t, models.StatusInProgress, views[0].Status)
	assert.Equal(t, now, views[0].CreatedAt)

	assert.Equal(t, "gone", views[1].ComplaintID)
	assert.Equal(t, models.StatusPending, views[1].Status)
	assert.Equal(t, "Unknown", views[1].Name)
	assert.Equal(t, "Unknown", views[1].City)
	assert.Equal(t, "Unknown", views[1].Pincode)
	assert.Equal(t, "No comment", views[1].Comment)
}

func TestMergeAgentComplaintsEmpty(t *testing.T) {
	views := MergeAgentComplaints(nil, nil)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}
