package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type fakeComplaintService struct {
	created    dto.CreateComplaintRequest
	createdFor string
	filter     models.ComplaintFilter
	list       []models.Complaint
	pagination *models.Pagination
	updated    *models.Complaint
	err        error
}

func (f *fakeComplaintService) Create(ctx context.Context, userID string, req dto.CreateComplaintRequest) (*models.Complaint, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	f.createdFor = userID
	return &models.Complaint{ID: "c1", UserID: userID, Name: req.Name, Status: models.StatusPending}, nil
}

func (f *fakeComplaintService) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeComplaintService) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, *models.Pagination, error) {
	f.filter = filter
	return f.list, f.pagination, nil
}

func (f *fakeComplaintService) UpdateStatus(ctx context.Context, complaintID string, req dto.UpdateStatusRequest, meta models.RequestMeta) (*models.Complaint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.updated, nil
}

type fakeStatsService struct {
	stats *dto.ComplaintStats
	hit   bool
}

func (f *fakeStatsService) Stats(ctx context.Context) (*dto.ComplaintStats, bool, error) {
	return f.stats, f.hit, nil
}

type fakeExportService struct {
	format dto.ExportFormat
	filter models.ComplaintFilter
}

func (f *fakeExportService) Export(ctx context.Context, format dto.ExportFormat, filter models.ComplaintFilter) (*dto.ExportFile, error) {
	if format != "" && format != dto.ExportFormatCSV && format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	f.format = format
	f.filter = filter
	return &dto.ExportFile{Filename: "complaints_20240101_000000.csv", ContentType: "text/csv", Content: []byte("Name\nWater leak\n")}, nil
}

func TestComplaintHandlerCreate(t *testing.T) {
	svc := &fakeComplaintService{}
	h := NewComplaintHandler(svc, nil, nil)

	c, rec := newContext(http.MethodPost, "/Complaint/u1", dto.CreateComplaintRequest{Name: "Water leak", City: "Pune"})
	c.AddParam("id", "u1")
	h.Create(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", svc.createdFor)
	assert.Equal(t, "Pune", svc.created.City)
	var complaint models.Complaint
	decodeData(t, rec, &complaint)
	assert.Equal(t, models.StatusPending, complaint.Status)
}

func TestComplaintHandlerCreateEmptyBody(t *testing.T) {
	svc := &fakeComplaintService{}
	h := NewComplaintHandler(svc, nil, nil)

	c, rec := newContext(http.MethodPost, "/Complaint/u1", nil)
	c.AddParam("id", "u1")
	h.Create(c)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "u1", svc.createdFor)
	assert.Equal(t, dto.CreateComplaintRequest{}, svc.created)

	c, rec = newContext(http.MethodPost, "/Complaint/u1", "{")
	c.AddParam("id", "u1")
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComplaintHandlerCreateUnknownUser(t *testing.T) {
	h := NewComplaintHandler(&fakeComplaintService{err: appErrors.Clone(appErrors.ErrNotFound, "user not found")}, nil, nil)

	c, rec := newContext(http.MethodPost, "/Complaint/ghost", dto.CreateComplaintRequest{Name: "x"})
	c.AddParam("id", "ghost")
	h.Create(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplaintHandlerListFilters(t *testing.T) {
	svc := &fakeComplaintService{
		list:       []models.Complaint{{ID: "c1"}},
		pagination: &models.Pagination{Page: 2, PageSize: 1, TotalCount: 3},
	}
	h := NewComplaintHandler(svc, nil, nil)

	c, rec := newContext(http.MethodGet, "/status?search=pune&status=in-progress&priority=high&page=2&page_size=1", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ComplaintFilter{
		Search:   "pune",
		Status:   models.StatusInProgress,
		Priority: models.PriorityHigh,
		Page:     2,
		PageSize: 1,
	}, svc.filter)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 3, envelope.Pagination.TotalCount)
}

func TestComplaintHandlerListWithoutQuery(t *testing.T) {
	svc := &fakeComplaintService{list: []models.Complaint{{ID: "c1"}, {ID: "c2"}}}
	h := NewComplaintHandler(svc, nil, nil)

	c, rec := newContext(http.MethodGet, "/status", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ComplaintFilter{}, svc.filter)
	envelope := decodeEnvelope(t, rec)
	assert.Nil(t, envelope.Pagination)
}

func TestComplaintHandlerListRejectsBadQuery(t *testing.T) {
	cases := map[string]string{
		"status":    "/status?status=closed",
		"priority":  "/status?priority=urgent",
		"page":      "/status?page=0",
		"page_size": "/status?page=1&page_size=abc",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewComplaintHandler(&fakeComplaintService{}, nil, nil)
			c, rec := newContext(http.MethodGet, target, nil)
			h.List(c)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			envelope := decodeEnvelope(t, rec)
			require.NotNil(t, envelope.Error)
			assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
		})
	}
}

func TestComplaintHandlerUpdateStatus(t *testing.T) {
	svc := &fakeComplaintService{updated: &models.Complaint{ID: "c1", Status: models.StatusCompleted}}
	h := NewComplaintHandler(svc, nil, nil)

	c, rec := newContext(http.MethodPut, "/complaint/c1", dto.UpdateStatusRequest{Status: models.StatusCompleted})
	c.AddParam("complaintId", "c1")
	h.UpdateStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var complaint models.Complaint
	decodeData(t, rec, &complaint)
	assert.Equal(t, models.StatusCompleted, complaint.Status)
}

func TestComplaintHandlerUpdateStatusAssignmentsOnly(t *testing.T) {
	h := NewComplaintHandler(&fakeComplaintService{}, nil, nil)

	c, rec := newContext(http.MethodPut, "/complaint/c9", dto.UpdateStatusRequest{Status: models.StatusInProgress})
	c.AddParam("complaintId", "c9")
	h.UpdateStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeData(t, rec, &body)
	assert.Equal(t, map[string]string{"_id": "c9", "status": "in-progress"}, body)
}

func TestComplaintHandlerUpdateStatusNotFound(t *testing.T) {
	h := NewComplaintHandler(&fakeComplaintService{err: appErrors.Clone(appErrors.ErrNotFound, "complaint not found")}, nil, nil)

	c, rec := newContext(http.MethodPut, "/complaint/missing", dto.UpdateStatusRequest{Status: models.StatusCompleted})
	c.AddParam("complaintId", "missing")
	h.UpdateStatus(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplaintHandlerStats(t *testing.T) {
	stats := &fakeStatsService{stats: &dto.ComplaintStats{TotalComplaints: 3, PendingComplaints: 1}, hit: true}
	h := NewComplaintHandler(&fakeComplaintService{}, stats, nil)

	c, rec := newContext(http.MethodGet, "/complaints/stats", nil)
	h.Stats(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	var body dto.ComplaintStats
	decodeData(t, rec, &body)
	assert.Equal(t, 3, body.TotalComplaints)
}

func TestComplaintHandlerExport(t *testing.T) {
	export := &fakeExportService{}
	h := NewComplaintHandler(&fakeComplaintService{}, nil, export)

	c, rec := newContext(http.MethodGet, "/complaints/export?format=CSV&status=pending", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ExportFormatCSV, export.format)
	assert.Equal(t, models.StatusPending, export.filter.Status)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="complaints_20240101_000000.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name\nWater leak\n", rec.Body.String())
}

func TestComplaintHandlerExportUnknownFormat(t *testing.T) {
	h := NewComplaintHandler(&fakeComplaintService{}, nil, &fakeExportService{})

	c, rec := newContext(http.MethodGet, "/complaints/export?format=xlsx", nil)
	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
