package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

func newExportFixture() *ExportService {
	store := &mockComplaintStore{complaints: sampleComplaints()}
	for i := range store.complaints {
		store.complaints[i].CreatedAt = time.Date(2024, time.January, i+1, 0, 0, 0, 0, time.UTC)
	}
	complaints := NewComplaintService(store, &mockUserRepo{}, nil, nil, nil, zap.NewNop())
	svc := NewExportService(complaints, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.February, 1, 10, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceCSV(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.Export(context.Background(), dto.ExportFormatCSV, models.ComplaintFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, "complaints_20240201_103000.csv", file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")

	records, err := csv.NewReader(strings.NewReader(string(file.Content))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeaders, records[0])
	assert.Equal(t, []string{"Water", "Pune", "MH", "pending", "High", "urgent leak", "2024-01-01"}, records[1])
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.Export(context.Background(), dto.ExportFormatPDF, models.ComplaintFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
}

func TestExportServiceDefaultsAndErrors(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.Export(context.Background(), "", models.ComplaintFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	_, err = svc.Export(context.Background(), "xlsx", models.ComplaintFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}
