package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/export"
)

var exportHeaders = []string{"Name", "City", "State", "Status", "Priority", "Comment", "Date"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

type filteredComplaintLister interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, *models.Pagination, error)
}

// ExportService renders complaint listings as downloadable files.
type ExportService struct {
	complaints filteredComplaintLister
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export defaults.
func NewExportService(complaints filteredComplaintLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{complaints: complaints, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export renders the complaints matching filter in format. Pagination in filter is honoured.
func (s *ExportService) Export(ctx context.Context, format dto.ExportFormat, filter models.ComplaintFilter) (*dto.ExportFile, error) {
	if format == "" {
		format = dto.ExportFormatCSV
	}
	if format != dto.ExportFormatCSV && format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	complaints, _, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	dataset := BuildComplaintDataset(complaints)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case dto.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Complaints")
		contentType = s.pdf.ContentType()
	default:
		payload, err = s.csv.Render(dataset)
		contentType = s.csv.ContentType()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Debug("complaint export rendered", zap.String("format", string(format)), zap.Int("rows", len(complaints)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("complaints_%s.%s", s.now().UTC().Format("20060102_150405"), format),
		ContentType: contentType,
		Content:     payload,
	}, nil
}

// BuildComplaintDataset lays out complaints as export rows.
func BuildComplaintDataset(complaints []models.Complaint) export.Dataset {
	rows := make([]map[string]string, 0, len(complaints))
	for _, c := range complaints {
		rows = append(rows, map[string]string{
			"Name":     c.Name,
			"City":     c.City,
			"State":    c.State,
			"Status":   string(c.Status),
			"Priority": string(ClassifyPriority(c.Comment)),
			"Comment":  c.Comment,
			"Date":     c.CreatedAt.Format("2006-01-02"),
		})
	}
	return export.Dataset{
		Headers: exportHeaders,
		Rows:    rows,
		Widths:  []float64{2, 1.5, 1.5, 1.2, 1, 4, 1.3},
	}
}
