package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/middleware"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

type complaintService interface {
	Create(ctx context.Context, userID string, req dto.CreateComplaintRequest) (*models.Complaint, error)
	ListByUser(ctx context.Context, userID string) ([]models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, *models.Pagination, error)
	UpdateStatus(ctx context.Context, complaintID string, req dto.UpdateStatusRequest, meta models.RequestMeta) (*models.Complaint, error)
}

type statsService interface {
	Stats(ctx context.Context) (*dto.ComplaintStats, bool, error)
}

type exportService interface {
	Export(ctx context.Context, format dto.ExportFormat, filter models.ComplaintFilter) (*dto.ExportFile, error)
}

// ComplaintHandler exposes complaint submission, listing, status and reporting endpoints.
type ComplaintHandler struct {
	service complaintService
	stats   statsService
	export  exportService
}

// NewComplaintHandler constructs a complaint handler.
func NewComplaintHandler(svc complaintService, stats statsService, export exportService) *ComplaintHandler {
	return &ComplaintHandler{service: svc, stats: stats, export: export}
}

// Create godoc
// @Summary Submit complaint
// @Description An empty body stores an empty pending complaint.
// @Tags Complaints
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param payload body dto.CreateComplaintRequest true "Complaint"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /Complaint/{id} [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req dto.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid complaint payload"))
		return
	}

	complaint, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// ListByUser godoc
// @Summary List complaints of a user
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /status/{id} [get]
func (h *ComplaintHandler) ListByUser(c *gin.Context) {
	complaints, err := h.service.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, nil)
}

// List godoc
// @Summary List all complaints
// @Description Without query parameters the whole collection is returned.
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of name, comment, city or state"
// @Param status query string false "pending, in-progress or completed"
// @Param priority query string false "High, Medium or Low"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /status [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	filter, err := parseComplaintFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	complaints, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, pagination)
}

// UpdateStatus godoc
// @Summary Update complaint status
// @Description Sets the status on the complaint and on every assignment of it.
// @Tags Complaints
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param complaintId path string true "Complaint ID"
// @Param payload body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /complaint/{complaintId} [put]
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	complaintID := c.Param("complaintId")
	complaint, err := h.service.UpdateStatus(c.Request.Context(), complaintID, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if complaint == nil {
		response.JSON(c, http.StatusOK, gin.H{"_id": complaintID, "status": req.Status}, nil)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Stats godoc
// @Summary Dashboard statistics
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /complaints/stats [get]
func (h *ComplaintHandler) Stats(c *gin.Context) {
	stats, hit, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export complaints
// @Description Accepts the same filters as GET /status.
// @Tags Complaints
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /complaints/export [get]
func (h *ComplaintHandler) Export(c *gin.Context) {
	filter, err := parseComplaintFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.export.Export(c.Request.Context(), dto.ExportFormat(strings.ToLower(c.Query("format"))), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func parseComplaintFilter(c *gin.Context) (models.ComplaintFilter, error) {
	filter := models.ComplaintFilter{
		Search: c.Query("search"),
		Status: models.ComplaintStatus(c.Query("status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}

	if raw := c.Query("priority"); raw != "" {
		switch strings.ToLower(raw) {
		case "high":
			filter.Priority = models.PriorityHigh
		case "medium":
			filter.Priority = models.PriorityMedium
		case "low":
			filter.Priority = models.PriorityLow
		default:
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown priority filter")
		}
	}

	var err error
	if filter.Page, err = positiveQuery(c, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = positiveQuery(c, "page_size"); err != nil {
		return filter, err
	}
	return filter, nil
}

func positiveQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a positive integer", key))
	}
	return value, nil
}
