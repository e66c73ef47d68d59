package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

type assignmentService interface {
	Assign(ctx context.Context, req dto.AssignComplaintRequest, meta models.RequestMeta) (*models.AssignedComplaint, error)
	AgentComplaints(ctx context.Context, agentID string) ([]models.AgentComplaint, error)
}

// AssignmentHandler exposes complaint assignment endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Assign godoc
// @Summary Assign complaint to agent
// @Tags Assignments
// @Accept json
// @Security BearerAuth
// @Param payload body dto.AssignComplaintRequest true "Assignment"
// @Success 201
// @Failure 400 {object} response.Envelope
// @Router /assignedComplaints [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req dto.AssignComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	if _, err := h.service.Assign(c.Request.Context(), req, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.CreatedEmpty(c)
}

// AgentComplaints godoc
// @Summary Complaints assigned to an agent
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} response.Envelope
// @Router /allcomplaints/{agentId} [get]
func (h *AssignmentHandler) AgentComplaints(c *gin.Context) {
	views, err := h.service.AgentComplaints(c.Request.Context(), c.Param("agentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}
