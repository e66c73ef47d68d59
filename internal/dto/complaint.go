package dto

import (
	"time"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

// CreateComplaintRequest is the body of a complaint submission. No field is mandatory.
type CreateComplaintRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Comment string `json:"comment"`
}

// AssignComplaintRequest is supplied wholesale by the admin client.
type AssignComplaintRequest struct {
	ComplaintID string                 `json:"complaintId"`
	AgentID     string                 `json:"agentId"`
	AgentName   string                 `json:"agentName"`
	Status      models.ComplaintStatus `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
}

// UpdateStatusRequest changes the status of a complaint and its assignments.
type UpdateStatusRequest struct {
	Status models.ComplaintStatus `json:"status"`
}

// ComplaintStats mirrors the counters shown on the admin dashboard.
type ComplaintStats struct {
	TotalComplaints      int                `json:"totalComplaints"`
	PendingComplaints    int                `json:"pendingComplaints"`
	InProgressComplaints int                `json:"inProgressComplaints"`
	CompletedComplaints  int                `json:"completedComplaints"`
	CriticalComplaints   int                `json:"criticalComplaints"`
	TotalUsers           int                `json:"totalUsers"`
	TotalAgents          int                `json:"totalAgents"`
	NewUsersThisMonth    int                `json:"newUsersThisMonth"`
	RecentComplaints     []models.Complaint `json:"recentComplaints"`
	GeneratedAt          time.Time          `json:"generatedAt"`
}

// ExportFormat selects the rendering of a complaint export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
