package service

import (
	"strings"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

const (
	unknownPlaceholder   = "Unknown"
	noCommentPlaceholder = "No comment"
	defaultPageSize      = 10
	maxPageSize          = 100
)

var (
	highPriorityWords   = []string{"urgent", "emergency", "critical"}
	mediumPriorityWords = []string{"important", "soon"}
)

// ClassifyPriority derives a priority label from free text by keyword matching.
func ClassifyPriority(text string) models.Priority {
	lower := strings.ToLower(text)
	if containsAny(lower, highPriorityWords) {
		return models.PriorityHigh
	}
	if containsAny(lower, mediumPriorityWords) {
		return models.PriorityMedium
	}
	return models.PriorityLow
}

// FilterComplaints returns the complaints matching every non-empty criterion of filter, preserving order.
// Search is a case-insensitive substring match over name, comment, city and state.
func FilterComplaints(complaints []models.Complaint, filter models.ComplaintFilter) []models.Complaint {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && ClassifyPriority(c.Comment) != filter.Priority {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Paginate slices complaints for filter.Page (1-based). Without a page the input is returned whole.
func Paginate(complaints []models.Complaint, filter models.ComplaintFilter) ([]models.Complaint, *models.Pagination) {
	if !filter.Paginated() {
		return complaints, nil
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: size, TotalCount: len(complaints)}

	pages := (len(complaints) + size - 1) / size
	if filter.Page-1 >= pages {
		return []models.Complaint{}, pagination
	}
	start := (filter.Page - 1) * size
	end := start + size
	if end > len(complaints) {
		end = len(complaints)
	}
	return complaints[start:end], pagination
}

// MergeAgentComplaints joins each assignment with its complaint by id. Assignments whose complaint is
// missing keep their own fields and get placeholder details. Output order follows assignments.
func MergeAgentComplaints(assignments []models.AssignedComplaint, complaints []models.Complaint) []models.AgentComplaint {
	byID := make(map[string]*models.Complaint, len(complaints))
	for i := range complaints {
		byID[complaints[i].ID] = &complaints[i]
	}

	out := make([]models.AgentComplaint, 0, len(assignments))
	for _, a := range assignments {
		view := models.AgentComplaint{
			ComplaintID: a.ComplaintID,
			AgentID:     a.AgentID,
			Status:      a.Status,
			CreatedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
		}
		if view.Status == "" {
			view.Status = models.StatusPending
		}

		var detail models.Complaint
		if c, ok := byID[a.ComplaintID]; ok {
			detail = *c
		}
		view.Name = orDefault(detail.Name, unknownPlaceholder)
		view.City = orDefault(detail.City, unknownPlaceholder)
		view.State = orDefault(detail.State, unknownPlaceholder)
		view.Address = orDefault(detail.Address, unknownPlaceholder)
		view.Pincode = orDefault(detail.Pincode, unknownPlaceholder)
		view.Comment = orDefault(detail.Comment, noCommentPlaceholder)
		out = append(out, view)
	}
	return out
}

func matchesSearch(c models.Complaint, search string) bool {
	for _, field := range []string{c.Name, c.Comment, c.City, c.State} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
