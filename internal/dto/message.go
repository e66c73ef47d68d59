package dto

// CreateMessageRequest posts a chat message on a complaint thread.
type CreateMessageRequest struct {
	Name        string `json:"name"`
	Message     string `json:"message"`
	ComplaintID string `json:"complaintId"`
}
