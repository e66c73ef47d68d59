package models

import "time"

// AssignedComplaint links a complaint to the agent responsible for it.
// Re-assigning a complaint inserts another record; nothing enforces uniqueness.
type AssignedComplaint struct {
	ID          string          `db:"id" bson:"_id" json:"_id"`
	ComplaintID string          `db:"complaint_id" bson:"complaintId" json:"complaintId"`
	AgentID     string          `db:"agent_id" bson:"agentId" json:"agentId"`
	AgentName   string          `db:"agent_name" bson:"agentName" json:"agentName"`
	Status      ComplaintStatus `db:"status" bson:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" bson:"updatedAt" json:"updatedAt"`
}

// AgentComplaint is the flat join of an assignment with its complaint details.
type AgentComplaint struct {
	ComplaintID string          `json:"complaintId"`
	AgentID     string          `json:"agentId"`
	Status      ComplaintStatus `json:"status"`
	Name        string          `json:"name"`
	City        string          `json:"city"`
	State       string          `json:"state"`
	Address     string          `json:"address"`
	Pincode     string          `json:"pincode"`
	Comment     string          `json:"comment"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
