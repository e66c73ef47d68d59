package models

import "time"

// ComplaintStatus is the lifecycle state shared by complaints and their assignments.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in-progress"
	StatusCompleted  ComplaintStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Complaint is a user-submitted issue with location fields and a free-text description.
type Complaint struct {
	ID        string          `db:"id" bson:"_id" json:"_id"`
	UserID    string          `db:"user_id" bson:"userId" json:"userId"`
	Name      string          `db:"name" bson:"name" json:"name"`
	Address   string          `db:"address" bson:"address" json:"address"`
	City      string          `db:"city" bson:"city" json:"city"`
	State     string          `db:"state" bson:"state" json:"state"`
	Pincode   string          `db:"pincode" bson:"pincode" json:"pincode"`
	Comment   string          `db:"comment" bson:"comment" json:"comment"`
	Status    ComplaintStatus `db:"status" bson:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" bson:"updatedAt" json:"updatedAt"`
}

// Priority is a derived label inferred from complaint text. It is never stored.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ComplaintFilter narrows an already-fetched complaint list.
type ComplaintFilter struct {
	Search   string
	Status   ComplaintStatus
	Priority Priority
	Page     int
	PageSize int
}

// Paginated reports whether the caller asked for a page slice.
func (f ComplaintFilter) Paginated() bool {
	return f.Page > 0
}
