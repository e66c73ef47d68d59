package models

import "time"

// Message is one chat entry on a complaint thread. Messages are append-only.
type Message struct {
	ID          string    `db:"id" bson:"_id" json:"_id"`
	ComplaintID string    `db:"complaint_id" bson:"complaintId" json:"complaintId"`
	Name        string    `db:"name" bson:"name" json:"name"`
	Message     string    `db:"message" bson:"message" json:"message"`
	CreatedAt   time.Time `db:"created_at" bson:"createdAt" json:"createdAt"`
}
