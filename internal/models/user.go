package models

import "time"

// UserType distinguishes the three kinds of accounts.
type UserType string

const (
	UserTypeOrdinary UserType = "Ordinary"
	UserTypeAdmin    UserType = "Admin"
	UserTypeAgent    UserType = "Agent"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeOrdinary, UserTypeAdmin, UserTypeAgent:
		return true
	}
	return false
}

// User represents an account. PasswordHash is empty for social-only accounts.
type User struct {
	ID           string    `db:"id" bson:"_id" json:"_id"`
	Name         string    `db:"name" bson:"name" json:"name"`
	Email        string    `db:"email" bson:"email" json:"email"`
	PasswordHash string    `db:"password_hash" bson:"password,omitempty" json:"-"`
	Phone        string    `db:"phone" bson:"phone,omitempty" json:"phone"`
	UserType     UserType  `db:"user_type" bson:"userType" json:"userType"`
	GoogleID     string    `db:"google_id" bson:"googleId,omitempty" json:"googleId,omitempty"`
	MicrosoftID  string    `db:"microsoft_id" bson:"microsoftId,omitempty" json:"microsoftId,omitempty"`
	Avatar       string    `db:"avatar" bson:"avatar,omitempty" json:"avatar"`
	CreatedAt    time.Time `db:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" bson:"updatedAt" json:"updatedAt"`
}

// HasPassword reports whether the account can use credential login.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// UserProfileUpdate carries the mutable profile fields.
type UserProfileUpdate struct {
	Name  string
	Email string
	Phone string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
