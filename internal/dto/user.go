package dto

import "github.com/noah-isme/complaint-desk-api/internal/models"

// SignUpRequest creates a credential or agent account.
type SignUpRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required"`
	Phone    string          `json:"phone"`
	UserType models.UserType `json:"userType" validate:"omitempty,oneof=Ordinary Admin Agent"`
}

// UpdateProfileRequest updates the mutable profile fields of a user.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}
