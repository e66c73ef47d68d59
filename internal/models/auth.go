package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued access token and the stored user.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        *User     `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// RequestMeta describes the caller of a mutating request for audit purposes.
type RequestMeta struct {
	ActorID   string
	IP        string
	UserAgent string
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	UserType UserType `json:"user_type"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	jwt.RegisteredClaims
}

// ExternalIdentity is the normalised profile returned by a federated login provider.
type ExternalIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Avatar        string
}
