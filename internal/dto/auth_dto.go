package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=120"`
	LastName  string `json:"last_name" validate:"max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	Id              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Plan            string    `json:"plan"`
	UsageCount      int       `json:"usage_count"`
	Credits         int       `json:"credits"`
	ReservedCredits int       `json:"reserved_credits"`
	CreatedAt       time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token              string       `json:"token"`
	User               UserResponse `json:"user"`
	OnboardingComplete bool         `json:"onboarding_complete"`
	Redirect           string       `json:"redirect"`
}

// SessionResponse tells the client where a visitor belongs.
type SessionResponse struct {
	Authenticated      bool       `json:"authenticated"`
	UserID             *uuid.UUID `json:"user_id,omitempty"`
	Email              string     `json:"email,omitempty"`
	OnboardingComplete bool       `json:"onboarding_complete"`
	Redirect           string     `json:"redirect"`
}

// OAuthProfile is the subset of the provider's userinfo we keep.
type OAuthProfile struct {
	ProviderUserID string
	Email          string
	FirstName      string
	LastName       string
	AvatarURL      string
}
