package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserPlan string

const (
	UserPlanFree    UserPlan = "free"
	UserPlanStarter UserPlan = "starter"
	UserPlanPro     UserPlan = "pro"
	UserPlanPower   UserPlan = "power"
)

type User struct {
	Id              uuid.UUID
	Email           string
	PasswordHash    *string
	FirstName       string
	LastName        string
	Plan            UserPlan
	UsageCount      int
	Credits         int
	ReservedCredits int
	IsAdmin         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AvailableCredits is credits minus reserved, floored at zero.
func (u *User) AvailableCredits() int {
	if a := u.Credits - u.ReservedCredits; a > 0 {
		return a
	}
	return 0
}

// UserProvider links a user to an external OAuth identity.
type UserProvider struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ProviderName   string
	ProviderUserId string
	AvatarURL      string
	CreatedAt      time.Time
}
