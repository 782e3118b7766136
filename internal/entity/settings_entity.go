package entity

import (
	"time"

	"gen8n-be/pkg/credit"

	"github.com/google/uuid"
)

// Settings holds provider choices and the user's own API keys.
type Settings struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	MainProvider       credit.Provider
	FallbackProvider   credit.Provider
	APIKeys            map[credit.Provider]string
	KeyNames           map[credit.Provider]string
	UseOwnAPIKeys      bool
	OnboardingComplete bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewSettings(userID uuid.UUID) *Settings {
	return &Settings{
		Id:       uuid.New(),
		UserId:   userID,
		APIKeys:  map[credit.Provider]string{},
		KeyNames: map[credit.Provider]string{},
	}
}

// KeySettings projects the fields the eligibility resolver reads.
func (s *Settings) KeySettings() credit.KeySettings {
	if s == nil {
		return credit.KeySettings{}
	}
	return credit.KeySettings{
		UseOwnAPIKeys:    s.UseOwnAPIKeys,
		MainProvider:     s.MainProvider,
		FallbackProvider: s.FallbackProvider,
		Keys:             s.APIKeys,
	}
}

type Profile struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	CompanyOrProject string
	UsageIntent      string
	MarketingSource  string
	N8nBaseURL       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
