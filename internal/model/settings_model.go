package model

import (
	"time"

	"github.com/google/uuid"
)

type Settings struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	MainProvider       *string   `gorm:"type:varchar(20)"`
	FallbackProvider   *string   `gorm:"type:varchar(20)"`
	AnthropicKey       *string   `gorm:"type:text"`
	AnthropicKeyName   *string   `gorm:"type:varchar(120)"`
	OpenaiKey          *string   `gorm:"type:text"`
	OpenaiKeyName      *string   `gorm:"type:varchar(120)"`
	OpenrouterKey      *string   `gorm:"type:text"`
	OpenrouterKeyName  *string   `gorm:"type:varchar(120)"`
	GoogleKey          *string   `gorm:"type:text"`
	GoogleKeyName      *string   `gorm:"type:varchar(120)"`
	UseOwnApiKeys      bool      `gorm:"column:use_own_api_keys;not null;default:false"`
	OnboardingComplete bool      `gorm:"not null;default:false"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (Settings) TableName() string {
	return "settings"
}

type Profile struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CompanyOrProject string    `gorm:"type:varchar(255)"`
	UsageIntent      string    `gorm:"type:varchar(120)"`
	MarketingSource  string    `gorm:"type:varchar(255)"`
	N8nBaseURL       string    `gorm:"column:n8n_base_url;type:text"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profile"
}
