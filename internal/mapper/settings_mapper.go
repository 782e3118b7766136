package mapper

import (
	"gen8n-be/internal/entity"
	"gen8n-be/internal/model"
	"gen8n-be/pkg/credit"
)

type SettingsMapper struct{}

func NewSettingsMapper() *SettingsMapper {
	return &SettingsMapper{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// keyColumns binds each provider to its key and key-name columns.
func keyColumns(s *model.Settings) map[credit.Provider][2]**string {
	return map[credit.Provider][2]**string{
		credit.ProviderAnthropic:  {&s.AnthropicKey, &s.AnthropicKeyName},
		credit.ProviderOpenAI:     {&s.OpenaiKey, &s.OpenaiKeyName},
		credit.ProviderOpenRouter: {&s.OpenrouterKey, &s.OpenrouterKeyName},
		credit.ProviderGoogle:     {&s.GoogleKey, &s.GoogleKeyName},
	}
}

func (m *SettingsMapper) ToEntity(s *model.Settings) *entity.Settings {
	if s == nil {
		return nil
	}
	e := &entity.Settings{
		Id:                 s.Id,
		UserId:             s.UserId,
		MainProvider:       credit.Provider(deref(s.MainProvider)),
		FallbackProvider:   credit.Provider(deref(s.FallbackProvider)),
		APIKeys:            map[credit.Provider]string{},
		KeyNames:           map[credit.Provider]string{},
		UseOwnAPIKeys:      s.UseOwnApiKeys,
		OnboardingComplete: s.OnboardingComplete,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	for p, cols := range keyColumns(s) {
		if key := deref(*cols[0]); key != "" {
			e.APIKeys[p] = key
		}
		if name := deref(*cols[1]); name != "" {
			e.KeyNames[p] = name
		}
	}
	return e
}

func (m *SettingsMapper) ToModel(e *entity.Settings) *model.Settings {
	if e == nil {
		return nil
	}
	s := &model.Settings{
		Id:                 e.Id,
		UserId:             e.UserId,
		MainProvider:       nullable(string(e.MainProvider)),
		FallbackProvider:   nullable(string(e.FallbackProvider)),
		UseOwnApiKeys:      e.UseOwnAPIKeys,
		OnboardingComplete: e.OnboardingComplete,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	for p, cols := range keyColumns(s) {
		*cols[0] = nullable(e.APIKeys[p])
		*cols[1] = nullable(e.KeyNames[p])
	}
	return s
}

func (m *SettingsMapper) ProfileToEntity(p *model.Profile) *entity.Profile {
	if p == nil {
		return nil
	}
	return &entity.Profile{
		Id:               p.Id,
		UserId:           p.UserId,
		CompanyOrProject: p.CompanyOrProject,
		UsageIntent:      p.UsageIntent,
		MarketingSource:  p.MarketingSource,
		N8nBaseURL:       p.N8nBaseURL,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (m *SettingsMapper) ProfileToModel(p *entity.Profile) *model.Profile {
	if p == nil {
		return nil
	}
	return &model.Profile{
		Id:               p.Id,
		UserId:           p.UserId,
		CompanyOrProject: p.CompanyOrProject,
		UsageIntent:      p.UsageIntent,
		MarketingSource:  p.MarketingSource,
		N8nBaseURL:       p.N8nBaseURL,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
