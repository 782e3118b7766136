package dto

type APIKeyView struct {
	Masked string `json:"masked"`
	Name   string `json:"name,omitempty"`
}

type SettingsResponse struct {
	MainProvider       string                `json:"main_provider"`
	FallbackProvider   string                `json:"fallback_provider"`
	UseOwnAPIKeys      bool                  `json:"use_own_api_keys"`
	OnboardingComplete bool                  `json:"onboarding_complete"`
	Keys               map[string]APIKeyView `json:"keys"`
}

// UpdateAPIKeysRequest only touches what is sent. An empty key string is
// ignored; use the delete endpoint to clear one.
type UpdateAPIKeysRequest struct {
	MainProvider     *string           `json:"main_provider"`
	FallbackProvider *string           `json:"fallback_provider"`
	Keys             map[string]string `json:"keys"`
	KeyNames         map[string]string `json:"key_names"`
}
