package dto

import "gen8n-be/pkg/onboarding"

type OnboardingStateResponse struct {
	Step               int              `json:"step"`
	StepName           string           `json:"step_name"`
	Data               *onboarding.Data `json:"data,omitempty"`
	CompletedSteps     []int            `json:"completed_steps"`
	ReachableSteps     []int            `json:"reachable_steps"`
	SkipsAPIKeySetup   bool             `json:"skips_api_key_setup"`
	CanComplete        bool             `json:"can_complete"`
	OnboardingComplete bool             `json:"onboarding_complete"`
	Redirect           string           `json:"redirect,omitempty"`
}

// OnboardingPatchRequest merges into the stored wizard data. Nil fields are
// left alone.
type OnboardingPatchRequest struct {
	FirstName        *string           `json:"first_name" validate:"omitempty,max=120"`
	LastName         *string           `json:"last_name" validate:"omitempty,max=120"`
	Email            *string           `json:"email" validate:"omitempty,email"`
	CompanyOrProject *string           `json:"company_or_project" validate:"omitempty,max=255"`
	UsageIntent      *string           `json:"usage_intent" validate:"omitempty,max=120"`
	N8nBaseURL       *string           `json:"n8n_base_url" validate:"omitempty,url"`
	UseOwnAPIKeys    *bool             `json:"use_own_api_keys"`
	MainProvider     *string           `json:"main_provider"`
	FallbackProvider *string           `json:"fallback_provider"`
	APIKeys          map[string]string `json:"api_keys"`
	MarketingSource  *string           `json:"marketing_source" validate:"omitempty,max=255"`
	OtherSource      *string           `json:"other_source" validate:"omitempty,max=255"`
	Consent          *bool             `json:"consent"`
}

type OnboardingJumpRequest struct {
	Step int `json:"step" validate:"required,min=1,max=6"`
}

type OnboardingCompleteResponse struct {
	OnboardingComplete bool   `json:"onboarding_complete"`
	UseOwnAPIKeys      bool   `json:"use_own_api_keys"`
	WelcomeBonus       int    `json:"welcome_bonus"`
	Redirect           string `json:"redirect"`
}
