// Package onboarding implements the first-run wizard as a pure state machine.
// The Wizard value is serializable so it can be persisted between requests and
// resumed at the saved step.
package onboarding

import (
	"errors"
	"fmt"
	"strings"

	"gen8n-be/pkg/credit"
)

type Step int

const (
	StepAccount Step = iota + 1
	StepBillingChoice
	StepAPIKeySetup
	StepProfile
	StepMarketingSource
	StepConfirm
)

const (
	FirstStep = StepAccount
	LastStep  = StepConfirm
)

var stepNames = map[Step]string{
	StepAccount:         "account",
	StepBillingChoice:   "billing_choice",
	StepAPIKeySetup:     "api_key_setup",
	StepProfile:         "profile",
	StepMarketingSource: "marketing_source",
	StepConfirm:         "confirm",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

var (
	ErrInvalidStep    = errors.New("invalid onboarding step")
	ErrStepIncomplete = errors.New("current step is not complete")
	ErrStepLocked     = errors.New("earlier steps must be completed first")
	ErrStepSkipped    = errors.New("api key setup is skipped when paying with credits")
	ErrAtFirstStep    = errors.New("already at the first step")
	ErrAtLastStep     = errors.New("already at the last step")
)

const MarketingSourceOther = "Other"

var UsageIntents = []string{
	"Solo Developer",
	"Startup",
	"Enterprise",
	"Learning / Exploration",
	"Client Work",
}

var MarketingSources = []string{
	"YouTube",
	"LinkedIn",
	"Instagram",
	"TikTok",
	"AI Discords/Communities",
	"Google",
	MarketingSourceOther,
}

// Data is everything the wizard collects.
type Data struct {
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	Email            string            `json:"email"`
	CompanyOrProject string            `json:"company_or_project"`
	UsageIntent      string            `json:"usage_intent"`
	N8nBaseURL       string            `json:"n8n_base_url"`
	UseOwnAPIKeys    *bool             `json:"use_own_api_keys"`
	MainProvider     credit.Provider   `json:"main_provider"`
	FallbackProvider credit.Provider   `json:"fallback_provider"`
	APIKeys          map[string]string `json:"api_keys"`
	MarketingSource  string            `json:"marketing_source"`
	OtherSource      string            `json:"other_source"`
	Consent          bool              `json:"consent"`
}

// Wizard is the persisted wizard state.
type Wizard struct {
	Step Step `json:"step"`
	Data Data `json:"data"`
}

func New() *Wizard {
	return &Wizard{Step: FirstStep, Data: Data{APIKeys: map[string]string{}}}
}

// PaysWithOwnKeys reports whether the billing decision was recorded as own keys.
func (w *Wizard) PaysWithOwnKeys() bool {
	return w.Data.UseOwnAPIKeys != nil && *w.Data.UseOwnAPIKeys
}

func (w *Wizard) paysWithCredits() bool {
	return w.Data.UseOwnAPIKeys != nil && !*w.Data.UseOwnAPIKeys
}

// IsStepComplete evaluates the completion predicate of a single step.
func (w *Wizard) IsStepComplete(step Step) bool {
	d := w.Data
	switch step {
	case StepAccount:
		return strings.Contains(strings.TrimSpace(d.Email), "@")
	case StepBillingChoice:
		return d.UseOwnAPIKeys != nil
	case StepAPIKeySetup:
		if w.paysWithCredits() {
			return true
		}
		if !w.PaysWithOwnKeys() {
			return false
		}
		return w.keySetupError() == nil
	case StepProfile:
		return strings.TrimSpace(d.UsageIntent) != ""
	case StepMarketingSource:
		source := strings.TrimSpace(d.MarketingSource)
		if source == "" {
			return false
		}
		if source == MarketingSourceOther {
			return strings.TrimSpace(d.OtherSource) != ""
		}
		return true
	case StepConfirm:
		return d.Consent
	}
	return false
}

func (w *Wizard) keySetupError() error {
	d := w.Data
	if !d.MainProvider.Valid() {
		return errors.New("main provider is required")
	}
	if !d.FallbackProvider.Valid() {
		return errors.New("fallback provider is required")
	}
	if d.MainProvider == d.FallbackProvider {
		return errors.New("main and fallback providers must be different")
	}
	for _, p := range []credit.Provider{d.MainProvider, d.FallbackProvider} {
		if err := credit.ValidateKeyFormat(p, d.APIKeys[p.String()]); err != nil {
			return err
		}
	}
	return nil
}

// StepError explains why a step is incomplete, or returns nil.
func (w *Wizard) StepError(step Step) error {
	if w.IsStepComplete(step) {
		return nil
	}
	if step == StepAPIKeySetup && w.PaysWithOwnKeys() {
		return w.keySetupError()
	}
	return fmt.Errorf("%s is incomplete", step)
}

// CanJumpToStep holds exactly when every earlier step is complete.
func (w *Wizard) CanJumpToStep(target Step) bool {
	if !target.Valid() {
		return false
	}
	for s := FirstStep; s < target; s++ {
		if !w.IsStepComplete(s) {
			return false
		}
	}
	return true
}

// IsComplete reports whether the whole wizard can be submitted.
func (w *Wizard) IsComplete() bool {
	return w.CanJumpToStep(LastStep) && w.IsStepComplete(LastStep)
}

// Next advances past the current step once it is complete.
func (w *Wizard) Next() error {
	if w.Step >= LastStep {
		return ErrAtLastStep
	}
	if !w.IsStepComplete(w.Step) {
		return fmt.Errorf("%w: %v", ErrStepIncomplete, w.StepError(w.Step))
	}
	next := w.Step + 1
	if next == StepAPIKeySetup && !w.PaysWithOwnKeys() {
		next++
	}
	w.Step = next
	return nil
}

// Back returns to the previous applicable step.
func (w *Wizard) Back() error {
	if w.Step <= FirstStep {
		return ErrAtFirstStep
	}
	prev := w.Step - 1
	if prev == StepAPIKeySetup && !w.PaysWithOwnKeys() {
		prev--
	}
	w.Step = prev
	return nil
}

// JumpTo moves to target. Going back is always allowed. Going forward requires
// every earlier step to be complete.
func (w *Wizard) JumpTo(target Step) error {
	if !target.Valid() {
		return ErrInvalidStep
	}
	if target == StepAPIKeySetup && w.paysWithCredits() {
		return ErrStepSkipped
	}
	if target <= w.Step {
		w.Step = target
		return nil
	}
	if !w.CanJumpToStep(target) {
		return ErrStepLocked
	}
	w.Step = target
	return nil
}

// MarketingSourceValue is the stored form of the marketing source.
func (w *Wizard) MarketingSourceValue() string {
	source := strings.TrimSpace(w.Data.MarketingSource)
	if source == MarketingSourceOther {
		return fmt.Sprintf("%s: %s", MarketingSourceOther, strings.TrimSpace(w.Data.OtherSource))
	}
	return source
}

// Normalize keeps the step inside the valid range and off the skipped step.
// It is applied to state read back from storage.
func (w *Wizard) Normalize() {
	if w.Data.APIKeys == nil {
		w.Data.APIKeys = map[string]string{}
	}
	if !w.Step.Valid() {
		w.Step = FirstStep
	}
	if w.Step == StepAPIKeySetup && w.paysWithCredits() {
		w.Step = StepProfile
	}
}
