// Package credit decides whether a user may generate a workflow and how the
// generation is paid for. Everything here is pure: callers load the balance and
// key settings and act on the returned Decision.
package credit

import (
	"fmt"
	"strings"
)

// Mode is the billing source for a generation.
type Mode string

const (
	ModeOwnKeys Mode = "own_keys"
	ModeCredits Mode = "credits"
)

// Reason is a machine readable code for a denied generation.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonNoMainProvider     Reason = "no_main_provider"
	ReasonNoFallbackProvider Reason = "no_fallback_provider"
	ReasonSameProvider       Reason = "same_provider"
	ReasonMissingAPIKey      Reason = "missing_api_key"
	ReasonCreditsReserved    Reason = "credits_reserved"
	ReasonNoCredits          Reason = "no_credits"
)

// Balance is the user's credit state. Reserved credits are held by in-flight
// generations and cannot be spent.
type Balance struct {
	Credits  int
	Reserved int
}

// Available never goes below zero.
func (b Balance) Available() int {
	if a := b.Credits - b.Reserved; a > 0 {
		return a
	}
	return 0
}

// KeySettings is the subset of user settings the resolver reads.
type KeySettings struct {
	UseOwnAPIKeys    bool
	MainProvider     Provider
	FallbackProvider Provider
	Keys             map[Provider]string
}

func (s KeySettings) key(p Provider) string {
	if s.Keys == nil {
		return ""
	}
	return strings.TrimSpace(s.Keys[p])
}

// Decision is the resolver output.
type Decision struct {
	CanGenerate      bool
	Mode             Mode
	Reason           Reason
	Message          string
	MissingProviders []string
	AvailableCredits int
	MainProvider     Provider
	FallbackProvider Provider
	// Keys holds the main and fallback keys when generating in own-keys mode.
	Keys map[Provider]string
}

// Resolve applies the own-keys rule when the user opted in and the credit rule
// otherwise.
func Resolve(balance Balance, settings KeySettings) Decision {
	if settings.UseOwnAPIKeys {
		return resolveOwnKeys(balance, settings)
	}
	return resolveCredits(balance)
}

func resolveOwnKeys(balance Balance, s KeySettings) Decision {
	d := Decision{
		Mode:             ModeOwnKeys,
		AvailableCredits: balance.Available(),
		MainProvider:     s.MainProvider,
		FallbackProvider: s.FallbackProvider,
		MissingProviders: []string{},
	}

	if s.MainProvider == "" {
		d.MissingProviders = append(d.MissingProviders, "main provider")
	} else if s.key(s.MainProvider) == "" {
		d.MissingProviders = append(d.MissingProviders, fmt.Sprintf("%s (main)", s.MainProvider))
	}
	if s.FallbackProvider == "" {
		d.MissingProviders = append(d.MissingProviders, "fallback provider")
	} else if s.key(s.FallbackProvider) == "" {
		d.MissingProviders = append(d.MissingProviders, fmt.Sprintf("%s (fallback)", s.FallbackProvider))
	}

	switch {
	case s.MainProvider == "":
		d.Reason = ReasonNoMainProvider
		d.Message = "Missing required API keys"
	case s.FallbackProvider == "":
		d.Reason = ReasonNoFallbackProvider
		d.Message = "Missing required API keys"
	case s.MainProvider == s.FallbackProvider:
		d.Reason = ReasonSameProvider
		d.Message = "Main and fallback providers must be different"
	case len(d.MissingProviders) > 0:
		d.Reason = ReasonMissingAPIKey
		d.Message = "Missing required API keys"
	default:
		d.CanGenerate = true
		d.Keys = map[Provider]string{
			s.MainProvider:     s.key(s.MainProvider),
			s.FallbackProvider: s.key(s.FallbackProvider),
		}
	}
	return d
}

func resolveCredits(balance Balance) Decision {
	d := Decision{
		Mode:             ModeCredits,
		AvailableCredits: balance.Available(),
		MissingProviders: []string{},
	}
	switch {
	case balance.Credits-balance.Reserved > 0:
		d.CanGenerate = true
	case balance.Credits > 0:
		d.Reason = ReasonCreditsReserved
		d.Message = "All of your credits are reserved by generations in progress"
	default:
		d.Reason = ReasonNoCredits
		d.Message = "Insufficient available credits"
	}
	return d
}
