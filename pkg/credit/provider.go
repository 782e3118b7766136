package credit

import (
	"fmt"
	"regexp"
	"strings"
)

// Provider identifies an LLM vendor whose key can drive workflow generation.
type Provider string

const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGoogle     Provider = "google"
)

// Providers lists every supported provider in display order.
var Providers = []Provider{ProviderAnthropic, ProviderOpenAI, ProviderOpenRouter, ProviderGoogle}

var keyPatterns = map[Provider]*regexp.Regexp{
	ProviderAnthropic:  regexp.MustCompile(`^sk-ant-`),
	ProviderOpenAI:     regexp.MustCompile(`^sk-`),
	ProviderOpenRouter: regexp.MustCompile(`^sk-or-`),
	ProviderGoogle:     regexp.MustCompile(`^AIza`),
}

const minKeyLength = 10

func (p Provider) String() string {
	return string(p)
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	_, ok := keyPatterns[p]
	return ok
}

// ParseProvider normalizes s into a Provider. The empty string parses to the
// empty provider, meaning "not selected".
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return "", nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("unsupported provider %q", s)
	}
	return p, nil
}

// ValidateKeyFormat checks the vendor prefix and a minimal length.
func ValidateKeyFormat(p Provider, key string) error {
	pattern, ok := keyPatterns[p]
	if !ok {
		return fmt.Errorf("unsupported provider %q", p)
	}
	key = strings.TrimSpace(key)
	if len(key) <= minKeyLength {
		return fmt.Errorf("%s key is too short", p)
	}
	if !pattern.MatchString(key) {
		return fmt.Errorf("%s key has an unexpected format", p)
	}
	return nil
}

// MaskKey keeps the vendor prefix and the last four characters.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("•", len(key))
	}
	prefix := key[:3]
	if i := strings.Index(key[3:], "-"); i >= 0 && i < 8 {
		prefix = key[:3+i+1]
	}
	return prefix + "…" + key[len(key)-4:]
}
