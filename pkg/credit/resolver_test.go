package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCreditMode(t *testing.T) {
	tests := []struct {
		name          string
		balance       Balance
		wantGenerate  bool
		wantReason    Reason
		wantAvailable int
	}{
		{name: "plenty of credits", balance: Balance{Credits: 10}, wantGenerate: true, wantAvailable: 10},
		{name: "one credit left", balance: Balance{Credits: 3, Reserved: 2}, wantGenerate: true, wantAvailable: 1},
		{name: "everything reserved", balance: Balance{Credits: 3, Reserved: 3}, wantReason: ReasonCreditsReserved},
		{name: "empty balance", balance: Balance{}, wantReason: ReasonNoCredits},
		{name: "negative balance", balance: Balance{Credits: -1}, wantReason: ReasonNoCredits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tt.balance, KeySettings{})

			assert.Equal(t, ModeCredits, d.Mode)
			assert.Equal(t, tt.wantGenerate, d.CanGenerate)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, tt.wantAvailable, d.AvailableCredits)
			assert.Nil(t, d.Keys)
		})
	}
}

func TestResolveCreditModeMatchesAvailability(t *testing.T) {
	for credits := -2; credits <= 6; credits++ {
		for reserved := 0; reserved <= 6; reserved++ {
			d := Resolve(Balance{Credits: credits, Reserved: reserved}, KeySettings{})
			assert.Equal(t, credits-reserved > 0, d.CanGenerate, "credits=%d reserved=%d", credits, reserved)
		}
	}
}

func TestResolveReservedIsNotReportedAsEmpty(t *testing.T) {
	d := Resolve(Balance{Credits: 3, Reserved: 3}, KeySettings{})

	require.False(t, d.CanGenerate)
	assert.Equal(t, ReasonCreditsReserved, d.Reason)
	assert.NotEqual(t, ReasonNoCredits, d.Reason)
	assert.Equal(t, 0, d.AvailableCredits)
}

func TestResolveOwnKeysExhaustive(t *testing.T) {
	choices := append([]Provider{""}, Providers...)
	keySets := []map[Provider]string{
		nil,
		{ProviderAnthropic: "sk-ant-aaaaaaaaaaaa"},
		{ProviderOpenAI: "sk-bbbbbbbbbbbb", ProviderGoogle: "AIzacccccccccc"},
		{
			ProviderAnthropic:  "sk-ant-aaaaaaaaaaaa",
			ProviderOpenAI:     "sk-bbbbbbbbbbbb",
			ProviderOpenRouter: "   ",
			ProviderGoogle:     "AIzacccccccccc",
		},
	}

	for _, main := range choices {
		for _, fallback := range choices {
			for _, keys := range keySets {
				s := KeySettings{UseOwnAPIKeys: true, MainProvider: main, FallbackProvider: fallback, Keys: keys}
				d := Resolve(Balance{Credits: 100}, s)

				want := main != "" && fallback != "" && main != fallback &&
					s.key(main) != "" && s.key(fallback) != ""

				assert.Equal(t, want, d.CanGenerate, "main=%q fallback=%q keys=%v", main, fallback, keys)
				assert.Equal(t, ModeOwnKeys, d.Mode)
				if want {
					assert.Equal(t, ReasonNone, d.Reason)
					assert.Len(t, d.Keys, 2)
					assert.Empty(t, d.MissingProviders)
				} else {
					assert.NotEqual(t, ReasonNone, d.Reason)
					assert.Nil(t, d.Keys)
				}
			}
		}
	}
}

func TestResolveOwnKeysIgnoresCredits(t *testing.T) {
	s := KeySettings{
		UseOwnAPIKeys:    true,
		MainProvider:     ProviderAnthropic,
		FallbackProvider: ProviderOpenAI,
		Keys: map[Provider]string{
			ProviderAnthropic: "sk-ant-aaaaaaaaaaaa",
			ProviderOpenAI:    "sk-bbbbbbbbbbbb",
		},
	}

	d := Resolve(Balance{}, s)

	assert.True(t, d.CanGenerate)
	assert.Equal(t, "sk-ant-aaaaaaaaaaaa", d.Keys[ProviderAnthropic])
	assert.Equal(t, "sk-bbbbbbbbbbbb", d.Keys[ProviderOpenAI])
}

func TestResolveOwnKeysReasons(t *testing.T) {
	tests := []struct {
		name        string
		settings    KeySettings
		wantReason  Reason
		wantMissing []string
	}{
		{
			name:        "nothing selected",
			settings:    KeySettings{UseOwnAPIKeys: true},
			wantReason:  ReasonNoMainProvider,
			wantMissing: []string{"main provider", "fallback provider"},
		},
		{
			name: "no fallback",
			settings: KeySettings{
				UseOwnAPIKeys: true,
				MainProvider:  ProviderOpenAI,
				Keys:          map[Provider]string{ProviderOpenAI: "sk-bbbbbbbbbbbb"},
			},
			wantReason:  ReasonNoFallbackProvider,
			wantMissing: []string{"fallback provider"},
		},
		{
			name: "same provider twice",
			settings: KeySettings{
				UseOwnAPIKeys:    true,
				MainProvider:     ProviderOpenAI,
				FallbackProvider: ProviderOpenAI,
				Keys:             map[Provider]string{ProviderOpenAI: "sk-bbbbbbbbbbbb"},
			},
			wantReason:  ReasonSameProvider,
			wantMissing: []string{},
		},
		{
			name: "fallback key missing",
			settings: KeySettings{
				UseOwnAPIKeys:    true,
				MainProvider:     ProviderOpenAI,
				FallbackProvider: ProviderGoogle,
				Keys:             map[Provider]string{ProviderOpenAI: "sk-bbbbbbbbbbbb"},
			},
			wantReason:  ReasonMissingAPIKey,
			wantMissing: []string{"google (fallback)"},
		},
		{
			name: "both keys missing",
			settings: KeySettings{
				UseOwnAPIKeys:    true,
				MainProvider:     ProviderAnthropic,
				FallbackProvider: ProviderGoogle,
			},
			wantReason:  ReasonMissingAPIKey,
			wantMissing: []string{"anthropic (main)", "google (fallback)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(Balance{Credits: 5}, tt.settings)

			assert.False(t, d.CanGenerate)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, tt.wantMissing, d.MissingProviders)
			assert.NotEmpty(t, d.Message)
			assert.Equal(t, 5, d.AvailableCredits)
		})
	}
}
