package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalCredits(t *testing.T) {
	tests := []struct {
		quantity int
		want     int
	}{
		{quantity: 1, want: 1},
		{quantity: 4, want: 4},
		{quantity: 9, want: 9},
		{quantity: 10, want: 12},
		{quantity: 24, want: 26},
		{quantity: 25, want: 30},
		{quantity: 49, want: 54},
		{quantity: 50, want: 65},
		{quantity: 1000, want: 1015},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalCredits(tt.quantity), "quantity=%d", tt.quantity)
	}
}

func TestValidateQuantity(t *testing.T) {
	assert.Error(t, ValidateQuantity(0))
	assert.Error(t, ValidateQuantity(-3))
	assert.Error(t, ValidateQuantity(1001))
	assert.NoError(t, ValidateQuantity(1))
	assert.NoError(t, ValidateQuantity(1000))
}

func TestPurchaseDescription(t *testing.T) {
	assert.Equal(t, "Purchased 10 credits (+2 bonus) via Stripe", PurchaseDescription(10))
	assert.Equal(t, "Purchased 3 credits (+0 bonus) via Stripe", PurchaseDescription(3))
}

func TestValidateKeyFormat(t *testing.T) {
	tests := []struct {
		provider Provider
		key      string
		wantErr  bool
	}{
		{ProviderAnthropic, "sk-ant-api03-abcdef", false},
		{ProviderAnthropic, "sk-abcdefghijkl", true},
		{ProviderOpenAI, "sk-proj-abcdefgh", false},
		{ProviderOpenAI, "sk-short", true},
		{ProviderOpenRouter, "sk-or-v1-abcdefgh", false},
		{ProviderOpenRouter, "sk-abcdefghijkl", true},
		{ProviderGoogle, "AIzaSyAbcdefghij", false},
		{ProviderGoogle, "sk-abcdefghijkl", true},
		{Provider("mistral"), "whatever-long-key", true},
	}

	for _, tt := range tests {
		err := ValidateKeyFormat(tt.provider, tt.key)
		if tt.wantErr {
			assert.Error(t, err, "%s %s", tt.provider, tt.key)
		} else {
			assert.NoError(t, err, "%s %s", tt.provider, tt.key)
		}
	}
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" OpenAI ")
	assert.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, p)

	p, err = ParseProvider("")
	assert.NoError(t, err)
	assert.Equal(t, Provider(""), p)

	_, err = ParseProvider("cohere")
	assert.Error(t, err)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "sk-ant-…wxyz", MaskKey("sk-ant-api03-abcdwxyz"))
	assert.Equal(t, "", MaskKey(""))
	assert.NotContains(t, MaskKey("AIzaSyAbcdefghij"), "Abcdef")
}
