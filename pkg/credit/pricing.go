package credit

import "fmt"

const (
	MinPurchaseQuantity = 1
	MaxPurchaseQuantity = 1000

	// UnitPriceCents is the price of one credit in USD cents.
	UnitPriceCents = 150

	// WelcomeBonus is granted once to users who finish onboarding on the
	// credit path with an empty balance.
	WelcomeBonus = 2
)

type bonusTier struct {
	minQuantity int
	bonus       int
}

// Ordered from the largest tier down.
var bonusTiers = []bonusTier{
	{minQuantity: 50, bonus: 15},
	{minQuantity: 25, bonus: 5},
	{minQuantity: 10, bonus: 2},
}

// BonusFor returns the free credits added to a purchase of quantity credits.
func BonusFor(quantity int) int {
	for _, tier := range bonusTiers {
		if quantity >= tier.minQuantity {
			return tier.bonus
		}
	}
	return 0
}

// TotalCredits is the amount credited for a purchase, bonus included.
func TotalCredits(quantity int) int {
	return quantity + BonusFor(quantity)
}

// ValidateQuantity enforces the purchase bounds.
func ValidateQuantity(quantity int) error {
	if quantity < MinPurchaseQuantity || quantity > MaxPurchaseQuantity {
		return fmt.Errorf("Invalid quantity. Must be between %d and %d.", MinPurchaseQuantity, MaxPurchaseQuantity)
	}
	return nil
}

// PurchaseDescription is the ledger text for a completed purchase.
func PurchaseDescription(quantity int) string {
	return fmt.Sprintf("Purchased %d credits (+%d bonus) via Stripe", quantity, BonusFor(quantity))
}
