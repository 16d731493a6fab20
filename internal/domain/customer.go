package domain

import "strings"

// CustomerTier distinguishes regular from premium customers. The tier changes
// the minimum opening deposit and may waive certain fees.
type CustomerTier string

const (
	TierRegular CustomerTier = "regular"
	TierPremium CustomerTier = "premium"
)

// ParseCustomerTier maps external input to a tier.
func ParseCustomerTier(s string) (CustomerTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(TierRegular):
		return TierRegular, true
	case string(TierPremium):
		return TierPremium, true
	}
	return "", false
}

// Customer is pure data referenced (not owned) by exactly one account.
// Mutations go through the account registry, which serializes them against
// concurrent reads.
type Customer struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Age     int          `json:"age"`
	Contact string       `json:"contact"`
	Address string       `json:"address"`
	Tier    CustomerTier `json:"tier"`
}
