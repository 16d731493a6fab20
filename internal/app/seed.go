/**
 * @description
 * This file seeds the registry with a handful of demo accounts so a fresh
 * deployment has data to exercise. Seeding is opt-in via SEED_SAMPLE_DATA and
 * only runs against an empty registry.
 */

package app

import (
	"log"

	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
)

// SeedSampleData opens a fixed set of demo accounts. It is a no-op when the
// registry already holds accounts.
func (s *Service) SeedSampleData() error {
	if s.registry.Len() > 0 {
		return nil
	}

	samples := []OpenAccountParams{
		{CustomerName: "John Smith", Age: 34, Contact: "555-0101", Address: "12 Elm Street", Tier: domain.TierRegular, Kind: ledger.KindSavings, InitialDeposit: decimal.RequireFromString("5250.00")},
		{CustomerName: "Sarah Johnson", Age: 29, Contact: "555-0102", Address: "48 Oak Avenue", Tier: domain.TierRegular, Kind: ledger.KindChecking, InitialDeposit: decimal.RequireFromString("3450.00")},
		{CustomerName: "Michael Chen", Age: 41, Contact: "555-0103", Address: "7 Maple Court", Tier: domain.TierPremium, Kind: ledger.KindSavings, InitialDeposit: decimal.RequireFromString("15750.00")},
		{CustomerName: "Emily Brown", Age: 25, Contact: "555-0104", Address: "230 Pine Road", Tier: domain.TierRegular, Kind: ledger.KindChecking, InitialDeposit: decimal.RequireFromString("890.00")},
		{CustomerName: "David Wilson", Age: 52, Contact: "555-0105", Address: "15 Cedar Lane", Tier: domain.TierPremium, Kind: ledger.KindSavings, InitialDeposit: decimal.RequireFromString("25300.00")},
	}
	for _, p := range samples {
		if _, err := s.OpenAccount(p); err != nil {
			return err
		}
	}
	log.Printf("level=info component=app msg=\"sample data seeded\" accounts=%d", len(samples))
	return nil
}
