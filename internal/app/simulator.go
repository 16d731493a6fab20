/**
 * @description
 * This file implements the concurrent workload simulator: a pool of workers
 * firing randomized deposits and withdrawals at the ledger. The result carries
 * enough aggregate information (net change of the successful operations) that
 * callers can assert the final balances are exactly consistent with what was
 * applied.
 *
 * @dependencies
 * - golang.org/x/sync/errgroup: Worker pool with context cancellation.
 * - math/rand: Per-worker seeded randomness for reproducible runs.
 */

package app

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
)

// SimulationParams configure a workload run.
type SimulationParams struct {
	// Workers is the number of concurrent workers. Clamped to the configured
	// maximum.
	Workers int
	// OpsPerWorker is how many operations each worker attempts.
	OpsPerWorker int
	// AccountNumber optionally pins every operation to one account. When
	// empty, workers spread operations across all registered accounts.
	AccountNumber string
	// Seed makes the run reproducible. Zero seeds from the clock.
	Seed int64
}

// SimulationResult summarises a workload run.
type SimulationResult struct {
	Operations  int                        `json:"operations"`
	Deposits    int                        `json:"deposits"`
	Withdrawals int                        `json:"withdrawals"`
	Declined    int                        `json:"declined"`
	NetChange   decimal.Decimal            `json:"net_change"`
	Balances    map[string]decimal.Decimal `json:"balances"`
	Elapsed     time.Duration              `json:"elapsed_ns"`
}

// RunSimulation fires Workers*OpsPerWorker randomized deposits and withdrawals
// at the ledger and reports what was actually applied.
func (s *Service) RunSimulation(ctx context.Context, p SimulationParams) (*SimulationResult, error) {
	if p.Workers <= 0 || p.OpsPerWorker <= 0 {
		return nil, domain.NewError(domain.KindInvalidOperation, "workers and ops_per_worker must be positive")
	}
	if p.Workers > s.cfg.SimulationMaxWorkers {
		p.Workers = s.cfg.SimulationMaxWorkers
	}

	var targets []*ledger.Account
	if p.AccountNumber != "" {
		acct, err := s.Account(p.AccountNumber)
		if err != nil {
			return nil, err
		}
		targets = []*ledger.Account{acct}
	} else {
		targets = s.registry.All()
		if len(targets) == 0 {
			return nil, domain.NewError(domain.KindInvalidOperation, "no accounts to simulate against")
		}
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	result := &SimulationResult{NetChange: decimal.Zero, Balances: make(map[string]decimal.Decimal)}
	var mu sync.Mutex

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.Workers; i++ {
		worker := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(worker)))
			for j := 0; j < p.OpsPerWorker; j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				target := targets[(worker+j)%len(targets)]
				amount := decimal.NewFromInt(int64(100 + rng.Intn(400)))

				var err error
				deposit := rng.Intn(2) == 0
				if deposit {
					_, err = s.ledger.Deposit(target.Number(), amount)
				} else {
					_, err = s.ledger.Withdraw(target.Number(), amount)
				}

				mu.Lock()
				result.Operations++
				switch {
				case err != nil:
					result.Declined++
				case deposit:
					result.Deposits++
					result.NetChange = result.NetChange.Add(amount)
				default:
					result.Withdrawals++
					result.NetChange = result.NetChange.Sub(target.Policy().WithdrawalFee.Add(amount))
				}
				mu.Unlock()
				if err != nil && !isBusinessError(err) {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.Elapsed = time.Since(start)
	for _, acct := range targets {
		result.Balances[acct.Number()] = acct.Balance()
	}
	log.Printf("level=info component=simulator msg=\"simulation finished\" operations=%d declined=%d elapsed=%s",
		result.Operations, result.Declined, result.Elapsed)
	return result, nil
}

// isBusinessError reports whether err is an expected decline rather than an
// infrastructure failure.
func isBusinessError(err error) bool {
	var domErr *domain.Error
	return errors.As(err, &domErr)
}
