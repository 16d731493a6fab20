/**
 * @description
 * This file contains the orchestration layer for the ledger-service. The
 * Service struct wires the account registry, the transaction ledger, and the
 * rollback coordinator together, owns the account/customer ID sequences, and
 * publishes events after confirmed mutations.
 *
 * Deposit, withdraw and transfer follow an optimistic apply-then-confirm flow:
 * the mutation is applied immediately, and when the caller declines
 * confirmation the rollback coordinator compensates it.
 *
 * @dependencies
 * - context, log, strings, time: Standard Go libraries.
 * - github.com/google/uuid: Event envelope IDs.
 * - github.com/shopspring/decimal: Monetary amounts.
 * - internal/config, internal/domain, internal/ledger, pkg/rabbitmq.
 */

package app

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/config"
	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
	"github.com/corebank/ledger-service/pkg/rabbitmq"
)

// Service provides the application-level operations over the ledger core.
type Service struct {
	cfg      config.Config
	policies ledger.PolicySet
	registry *ledger.Registry
	ledger   *ledger.Ledger
	rollback *ledger.RollbackCoordinator
	events   rabbitmq.Publisher

	accountSeq  *domain.Sequence
	customerSeq *domain.Sequence
}

// NewService creates the service. A nil producer disables event publishing.
func NewService(cfg config.Config, registry *ledger.Registry, l *ledger.Ledger, producer rabbitmq.Publisher) *Service {
	if producer == nil {
		producer = &rabbitmq.NoopPublisher{}
	}
	return &Service{
		cfg: cfg,
		policies: ledger.PolicySet{
			Savings: ledger.Policy{
				MinimumBalance: cfg.SavingsMinimumBalance,
				WithdrawalFee:  cfg.SavingsWithdrawalFee,
			},
			Checking: ledger.Policy{
				OverdraftLimit: cfg.CheckingOverdraftLimit,
				WithdrawalFee:  cfg.CheckingWithdrawalFee,
			},
		},
		registry:    registry,
		ledger:      l,
		rollback:    ledger.NewRollbackCoordinator(l),
		events:      producer,
		accountSeq:  domain.NewSequence("ACC"),
		customerSeq: domain.NewSequence("CUS"),
	}
}

// Registry exposes the account registry for the query surface.
func (s *Service) Registry() *ledger.Registry { return s.registry }

// Ledger exposes the transaction ledger for the query surface.
func (s *Service) Ledger() *ledger.Ledger { return s.ledger }

// Policies returns the configured per-variant policy set.
func (s *Service) Policies() ledger.PolicySet { return s.policies }

// OpenAccountParams are the inputs for opening an account.
type OpenAccountParams struct {
	CustomerName   string
	Age            int
	Contact        string
	Address        string
	Tier           domain.CustomerTier
	Kind           ledger.AccountKind
	InitialDeposit decimal.Decimal
}

// OpenAccount mints a customer and an account, validates the tier-dependent
// minimum opening deposit, and registers the account.
func (s *Service) OpenAccount(p OpenAccountParams) (*ledger.Account, error) {
	minimum := s.minimumOpeningDeposit(p.Tier)
	if p.InitialDeposit.LessThan(minimum) {
		return nil, domain.NewError(domain.KindInvalidAmount,
			"initial deposit %s is below the %s-tier minimum of %s", p.InitialDeposit, p.Tier, minimum)
	}

	customer := &domain.Customer{
		ID:      s.customerSeq.Next(),
		Name:    p.CustomerName,
		Age:     p.Age,
		Contact: p.Contact,
		Address: p.Address,
		Tier:    p.Tier,
	}
	acct := ledger.NewAccount(s.accountSeq.Next(), p.Kind, customer, p.InitialDeposit, s.policies.For(p.Kind))
	s.registry.Add(acct)
	log.Printf("level=info component=app msg=\"account opened\" account=%s kind=%s tier=%s", acct.Number(), p.Kind, p.Tier)
	return acct, nil
}

// Account looks up one account.
func (s *Service) Account(number string) (*ledger.Account, error) {
	acct, ok := s.registry.Get(number)
	if !ok {
		return nil, domain.NewError(domain.KindAccountNotFound, "account not found: %s", number)
	}
	return acct, nil
}

// RemoveAccount takes an account out of the registry. Ledger history for the
// account is retained.
func (s *Service) RemoveAccount(number string) error {
	if !s.registry.Remove(number) {
		return domain.NewError(domain.KindAccountNotFound, "account not found: %s", number)
	}
	return nil
}

// UpdateCustomer rewrites the customer fields attached to an account.
func (s *Service) UpdateCustomer(number, name string, age int, contact, address string) error {
	if !s.registry.UpdateCustomerInfo(number, name, age, contact, address) {
		return domain.NewError(domain.KindAccountNotFound, "account not found: %s", number)
	}
	return nil
}

// Deposit applies a deposit. When confirm is false the mutation is previewed
// and immediately compensated; the returned transaction describes what would
// have been posted.
func (s *Service) Deposit(ctx context.Context, number string, amount decimal.Decimal, confirm bool) (*domain.Transaction, error) {
	snap, err := s.rollback.Capture(number)
	if err != nil {
		return nil, err
	}
	tx, err := s.ledger.Deposit(number, amount)
	if err != nil {
		return nil, err
	}
	if !confirm {
		if err := s.rollback.Cancel(snap); err != nil {
			return nil, err
		}
		return tx, nil
	}
	s.rollback.Confirm(snap)
	s.publishPosted(ctx, tx)
	return tx, nil
}

// Withdraw applies a withdrawal with the same confirm semantics as Deposit.
func (s *Service) Withdraw(ctx context.Context, number string, amount decimal.Decimal, confirm bool) (*domain.Transaction, error) {
	snap, err := s.rollback.Capture(number)
	if err != nil {
		return nil, err
	}
	tx, err := s.ledger.Withdraw(number, amount)
	if err != nil {
		return nil, err
	}
	if !confirm {
		if err := s.rollback.Cancel(snap); err != nil {
			return nil, err
		}
		return tx, nil
	}
	s.rollback.Confirm(snap)
	s.publishPosted(ctx, tx)
	return tx, nil
}

// Transfer moves funds between two accounts with the same confirm semantics as
// Deposit; cancelling compensates both sides.
func (s *Service) Transfer(ctx context.Context, from, to string, amount decimal.Decimal, confirm bool) (*domain.Transaction, *domain.Transaction, error) {
	fromSnap, err := s.rollback.Capture(from)
	if err != nil {
		return nil, nil, err
	}
	toSnap, err := s.rollback.Capture(to)
	if err != nil {
		return nil, nil, err
	}
	fromTx, toTx, err := s.ledger.Transfer(from, to, amount)
	if err != nil {
		return nil, nil, err
	}
	if !confirm {
		if err := s.rollback.Cancel(toSnap); err != nil {
			return nil, nil, err
		}
		if err := s.rollback.Cancel(fromSnap); err != nil {
			return nil, nil, err
		}
		return fromTx, toTx, nil
	}
	s.rollback.Confirm(fromSnap)
	s.rollback.Confirm(toSnap)
	s.publishPosted(ctx, fromTx)
	s.publishPosted(ctx, toTx)
	return fromTx, toTx, nil
}

// History returns the transactions posted against an account.
func (s *Service) History(number string) ([]*domain.Transaction, error) {
	if !s.registry.Exists(number) {
		return nil, domain.NewError(domain.KindAccountNotFound, "account not found: %s", number)
	}
	return s.ledger.TransactionsFor(number), nil
}

// Totals returns the aggregate totals for an account.
func (s *Service) Totals(number string) (ledger.Totals, error) {
	if !s.registry.Exists(number) {
		return ledger.Totals{}, domain.NewError(domain.KindAccountNotFound, "account not found: %s", number)
	}
	return s.ledger.TotalsFor(number), nil
}

// RestoreSnapshot replaces the registry and ledger contents with restored
// state and advances every ID sequence past the restored identifiers.
func (s *Service) RestoreSnapshot(accounts []*ledger.Account, transactions []*domain.Transaction) {
	s.registry.ReplaceAll(accounts)
	s.ledger.ReplaceAll(transactions)
	for _, a := range s.registry.All() {
		s.accountSeq.Observe(a.Number())
		s.customerSeq.Observe(a.CustomerID())
	}
	log.Printf("level=info component=app msg=\"snapshot restored\" accounts=%d transactions=%d", s.registry.Len(), s.ledger.Count())
}

func (s *Service) minimumOpeningDeposit(tier domain.CustomerTier) decimal.Decimal {
	if tier == domain.TierPremium {
		return s.cfg.PremiumMinimumOpeningDeposit
	}
	return s.cfg.RegularMinimumOpeningDeposit
}

// publishPosted emits a transaction-posted event. Publishing is best-effort;
// failures are logged and never fail the mutation.
func (s *Service) publishPosted(ctx context.Context, tx *domain.Transaction) {
	event := domain.TransactionPostedEvent{
		EventID:       uuid.New(),
		TransactionID: tx.ID,
		AccountNumber: tx.AccountNumber,
		Type:          tx.Type,
		Amount:        tx.Amount,
		BalanceAfter:  tx.BalanceAfter,
		PostedAt:      tx.Timestamp,
	}
	routingKey := "ledger.transaction.posted." + strings.ToLower(string(tx.Type))

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.events.Publish(pubCtx, s.cfg.TransactionEventExchange, routingKey, event); err != nil {
		log.Printf("level=warn component=app msg=\"event publish failed\" transaction=%s err=%v", tx.ID, err)
	}
}
