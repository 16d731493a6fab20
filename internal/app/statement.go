/**
 * @description
 * This file renders plain-text account statements: a header with the account
 * and customer details, the transaction history newest-first, and a summary of
 * per-type totals plus the net change.
 */

package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/corebank/ledger-service/internal/domain"
)

const statementRule = "================================================================"

// Statement renders a plain-text statement for one account.
func (s *Service) Statement(number string) (string, error) {
	acct, err := s.Account(number)
	if err != nil {
		return "", err
	}
	customer := acct.Customer()
	transactions := s.ledger.TransactionsFor(number)
	totals := s.ledger.TotalsFor(number)

	// Newest first, ties broken by ID so the order is stable.
	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].Timestamp.Equal(transactions[j].Timestamp) {
			return transactions[i].ID > transactions[j].ID
		}
		return transactions[i].Timestamp.After(transactions[j].Timestamp)
	})

	var b strings.Builder
	fmt.Fprintln(&b, statementRule)
	fmt.Fprintf(&b, "TRANSACTION HISTORY FOR ACCOUNT: %s - %s\n", acct.Number(), customer.Name)
	fmt.Fprintln(&b, statementRule)
	fmt.Fprintf(&b, "Account Type: %s (%s tier)\n", acct.Kind(), customer.Tier)
	fmt.Fprintf(&b, "Current Balance: $%s\n", acct.Balance().StringFixed(2))
	fmt.Fprintln(&b, statementRule)

	if len(transactions) == 0 {
		fmt.Fprintln(&b, "No transactions recorded for this account.")
	} else {
		fmt.Fprintf(&b, "%-10s %-20s %-12s %14s %14s\n", "TXN ID", "DATE/TIME", "TYPE", "AMOUNT", "BALANCE")
		fmt.Fprintln(&b, strings.Repeat("-", 74))
		for _, tx := range transactions {
			amount := tx.Amount.StringFixed(2)
			if tx.Type.Credit() {
				amount = "+" + amount
			} else {
				amount = "-" + amount
			}
			fmt.Fprintf(&b, "%-10s %-20s %-12s %14s %14s\n",
				tx.ID,
				tx.Timestamp.Format(domain.TimestampLayout),
				tx.Type,
				amount,
				tx.BalanceAfter.StringFixed(2))
		}
	}

	fmt.Fprintln(&b, statementRule)
	fmt.Fprintln(&b, "SUMMARY")
	fmt.Fprintf(&b, "Total Deposits:    $%s\n", totals.Deposits.StringFixed(2))
	fmt.Fprintf(&b, "Total Withdrawals: $%s\n", totals.Withdrawals.StringFixed(2))
	fmt.Fprintf(&b, "Total Received:    $%s\n", totals.Received.StringFixed(2))
	fmt.Fprintf(&b, "Total Transferred: $%s\n", totals.Transferred.StringFixed(2))
	fmt.Fprintf(&b, "Net Change:        $%s\n", totals.NetChange().StringFixed(2))
	fmt.Fprintln(&b, statementRule)
	return b.String(), nil
}
