/**
 * @description
 * This file contains the HTTP handlers for the ledger-service. Handlers decode
 * and validate the request shape, delegate to the application service, and map
 * domain errors to HTTP statuses via writeError. Business validation lives in
 * the service and ledger layers, not here.
 *
 * Mutating endpoints accept an optional "confirm" flag. It defaults to true;
 * sending false previews the operation and rolls it back.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/app"
	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/ledger"
)

// Server carries the handler dependencies.
type Server struct {
	service *app.Service
}

// NewServer creates the handler set around the application service.
func NewServer(service *app.Service) *Server {
	return &Server{service: service}
}

type customerPayload struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Contact string `json:"contact"`
	Address string `json:"address"`
	Tier    string `json:"tier"`
}

type createAccountRequest struct {
	Customer       customerPayload `json:"customer"`
	AccountType    string          `json:"account_type"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

type accountResponse struct {
	Number      string          `json:"number"`
	AccountType string          `json:"account_type"`
	Status      string          `json:"status"`
	Balance     decimal.Decimal `json:"balance"`
	Customer    customerPayload `json:"customer"`
}

func toAccountResponse(a *ledger.Account) accountResponse {
	c := a.Customer()
	return accountResponse{
		Number:      a.Number(),
		AccountType: string(a.Kind()),
		Status:      a.Status(),
		Balance:     a.Balance(),
		Customer: customerPayload{
			ID:      c.ID,
			Name:    c.Name,
			Age:     c.Age,
			Contact: c.Contact,
			Address: c.Address,
			Tier:    string(c.Tier),
		},
	}
}

type amountRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Confirm *bool           `json:"confirm"`
}

type transferRequest struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Confirm     *bool           `json:"confirm"`
}

type transferResponse struct {
	Debit  *domain.Transaction `json:"debit"`
	Credit *domain.Transaction `json:"credit"`
}

func confirmed(flag *bool) bool {
	return flag == nil || *flag
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	kind, ok := ledger.ParseAccountKind(req.AccountType)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown account_type: " + req.AccountType})
		return
	}
	tier, ok := domain.ParseCustomerTier(req.Customer.Tier)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown tier: " + req.Customer.Tier})
		return
	}

	acct, err := s.service.OpenAccount(app.OpenAccountParams{
		CustomerName:   req.Customer.Name,
		Age:            req.Customer.Age,
		Contact:        req.Customer.Contact,
		Address:        req.Customer.Address,
		Tier:           tier,
		Kind:           kind,
		InitialDeposit: req.InitialDeposit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(acct))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	var accounts []*ledger.Account
	if kindRaw := r.URL.Query().Get("type"); kindRaw != "" {
		kind, ok := ledger.ParseAccountKind(kindRaw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown account type: " + kindRaw})
			return
		}
		accounts = s.service.Registry().ByKind(kind)
	} else {
		accounts = s.service.Registry().All()
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.service.Account(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acct))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveAccount(chi.URLParam(r, "number")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	number := chi.URLParam(r, "number")
	if err := s.service.UpdateCustomer(number, req.Name, req.Age, req.Contact, req.Address); err != nil {
		writeError(w, err)
		return
	}
	acct, err := s.service.Account(number)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acct))
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := s.service.Deposit(r.Context(), chi.URLParam(r, "number"), req.Amount, confirmed(req.Confirm))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := s.service.Withdraw(r.Context(), chi.URLParam(r, "number"), req.Amount, confirmed(req.Confirm))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	debit, credit, err := s.service.Transfer(r.Context(), req.FromAccount, req.ToAccount, req.Amount, confirmed(req.Confirm))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transferResponse{Debit: debit, Credit: credit})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.service.History(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleAllTransactions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Ledger().AllTransactions())
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	statement, err := s.service.Statement(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(statement))
}

type simulateRequest struct {
	Workers       int    `json:"workers"`
	OpsPerWorker  int    `json:"ops_per_worker"`
	AccountNumber string `json:"account_number,omitempty"`
	Seed          int64  `json:"seed,omitempty"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.service.RunSimulation(r.Context(), app.SimulationParams{
		Workers:       req.Workers,
		OpsPerWorker:  req.OpsPerWorker,
		AccountNumber: req.AccountNumber,
		Seed:          req.Seed,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
