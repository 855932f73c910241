package http

import (
	"net/http"

	"budget/internal/core"
	"budget/internal/services"
	"budget/internal/storage"
)

// transactionInput converts the wire representation, parsing the decimal
// amount and the calendar date.
func transactionInput(w http.ResponseWriter, req transactionRequest) (services.TransactionInput, bool) {
	cents, err := core.ParseCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return services.TransactionInput{}, false
	}

	input := services.TransactionInput{
		CategoryID:  req.CategoryID,
		AmountCents: cents,
		Description: req.Description,
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return services.TransactionInput{}, false
		}
		input.Date = date
	}
	return input, true
}

// transactionFilter reads the optional category and date range query
// parameters.
func transactionFilter(w http.ResponseWriter, r *http.Request) (storage.TransactionFilter, bool) {
	var filter storage.TransactionFilter
	q := r.URL.Query()

	filter.CategoryID = q.Get("categoryId")
	if v := q.Get("from"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return filter, false
		}
		filter.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return filter, false
		}
		filter.To = to
	}
	return filter, true
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, ok := transactionInput(w, req)
	if !ok {
		return
	}

	transaction, err := s.services.Transactions.Create(r.Context(), requestUser(r).ID, input)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newTransactionResponse(*transaction))
}

// handleListTransactions pages the caller's own transactions. With
// all=true and the right capability it pages across every user instead.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, ok := transactionFilter(w, r)
	if !ok {
		return
	}
	page := parsePage(r)

	if r.URL.Query().Get("all") == "true" {
		if !requestAuthorities(r).Has(capViewAllTransactions) {
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		transactions, err := s.services.Transactions.ListAll(r.Context(), filter, page)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, transactionPageResponse{
			Transactions: newTransactionListResponse(transactions),
			Total:        int64(len(transactions)),
		})
		return
	}

	transactions, total, err := s.services.Transactions.List(r.Context(), requestUser(r).ID, filter, page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, transactionPageResponse{
		Transactions: newTransactionListResponse(transactions),
		Total:        total,
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	viewAll := requestAuthorities(r).Has(capViewAllTransactions)
	transaction, err := s.services.Transactions.Get(r.Context(), requestUser(r).ID, r.PathValue("id"), viewAll)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newTransactionResponse(*transaction))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, ok := transactionInput(w, req)
	if !ok {
		return
	}

	transaction, err := s.services.Transactions.Update(r.Context(), requestUser(r).ID, r.PathValue("id"), input)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newTransactionResponse(*transaction))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	deleteAny := requestAuthorities(r).Has(capDeleteTransactions)
	if err := s.services.Transactions.Delete(r.Context(), requestUser(r).ID, r.PathValue("id"), deleteAny); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.services.Transactions.Summary(r.Context(), requestUser(r).ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newSummaryResponse(summary))
}
