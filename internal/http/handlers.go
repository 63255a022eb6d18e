package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finanzaflow/internal/core"
	"finanzaflow/internal/ledger"
	"finanzaflow/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg})
}

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrInvalidDayOfMonth,
	core.ErrInvalidType,
	core.ErrInvalidStatus,
	core.ErrEmptyID,
	core.ErrEmptyDescription,
	core.ErrEmptyCategory,
	core.ErrEmptyName,
	core.ErrInvalidPlan,
	core.ErrInvalidCategoryKind,
	core.ErrDescriptionTooLong,
}

// writeServiceError maps domain errors to status codes: missing records
// are 404, validation failures 422, anything else 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	for _, ve := range validationErrors {
		if errors.Is(err, ve) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "url", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.svc.Transactions()
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionToJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionJSON
	if !decodeBody(w, r, &in) {
		return
	}

	t, err := in.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	saved, err := s.svc.SaveTransaction(r.Context(), t)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionToJSON(saved))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	var in payInstallmentJSON
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Month < 1 || in.Month > 12 {
		writeError(w, http.StatusUnprocessableEntity, "month must be between 1 and 12")
		return
	}

	payment, err := s.svc.PayInstallment(r.Context(), r.PathValue("id"), in.InstallmentNumber, in.Year, in.Month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionToJSON(payment))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.svc.Categories()
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryToJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryJSON
	if !decodeBody(w, r, &in) {
		return
	}

	saved, err := s.svc.SaveCategory(r.Context(), in.toDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryToJSON(saved))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRecurringRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.svc.RecurringRules(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]recurringRuleJSON, 0, len(rules))
	for _, rule := range rules {
		out = append(out, recurringRuleToJSON(rule))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveRecurringRule(w http.ResponseWriter, r *http.Request) {
	var in recurringRuleJSON
	if !decodeBody(w, r, &in) {
		return
	}

	rule, err := in.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	saved, err := s.svc.SaveRecurringRule(r.Context(), rule)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recurringRuleToJSON(saved))
}

func (s *Server) handleDeleteRecurringRule(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRecurringRule(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	created, err := s.svc.MaterializeDueRecurringExpenses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}

// handleSummary aggregates all time by default, or one calendar month when
// both year and month query parameters are present.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	yearStr := strings.TrimSpace(r.URL.Query().Get("year"))
	monthStr := strings.TrimSpace(r.URL.Query().Get("month"))

	if yearStr == "" && monthStr == "" {
		writeJSON(w, http.StatusOK, summaryToJSON(s.svc.Summary(ledger.AllTime()), true))
		return
	}

	year, month, ok := parseYearMonth(w, yearStr, monthStr)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summaryToJSON(s.svc.Summary(ledger.ForMonth(year, month)), false))
}

func (s *Server) handleCommitment(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if !ok {
		return
	}
	commitment := s.svc.MonthlyCommitment(year, month)
	writeJSON(w, http.StatusOK, map[string]string{"commitment": commitment.String()})
}

func parseYearMonth(w http.ResponseWriter, yearStr, monthStr string) (int, int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return 0, 0, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be an integer between 1 and 12")
		return 0, 0, false
	}
	return year, month, true
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	sum := s.svc.Summary(ledger.AllTime())
	writeJSON(w, http.StatusOK, balanceJSON{
		InitialBalance: s.svc.InitialBalance().String(),
		Balance:        sum.Balance.String(),
	})
}

// handleAdjustBalance sets the stored initial balance so the current
// balance lands exactly on the requested target.
func (s *Server) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	var in adjustBalanceJSON
	if !decodeBody(w, r, &in) {
		return
	}

	newInitial, err := s.svc.AdjustBalance(r.Context(), in.Target)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sum := s.svc.Summary(ledger.AllTime())
	writeJSON(w, http.StatusOK, balanceJSON{
		InitialBalance: newInitial.String(),
		Balance:        sum.Balance.String(),
	})
}
