package http

import (
	"net/http"

	"github.com/ivanmayoraldev/mintly-tracker/internal/core"
	applog "github.com/ivanmayoraldev/mintly-tracker/internal/log"
)

// Mutations accept form-encoded bodies; all responses are JSON.

type transactionJSON struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
	Color       string  `json:"color"`
}

type goalJSON struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Deadline      string  `json:"deadline,omitempty"`
	Description   string  `json:"description,omitempty"`
	Progress      float64 `json:"progress_percentage"`
}

type balanceJSON struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	TotalSavings float64 `json:"total_savings"`
	Balance      float64 `json:"balance"`
}

type scoreJSON struct {
	Score   int    `json:"score"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type categoryJSON struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

type createdJSON struct {
	ID int64 `json:"id"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
		Color:       t.Color(),
	}
}

func toGoalJSON(g core.SavingsGoal) goalJSON {
	return goalJSON{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Deadline:      g.Deadline,
		Description:   g.Description,
		Progress:      g.ProgressPercentage(),
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(r.PostFormValue("amount"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	date := sanitizeInput(r.PostFormValue("date"))
	if date == "" {
		date = core.Today()
	}

	tx := core.Transaction{
		Type:        core.TypeFromCode(core.NormalizeTypeCode(r.PostFormValue("type"))),
		Amount:      amount,
		Category:    sanitizeInput(r.PostFormValue("category")),
		Description: sanitizeInput(r.PostFormValue("description")),
		Date:        date,
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.ledger.RecordTransaction(r.Context(), tx.Type, tx.Amount, tx.Category, tx.Description, tx.Date)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Record transaction failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not record transaction")
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, createdJSON{ID: id})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	var (
		txs []core.Transaction
		err error
	)
	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		t := core.TypeFromCode(core.NormalizeTypeCode(typeParam))
		txs, err = s.ledger.ListTransactionsByType(r.Context(), t, limit)
	} else {
		txs, err = s.ledger.ListTransactions(r.Context(), limit)
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List transactions failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}

	out := make([]transactionJSON, len(txs))
	for i, t := range txs {
		out[i] = toTransactionJSON(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Delete transaction failed",
			applog.FieldError, err, applog.FieldTransactionID, id)
		writeError(w, http.StatusInternalServerError, "could not delete transaction")
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMonthlyBalance(w http.ResponseWriter, r *http.Request) {
	bal, ok := s.balanceCache.Get(balanceCacheKey)
	if !ok {
		var err error
		bal, err = s.ledger.MonthlyBalance(r.Context())
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Monthly balance failed", applog.FieldError, err)
			writeError(w, http.StatusInternalServerError, "could not compute balance")
			return
		}
		s.balanceCache.Set(balanceCacheKey, bal)
	}

	writeJSON(w, http.StatusOK, balanceJSON{
		TotalIncome:  bal.TotalIncome,
		TotalExpense: bal.TotalExpense,
		TotalSavings: bal.TotalSavings,
		Balance:      bal.Balance,
	})
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	score, ok := s.scoreCache.Get(scoreCacheKey)
	if !ok {
		var err error
		score, err = s.ledger.FinancialHealthScore(r.Context())
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Health score failed", applog.FieldError, err)
			writeError(w, http.StatusInternalServerError, "could not compute score")
			return
		}
		s.scoreCache.Set(scoreCacheKey, score)
	}

	writeJSON(w, http.StatusOK, scoreJSON{
		Score:   score.Score,
		Level:   score.Level,
		Message: score.Message,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	t := core.TypeFromCode(core.NormalizeTypeCode(r.URL.Query().Get("type")))

	table := core.ExpenseCategoryColors
	if t == core.Income {
		table = core.IncomeCategoryColors
	}

	labels := core.SuggestedCategories(t)
	out := make([]categoryJSON, len(labels))
	for i, label := range labels {
		out[i] = categoryJSON{Label: label, Color: table[label]}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	var (
		totals map[string]float64
		err    error
	)
	switch core.TypeFromCode(core.NormalizeTypeCode(r.URL.Query().Get("type"))) {
	case core.Income:
		totals, err = s.ledger.IncomeByCategory(r.Context())
	case core.Savings:
		totals, err = s.ledger.SavingsByCategory(r.Context())
	default:
		totals, err = s.ledger.ExpensesByCategory(r.Context())
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Category totals failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not compute totals")
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := core.ParseAmount(r.PostFormValue("target_amount"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid target amount")
		return
	}

	var current float64
	if v := r.PostFormValue("current_amount"); v != "" {
		current, err = core.ParseAmount(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid current amount")
			return
		}
	}

	goal := core.SavingsGoal{
		Name:          sanitizeInput(r.PostFormValue("name")),
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      sanitizeInput(r.PostFormValue("deadline")),
		Description:   sanitizeInput(r.PostFormValue("description")),
	}
	if err := goal.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.ledger.CreateSavingsGoal(r.Context(), goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.Deadline, goal.Description)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Create goal failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not create goal")
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, createdJSON{ID: id})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.ledger.ListSavingsGoals(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List goals failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not list goals")
		return
	}

	out := make([]goalJSON, len(goals))
	for i, g := range goals {
		out[i] = toGoalJSON(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.ledger.DeleteSavingsGoal(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Delete goal failed",
			applog.FieldError, err, applog.FieldGoalID, id)
		writeError(w, http.StatusInternalServerError, "could not delete goal")
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDepositToGoal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(r.PostFormValue("amount"))
	if err != nil || amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	if err := s.ledger.DepositToGoal(r.Context(), id, amount); err != nil {
		s.logger.ErrorContext(r.Context(), "Deposit failed",
			applog.FieldError, err, applog.FieldGoalID, id, applog.FieldAmount, amount)
		writeError(w, http.StatusInternalServerError, "could not deposit to goal")
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}
