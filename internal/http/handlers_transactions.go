package http

import (
	"log/slog"
	"net/http"

	"agrly-admin/internal/audit"
	"agrly-admin/internal/core"
)

type transactionsPage struct {
	Title        string
	Error        string
	Status       string
	Transactions []core.Transaction
	Summary      core.TransactionSummary
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	s.renderTransactions(w, r, "")
}

func (s *Server) renderTransactions(w http.ResponseWriter, r *http.Request, errMsg string) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "all"
	}

	transactions, err := fetchCached(r.Context(), s.transactionsCache, s.backend.ListTransactions)
	page := transactionsPage{Title: "Transactions", Status: status}
	switch {
	case errMsg != "":
		page.Error = errMsg
	case err != nil:
		page.Error = loadError(err)
	}

	page.Transactions = core.FilterTransactionsByStatus(transactions, status)
	// Summary chips always describe the full collection, not the filtered view.
	page.Summary = core.SummarizeTransactions(transactions)
	s.render(w, r, "transactions.html", page)
}

func transactionFromForm(r *http.Request) core.Transaction {
	return core.Transaction{
		SenderID:   formInt64(r, "senderID"),
		ReceiverID: formInt64(r, "receiverID"),
		Amount:     formFloat(r, "amount"),
		Currency:   r.FormValue("currency"),
		Status:     core.TransactionStatus(r.FormValue("status")),
		Method:     r.FormValue("method"),
	}
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	t := transactionFromForm(r)
	if err := t.Validate(); err != nil {
		s.renderTransactions(w, r, "Invalid transaction: "+err.Error())
		return
	}

	if err := s.backend.CreateTransaction(r.Context(), t); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create transaction",
			"sender_id", t.SenderID, "receiver_id", t.ReceiverID, "error", err)
		s.renderTransactions(w, r, "Could not create the transaction.")
		return
	}

	s.transactionsCache.Delete(cacheKeyAll)
	s.publishAudit(r.Context(), audit.EntityTransaction, audit.OpCreate, t.ID)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}
