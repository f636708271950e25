// Package worker exports newly created transactions to the finance
// spreadsheet. It runs from two triggers: audit events about transaction
// creates, and a periodic tick that catches anything a missed event left
// behind.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"agrly-admin/internal/audit"
	"agrly-admin/internal/core"
)

const transactionsCursor = "transactions"

type (
	TransactionSource interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	SheetAppender interface {
		AppendTransactions(ctx context.Context, txs []core.Transaction) error
	}

	// CursorStore persists how far the export has progressed so a restart
	// never re-exports rows.
	CursorStore interface {
		LoadExportCursor(name string) (int64, error)
		SaveExportCursor(name string, lastID int64) error
	}
)

type ReportWorker struct {
	source    TransactionSource
	sheet     SheetAppender
	cursors   CursorStore
	batchSize int
}

func NewReportWorker(source TransactionSource, sheet SheetAppender, cursors CursorStore, batchSize int) *ReportWorker {
	if batchSize < 1 {
		batchSize = 50
	}
	return &ReportWorker{
		source:    source,
		sheet:     sheet,
		cursors:   cursors,
		batchSize: batchSize,
	}
}

// ExportNewTransactions appends every transaction with an id above the
// stored cursor, in batches, advancing the cursor after each successful
// batch so a mid-run failure resumes where it stopped.
func (w *ReportWorker) ExportNewTransactions(ctx context.Context) error {
	lastID, err := w.cursors.LoadExportCursor(transactionsCursor)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}

	all, err := w.source.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	pending := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if t.ID > lastID {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })

	exported := 0
	for len(pending) > 0 {
		n := w.batchSize
		if n > len(pending) {
			n = len(pending)
		}
		batch := pending[:n]
		pending = pending[n:]

		if err := w.sheet.AppendTransactions(ctx, batch); err != nil {
			return fmt.Errorf("append batch of %d: %w", len(batch), err)
		}

		lastID = batch[len(batch)-1].ID
		if err := w.cursors.SaveExportCursor(transactionsCursor, lastID); err != nil {
			return fmt.Errorf("save cursor: %w", err)
		}
		exported += len(batch)
	}

	slog.InfoContext(ctx, "Exported transactions to report sheet",
		"exported", exported, "cursor", lastID)
	return nil
}

// HandleAuditEvent exports on transaction creates and ignores everything
// else. Returning nil for unrelated events acks them off the queue.
func (w *ReportWorker) HandleAuditEvent(ctx context.Context, event *audit.Event) error {
	if event.Entity != audit.EntityTransaction || event.Op != audit.OpCreate {
		return nil
	}
	return w.ExportNewTransactions(ctx)
}
