// Package worker bridges the ledger event queue to the backup exporter.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzaflow/internal/events"
)

// Sink receives exported ledger changes. *export.SheetsExporter is the
// production implementation.
type Sink interface {
	AppendUpsert(ctx context.Context, p events.TransactionPayload) error
	AppendDeletion(ctx context.Context, id string, deletedAt time.Time) error
}

type ExportWorker struct {
	sink Sink
}

func NewExportWorker(sink Sink) *ExportWorker {
	return &ExportWorker{sink: sink}
}

// HandleEvent processes one ledger event from the queue. Returning an
// error makes the consumer requeue the delivery.
func (w *ExportWorker) HandleEvent(ctx context.Context, e *events.LedgerEvent) error {
	switch e.Action {
	case events.ActionUpsert:
		if e.Transaction == nil {
			slog.WarnContext(ctx, "Upsert event without payload, skipping", "id", e.ID)
			return nil
		}
		if err := w.sink.AppendUpsert(ctx, *e.Transaction); err != nil {
			return fmt.Errorf("export upsert %s: %w", e.ID, err)
		}
	case events.ActionDelete:
		if err := w.sink.AppendDeletion(ctx, e.ID, e.Timestamp); err != nil {
			return fmt.Errorf("export deletion %s: %w", e.ID, err)
		}
	default:
		// Unknown actions are dropped, not requeued: a newer producer
		// must not wedge an older worker.
		slog.WarnContext(ctx, "Unknown ledger event action", "action", e.Action, "id", e.ID)
		return nil
	}

	slog.InfoContext(ctx, "Exported ledger event", "action", e.Action, "id", e.ID)
	return nil
}
