package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzaflow/internal/events"
)

type fakeSink struct {
	upserts   []events.TransactionPayload
	deletions []string
	fail      error
}

func (s *fakeSink) AppendUpsert(_ context.Context, p events.TransactionPayload) error {
	if s.fail != nil {
		return s.fail
	}
	s.upserts = append(s.upserts, p)
	return nil
}

func (s *fakeSink) AppendDeletion(_ context.Context, id string, _ time.Time) error {
	if s.fail != nil {
		return s.fail
	}
	s.deletions = append(s.deletions, id)
	return nil
}

func TestExportWorker_HandleEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert reaches the sink", func(t *testing.T) {
		sink := &fakeSink{}
		w := NewExportWorker(sink)

		err := w.HandleEvent(ctx, &events.LedgerEvent{
			Action:      events.ActionUpsert,
			ID:          "tx-1",
			Transaction: &events.TransactionPayload{ID: "tx-1", AmountCents: 2500},
		})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(sink.upserts) != 1 || sink.upserts[0].ID != "tx-1" {
			t.Errorf("upserts = %+v", sink.upserts)
		}
	})

	t.Run("delete reaches the sink", func(t *testing.T) {
		sink := &fakeSink{}
		w := NewExportWorker(sink)

		err := w.HandleEvent(ctx, &events.LedgerEvent{
			Action:    events.ActionDelete,
			ID:        "tx-2",
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(sink.deletions) != 1 || sink.deletions[0] != "tx-2" {
			t.Errorf("deletions = %+v", sink.deletions)
		}
	})

	t.Run("sink failure propagates for requeue", func(t *testing.T) {
		boom := errors.New("sheet unavailable")
		w := NewExportWorker(&fakeSink{fail: boom})

		err := w.HandleEvent(ctx, &events.LedgerEvent{
			Action:      events.ActionUpsert,
			ID:          "tx-3",
			Transaction: &events.TransactionPayload{ID: "tx-3"},
		})
		if !errors.Is(err, boom) {
			t.Errorf("err = %v, want wrapped sink failure", err)
		}
	})

	t.Run("unknown action is dropped", func(t *testing.T) {
		sink := &fakeSink{}
		w := NewExportWorker(sink)

		if err := w.HandleEvent(ctx, &events.LedgerEvent{Action: "compact", ID: "x"}); err != nil {
			t.Errorf("unknown action must not requeue, got %v", err)
		}
		if len(sink.upserts)+len(sink.deletions) != 0 {
			t.Error("unknown action must not touch the sink")
		}
	})

	t.Run("upsert without payload is dropped", func(t *testing.T) {
		sink := &fakeSink{}
		w := NewExportWorker(sink)

		if err := w.HandleEvent(ctx, &events.LedgerEvent{Action: events.ActionUpsert, ID: "x"}); err != nil {
			t.Errorf("payload-less upsert must not requeue, got %v", err)
		}
	})
}
