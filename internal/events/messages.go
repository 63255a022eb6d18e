package events

import (
	"encoding/json"
	"time"

	"finanzaflow/internal/core"
)

const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// TransactionPayload is the wire form of a transaction, flattened to
// primitive fields so consumers need no domain package.
type TransactionPayload struct {
	ID                  string `json:"id"`
	AmountCents         int64  `json:"amount_cents"`
	Description         string `json:"description"`
	Category            string `json:"category"`
	Date                string `json:"date"`
	Type                string `json:"type"`
	Status              string `json:"status"`
	RecurringRuleID     string `json:"recurring_rule_id,omitempty"`
	ParentTransactionID string `json:"parent_transaction_id,omitempty"`
}

// LedgerEvent is the single message shape on the ledger events queue.
type LedgerEvent struct {
	Action      string              `json:"action"`
	Transaction *TransactionPayload `json:"transaction,omitempty"`
	ID          string              `json:"id"`
	Timestamp   time.Time           `json:"timestamp"`
}

func NewUpsertEvent(t core.Transaction) LedgerEvent {
	return LedgerEvent{
		Action: ActionUpsert,
		ID:     t.ID,
		Transaction: &TransactionPayload{
			ID:                  t.ID,
			AmountCents:         t.Amount.Cents,
			Description:         t.Description,
			Category:            t.Category,
			Date:                t.Date.UTC().Format(time.RFC3339),
			Type:                string(t.Type),
			Status:              string(t.Status),
			RecurringRuleID:     t.RecurringRuleID,
			ParentTransactionID: t.ParentTransactionID,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewDeleteEvent(id string) LedgerEvent {
	return LedgerEvent{
		Action:    ActionDelete,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
