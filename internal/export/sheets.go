// Package export mirrors ledger changes to a Google Sheets backup
// spreadsheet. The export is append-only: deletions land as tombstone
// rows so the sheet stays a faithful history, not a live replica.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finanzaflow/internal/events"
)

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates an exporter from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// Application Default Credentials.
// Optional: GOOGLE_SHEET_NAME (default "Ledger").
func NewFromEnv(ctx context.Context) (*SheetsExporter, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	switch {
	case serviceAccountJSON != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(serviceAccountJSON)))
	case serviceAccountFile != "":
		credentialsJSON, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		opts = append(opts, goption.WithCredentialsJSON(credentialsJSON))
	default:
		// Fall through to Application Default Credentials.
		slog.InfoContext(ctx, "No service account configured, using application default credentials")
	}

	return gsheet.NewService(ctx, opts...)
}

// AppendUpsert appends one row for a created or edited transaction.
func (e *SheetsExporter) AppendUpsert(ctx context.Context, p events.TransactionPayload) error {
	row := []interface{}{
		p.ID,
		p.Date,
		p.Description,
		p.Category,
		p.Type,
		p.Status,
		float64(p.AmountCents) / 100.0,
		p.RecurringRuleID,
		p.ParentTransactionID,
	}
	return e.appendRow(ctx, row)
}

// AppendDeletion appends a tombstone row for a deleted transaction.
func (e *SheetsExporter) AppendDeletion(ctx context.Context, id string, deletedAt time.Time) error {
	row := []interface{}{
		id,
		deletedAt.UTC().Format(time.RFC3339),
		"DELETED",
		"", "", "", "", "", "",
	}
	return e.appendRow(ctx, row)
}

func (e *SheetsExporter) appendRow(ctx context.Context, row []interface{}) error {
	rangeRef := fmt.Sprintf("%s!A:I", e.sheetName)
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}

	_, err := e.svc.Spreadsheets.Values.
		Append(e.spreadsheetID, rangeRef, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", rangeRef, err)
	}

	slog.InfoContext(ctx, "Appended row to backup sheet",
		"spreadsheet_id", e.spreadsheetID,
		"sheet", e.sheetName)

	return nil
}
