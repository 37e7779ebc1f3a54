// Package google mirrors ledger snapshots to a Google Sheets spreadsheet
// using a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/rashidulhasanrafi/hisab/internal/core"
	ports "github.com/rashidulhasanrafi/hisab/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.LedgerMirror = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Optional: GOOGLE_SHEET_NAME
// (default "Hisab Backup").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Hisab Backup"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// MirrorProfile clears the profile's tab and rewrites it from the
// snapshot. Each profile gets its own tab named "<sheetName> - <profile>".
func (c *Client) MirrorProfile(ctx context.Context, profile core.Profile, currency string, txs []core.Transaction, goals []core.Goal) error {
	tab := fmt.Sprintf("%s - %s", c.sheetName, profile.Name)
	rows := BuildRows(profile, currency, txs, goals)

	clearRange := fmt.Sprintf("'%s'!A:F", tab)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear mirror tab: %w", err)
	}

	vr := &gsheet.ValueRange{Values: rows}
	writeRange := fmt.Sprintf("'%s'!A1", tab)
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write mirror rows: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored profile to spreadsheet",
		"profile_id", profile.ID,
		"tab", tab,
		"transactions", len(txs),
		"goals", len(goals))
	return nil
}

// BuildRows renders a ledger snapshot as spreadsheet rows: a transaction
// section (newest first, as stored) followed by a goal section.
func BuildRows(profile core.Profile, currency string, txs []core.Transaction, goals []core.Goal) [][]interface{} {
	rows := [][]interface{}{
		{"Profile", profile.Name, "Currency", currency, "", ""},
		{"Date", "Type", "Category", "Note", "Amount", "Currency"},
	}
	for _, t := range txs {
		rows = append(rows, []interface{}{
			t.Date, string(t.Type), t.Category, t.Note, t.Amount.String(), t.Currency,
		})
	}

	rows = append(rows,
		[]interface{}{"", "", "", "", "", ""},
		[]interface{}{"Goal", "Target", "Saved", "Category", "Fixed Deposit", "Currency"})
	for _, g := range goals {
		fixed := ""
		if g.IsFixedDeposit {
			fixed = "yes"
		}
		rows = append(rows, []interface{}{
			g.Name, g.TargetAmount.String(), g.SavedAmount.String(), g.Category, fixed, g.Currency,
		})
	}
	return rows
}
