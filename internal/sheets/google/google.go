package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"finboard/internal/export"
	ports "finboard/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Settings selects the spreadsheet and the service account used to reach it.
// CredentialsJSON wins over CredentialsFile.
type Settings struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ ports.ReportWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from GOOGLE_SPREADSHEET_ID and
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	s := Settings{
		SpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		CredentialsJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
	}
	if s.CredentialsJSON == "" && s.CredentialsFile == "" {
		s.CredentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return New(ctx, s)
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, s Settings) (*Client, error) {
	if s.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentials(ctx, s)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", s.SpreadsheetID)
	return NewWithService(svc, s.SpreadsheetID), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID}
}

func credentials(ctx context.Context, s Settings) ([]byte, error) {
	switch {
	case s.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		return []byte(s.CredentialsJSON), nil
	case s.CredentialsFile != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", s.CredentialsFile)
		b, err := os.ReadFile(s.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteReport writes every sheet of r to its own tab, creating missing tabs
// and clearing old content first.
func (c *Client) WriteReport(ctx context.Context, r export.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	existing, err := c.tabs(ctx)
	if err != nil {
		return "", err
	}
	var add []*gsheet.Request
	for _, s := range r.Sheets {
		name := ports.TabName(r, s)
		if _, ok := existing[name]; !ok {
			add = append(add, &gsheet.Request{
				AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
			})
		}
	}
	if len(add) > 0 {
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: add}).
			Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("add tabs: %w", err)
		}
	}

	for _, s := range r.Sheets {
		name := ports.TabName(r, s)
		if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoteTab(name), &gsheet.ClearValuesRequest{}).
			Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("clear %s: %w", name, err)
		}
		vr := &gsheet.ValueRange{Values: toValues(s)}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteTab(name)+"!A1", vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("write %s: %w", name, err)
		}
		slog.InfoContext(ctx, "Report sheet written", "tab", name, "rows", len(s.Rows))
	}

	return "https://docs.google.com/spreadsheets/d/" + c.spreadsheetID, nil
}

func (c *Client) tabs(ctx context.Context) (map[string]struct{}, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	out := make(map[string]struct{}, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			out[sh.Properties.Title] = struct{}{}
		}
	}
	return out, nil
}

// quoteTab renders a tab name for A1 notation.
func quoteTab(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// toValues converts report cells into the values matrix the Sheets API
// expects, with amounts as numbers.
func toValues(s export.Sheet) [][]interface{} {
	out := make([][]interface{}, len(s.Rows))
	for i, row := range s.Rows {
		vals := make([]interface{}, len(row))
		for j, c := range row {
			switch v := c.(type) {
			case decimal.Decimal:
				vals[j] = v.Round(2).InexactFloat64()
			case nil:
				vals[j] = ""
			default:
				vals[j] = v
			}
		}
		out[i] = vals
	}
	return out
}
