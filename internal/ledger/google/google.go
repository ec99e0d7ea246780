// Package google backs the ledger with a Google Sheets spreadsheet.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"duit/internal/core"
	"duit/internal/ledger"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Ledger row layout, columns A:E.
//
//	A timestamp ("2006-01-02 15:04:05", naive in the canonical zone)
//	B user id
//	C amount in whole rupiah
//	D category
//	E description
const appendLayout = "2006-01-02 15:04:05"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	norm          *ledger.Normalizer
}

var (
	_ ledger.Reader   = (*Client)(nil)
	_ ledger.Appender = (*Client)(nil)
)

// NewFromEnv creates a Sheets-backed ledger using environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional: GOOGLE_SHEET_NAME (default
// "Transactions"). Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or an OAuth
// client/token pair (GOOGLE_OAUTH_CLIENT_* plus GOOGLE_OAUTH_TOKEN_*, see
// cmd/oauth-init).
func NewFromEnv(ctx context.Context, norm *ledger.Normalizer) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheet := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheet == "" {
		sheet = "Transactions"
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	if norm == nil {
		norm = ledger.NewNormalizer(nil)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet, norm: norm}, nil
}

// newSheetsService initializes a Sheets Service, preferring Service Account
// credentials and falling back to a stored OAuth token.
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
		return newSheetsServiceOAuth(ctx)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newSheetsServiceOAuth builds the service from an OAuth client config plus a
// previously saved token (see cmd/oauth-init).
func newSheetsServiceOAuth(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := readEnvOrFile("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if clientJSON == nil {
		return nil, errors.New("missing sheets credentials (set service account or OAuth client/token variables)")
	}
	tokenJSON, err := readEnvOrFile("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}
	if tokenJSON == nil {
		return nil, errors.New("missing OAuth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE, or run oauth-init)")
	}

	oauthCfg, err := googleoauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth client: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse OAuth token: %w", err)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithTokenSource(oauthCfg.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// readEnvOrFile returns the inline value of envJSON when set, otherwise the
// contents of the file named by envFile. Nil with no error means unset.
func readEnvOrFile(envJSON, envFile string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(envJSON)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(envFile)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return b, nil
	}
	return nil, nil
}

// Append writes the transaction to the next empty row and returns its range.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	ts := c.norm.Normalize(tx.Timestamp)
	row := []any{
		ts.Format(appendLayout),
		tx.UserID,
		tx.Amount.Units(),
		tx.Category,
		tx.Description,
	}
	rng := fmt.Sprintf("%s!A:E", c.sheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return fmt.Sprintf("%s!A:E", c.sheet), nil
}

// ListTransactions scans the sheet and returns the user's rows inside
// [since, until), ordered by timestamp. Malformed rows are skipped.
func (c *Client) ListTransactions(ctx context.Context, userID string, since, until time.Time) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:E", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []core.Transaction
	for i, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) < 4 {
			continue
		}
		ts, err := c.norm.Parse(cols[0])
		if err != nil {
			// Header rows land here too; only warn past the first row.
			if i > 0 {
				slog.WarnContext(ctx, "Skipping ledger row with unparsable timestamp",
					"sheet", c.sheet, "row", i+1, "raw", cols[0])
			}
			continue
		}
		if cols[1] != userID {
			continue
		}
		if ts.Before(since) || !ts.Before(until) {
			continue
		}
		cents, ok := parseAmountToCents(cols[2])
		if !ok {
			slog.WarnContext(ctx, "Skipping ledger row with unparsable amount",
				"sheet", c.sheet, "row", i+1, "raw", cols[2])
			continue
		}
		desc := ""
		if len(cols) >= 5 {
			desc = cols[4]
		}
		out = append(out, core.Transaction{
			UserID:      cols[1],
			Amount:      core.Money{Cents: cents},
			Category:    cols[3],
			Description: desc,
			Timestamp:   ts,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// ListUserIDs returns the distinct user ids present in the sheet, sorted.
func (c *Client) ListUserIDs(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:B", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	// Rows without a parsable timestamp (the header included) do not count.
	seen := make(map[string]struct{})
	for _, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) < 2 {
			continue
		}
		if _, err := c.norm.Parse(cols[0]); err != nil {
			continue
		}
		if cols[1] != "" {
			seen[cols[1]] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// parseAmountToCents reads a whole-rupiah cell value, tolerating a decimal
// comma and thousands dots.
func parseAmountToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		return 0, false
	}
	return int64((f * 100.0) + 0.5), true
}
