package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/infosynth/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driven.SheetGateway = (*Gateway)(nil)

// DefaultRateLimit keeps well below the Sheets quota of 60 reads per
// minute per user.
var DefaultRateLimit = ratelimit.Config{RequestsPerSecond: 1, Burst: 5}

// Pacer paces Sheets API calls and backs off after 429 responses.
type Pacer interface {
	Wait(ctx context.Context) error
	RecordRateLimitError(retryAfter time.Duration)
}

// Config configures a Gateway.
type Config struct {
	// Credentials authenticate every call. Required unless Options
	// supply their own authentication.
	Credentials *Credentials
	// Limiter paces calls. Defaults to DefaultRateLimit.
	Limiter Pacer
	// Options are appended to the client options, mainly for tests.
	Options []option.ClientOption
}

// Gateway reads and writes spreadsheet tabs through the Sheets v4 API.
type Gateway struct {
	svc     *sheetsapi.Service
	account string
	limiter Pacer
}

// New creates a gateway. The service account credentials are loaded once
// and reused for every call.
func New(ctx context.Context, cfg Config) (*Gateway, error) {
	opts := make([]option.ClientOption, 0, len(cfg.Options)+1)
	account := unknownAccount
	if cfg.Credentials != nil {
		opts = append(opts, option.WithCredentials(cfg.Credentials.creds))
		account = cfg.Credentials.Email()
	}
	opts = append(opts, cfg.Options...)

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: error setting up Google Sheets client: %w", domain.ErrConfiguration, err)
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(DefaultRateLimit)
	}

	return &Gateway{svc: svc, account: account, limiter: limiter}, nil
}

// Account returns the service account e-mail the sheet must be shared with.
func (g *Gateway) Account() string {
	return g.account
}

// ListTabs returns the tab titles in display order.
func (g *Gateway) ListTabs(ctx context.Context, spreadsheetID string) ([]string, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	sheet, err := g.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, g.fail(err, "")
	}

	tabs := make([]string, 0, len(sheet.Sheets))
	for _, s := range sheet.Sheets {
		if s.Properties != nil {
			tabs = append(tabs, s.Properties.Title)
		}
	}
	return tabs, nil
}

// ReadTab loads all values of a tab. The first row is the header; values
// to the right of the last named column are ignored.
func (g *Gateway) ReadTab(ctx context.Context, spreadsheetID, tab string) (*domain.InputTable, error) {
	records, err := g.values(ctx, spreadsheetID, tab)
	if err != nil {
		return nil, err
	}

	table, err := domain.ParseTable(withinHeader(records))
	if err != nil {
		return nil, fmt.Errorf("%w: tab %q: %w", domain.ErrSourceAccess, tab, err)
	}
	logger.Debug("Read %d rows from tab %q", table.Len(), tab)
	return table, nil
}

// AppendColumn writes header and values into the first column right of
// every populated cell. values must hold one entry per data row.
func (g *Gateway) AppendColumn(ctx context.Context, spreadsheetID, tab, header string, values []string) error {
	records, err := g.values(ctx, spreadsheetID, tab)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: tab %q has no header row", domain.ErrWriteBack, tab)
	}

	if rows := len(records) - 1; rows != len(values) {
		return fmt.Errorf("%w: %w: %d values for %d rows in tab %q",
			domain.ErrWriteBack, domain.ErrRowCountMismatch, len(values), rows, tab)
	}

	// Widest row rather than the header, so unnamed trailing columns are
	// never overwritten.
	width := 0
	for _, r := range records {
		width = max(width, len(r))
	}
	col := domain.ColumnLabel(width + 1)
	rng := fmt.Sprintf("%s!%s1:%s%d", quoteTab(tab), col, col, len(values)+1)

	data := make([][]interface{}, 0, len(values)+1)
	data = append(data, []interface{}{header})
	for _, v := range values {
		data = append(data, []interface{}{v})
	}

	if err := g.wait(ctx); err != nil {
		return err
	}
	logger.Debug("Updating range %s with %d values", rng, len(values))
	_, err = g.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &sheetsapi.ValueRange{
		Range:  rng,
		Values: data,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWriteBack, g.fail(err, tab))
	}
	return nil
}

// withinHeader drops values to the right of the last named header column,
// as header-keyed records have nowhere to put them. AppendColumn still
// counts them when placing the new column.
func withinHeader(records [][]string) [][]string {
	if len(records) == 0 {
		return records
	}
	width := len(records[0])
	for width > 0 && strings.TrimSpace(records[0][width-1]) == "" {
		width--
	}

	out := make([][]string, len(records))
	for i, r := range records {
		if len(r) > width {
			r = r[:width]
		}
		out[i] = r
	}
	return out
}

// values fetches the populated range of a tab as strings.
func (g *Gateway) values(ctx context.Context, spreadsheetID, tab string) ([][]string, error) {
	if strings.TrimSpace(tab) == "" {
		return nil, fmt.Errorf("%w: tab name is required", domain.ErrInvalidInput)
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, quoteTab(tab)).Context(ctx).Do()
	if err != nil {
		return nil, g.fail(err, tab)
	}

	records := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		record := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				record[j] = fmt.Sprint(v)
			}
		}
		records[i] = record
	}
	return records, nil
}

func (g *Gateway) wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// fail maps an API error and arms the backoff window on 429.
func (g *Gateway) fail(err error, tab string) error {
	if IsRateLimited(err) {
		var wait time.Duration
		if secs, perr := strconv.Atoi(retryAfterSeconds(err)); perr == nil {
			wait = time.Duration(secs) * time.Second
		}
		g.limiter.RecordRateLimitError(wait)
	}
	return wrapError(err, g.account, tab)
}

// quoteTab quotes a tab title for A1 notation.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
