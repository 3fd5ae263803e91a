package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/apollostores/poplanner/internal/config"
)

// Repository reads the history table from a Google Sheet, as an alternative
// to an uploaded workbook.
type Repository interface {
	ReadHistoryTable(ctx context.Context) ([]string, [][]string, error)
}

// GoogleSheetRepository implements Repository using the official Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	readRange     string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed history source.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     cfg.ReadRange,
		logger:        logger,
	}, nil
}

// ReadHistoryTable fetches the configured range and splits it into a header
// row plus data rows. Cells come back stringified so the normalizer treats
// sheet input exactly like file input.
func (r *GoogleSheetRepository) ReadHistoryTable(ctx context.Context) ([]string, [][]string, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.readRange).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("read range %s: %w", r.readRange, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil, fmt.Errorf("range %s is empty", r.readRange)
	}

	headers := stringifyRow(resp.Values[0])
	rows := make([][]string, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		rows = append(rows, stringifyRow(row))
	}

	r.logger.Debug("history table fetched from sheet",
		zap.String("range", r.readRange),
		zap.Int("rows", len(rows)))
	return headers, rows, nil
}

func stringifyRow(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}
