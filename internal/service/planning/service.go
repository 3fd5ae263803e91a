// Package planning orchestrates a plan run: load the history table from the
// stored workbook or the configured sheet, resolve columns, normalize rows
// and hand the records to the engine.
package planning

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/apollostores/poplanner/internal/domain/models"
	"github.com/apollostores/poplanner/internal/planner"
	"github.com/apollostores/poplanner/internal/repository/sheets"
	"github.com/apollostores/poplanner/internal/repository/spreadsheet"
)

// ErrNoSource mirrors the store error so handlers need only one sentinel.
var ErrNoSource = spreadsheet.ErrNoSource

// Service computes PO plans from whichever history source is available.
type Service struct {
	store  *spreadsheet.Store
	sheet  sheets.Repository // nil when no sheet source is configured
	engine *planner.Engine
	logger *zap.Logger
}

// NewService wires a planning service. sheet may be nil.
func NewService(store *spreadsheet.Store, sheet sheets.Repository, engine *planner.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sheet: sheet, engine: engine, logger: logger}
}

// Plan loads the current history table and computes one POPlan per item.
// The stored upload wins; the Google Sheet source is consulted only when no
// file has been uploaded yet.
func (s *Service) Plan(ctx context.Context) ([]models.POPlan, error) {
	headers, rows, err := s.loadTable(ctx)
	if err != nil {
		return nil, err
	}
	return s.PlanTable(headers, rows)
}

// PlanTable runs the pipeline on an already-loaded table. Column resolution
// failures are fatal; row-level problems degrade per the normalizer rules.
func (s *Service) PlanTable(headers []string, rows [][]string) ([]models.POPlan, error) {
	cols, err := planner.ResolveColumns(headers)
	if err != nil {
		return nil, err
	}

	records := planner.NormalizeRows(cols, rows)
	dropped := len(rows) - len(records)
	if dropped > 0 {
		s.logger.Warn("rows dropped during normalization", zap.Int("dropped", dropped))
	}

	plans := s.engine.Plan(records)
	s.logger.Info("plan computed",
		zap.Int("input_rows", len(rows)),
		zap.Int("items", len(plans)))
	return plans, nil
}

// Deficits returns only the rows whose stock sits below the safety floor.
func Deficits(plans []models.POPlan) []models.POPlan {
	out := make([]models.POPlan, 0, len(plans))
	for _, p := range plans {
		if p.Status == models.StatusDeficit {
			out = append(out, p)
		}
	}
	return out
}

// DeficitsByVendor groups DEFICIT rows by vendor. Vendors lists the group
// keys in sorted order so callers iterate deterministically.
func DeficitsByVendor(plans []models.POPlan) (map[string][]models.POPlan, []string) {
	groups := make(map[string][]models.POPlan)
	for _, p := range Deficits(plans) {
		groups[p.Vendor] = append(groups[p.Vendor], p)
	}

	vendors := make([]string, 0, len(groups))
	for v := range groups {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)
	return groups, vendors
}

func (s *Service) loadTable(ctx context.Context) ([]string, [][]string, error) {
	headers, rows, err := s.store.LoadTable()
	if err == nil {
		return headers, rows, nil
	}
	if !errors.Is(err, spreadsheet.ErrNoSource) {
		return nil, nil, fmt.Errorf("load stored source: %w", err)
	}

	if s.sheet == nil {
		return nil, nil, err
	}
	s.logger.Debug("no uploaded source, falling back to sheet source")
	return s.sheet.ReadHistoryTable(ctx)
}
