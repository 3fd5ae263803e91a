// Package notify turns deficit plan rows into per-vendor PDF documents and
// mails them to the configured recipient, recording each run for audit.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apollostores/poplanner/internal/domain/models"
	"github.com/apollostores/poplanner/internal/repository/mongodb"
	"github.com/apollostores/poplanner/internal/repository/spreadsheet"
	"github.com/apollostores/poplanner/internal/service/planning"
)

// Service runs the vendor-deficit dispatch job.
type Service struct {
	planning *planning.Service
	store    *spreadsheet.Store
	mailer   Mailer
	history  mongodb.Repository // nil when no history store is configured
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a dispatch service. history may be nil; now may be nil to
// use the wall clock.
func NewService(planningSvc *planning.Service, store *spreadsheet.Store, mailer Mailer, history mongodb.Repository, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		planning: planningSvc,
		store:    store,
		mailer:   mailer,
		history:  history,
		now:      now,
		logger:   logger,
	}
}

// Dispatch computes a fresh plan, groups DEFICIT rows by vendor, renders one
// PDF per vendor and emails each to the single configured recipient. One
// vendor's delivery failure does not stop the others; the run record captures
// per-vendor outcomes.
func (s *Service) Dispatch(ctx context.Context) (models.DispatchRecord, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))

	recipient, err := s.store.Recipient()
	if err != nil {
		return models.DispatchRecord{}, fmt.Errorf("dispatch requires a recipient: %w", err)
	}

	plans, err := s.planning.Plan(ctx)
	if err != nil {
		return models.DispatchRecord{}, fmt.Errorf("compute plan: %w", err)
	}

	groups, vendors := planning.DeficitsByVendor(plans)
	day := s.now().Truncate(24 * time.Hour)

	record := models.DispatchRecord{
		RunID:     runID,
		Triggered: s.now(),
		Recipient: recipient,
		CreatedAt: s.now(),
	}

	for _, vendor := range vendors {
		items := groups[vendor]
		outcome := models.VendorOutcome{Vendor: vendor, Items: len(items)}

		if err := s.sendVendorDocument(ctx, recipient, vendor, items, day); err != nil {
			log.Error("vendor dispatch failed", zap.String("vendor", vendor), zap.Error(err))
			outcome.Error = err.Error()
		} else {
			outcome.Sent = true
			log.Info("vendor dispatch sent", zap.String("vendor", vendor), zap.Int("items", len(items)))
		}

		record.ItemCount += len(items)
		record.Vendors = append(record.Vendors, outcome)
	}

	if len(vendors) == 0 {
		log.Info("no deficit items, nothing to dispatch")
	}

	if s.history != nil {
		if err := s.history.SaveDispatch(ctx, record); err != nil {
			log.Error("failed to record dispatch history", zap.Error(err))
		}
	}

	return record, nil
}

func (s *Service) sendVendorDocument(ctx context.Context, recipient, vendor string, items []models.POPlan, day time.Time) error {
	pdf, err := BuildVendorDeficitPDF(vendor, items, day)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("PO Plan - %s - %d critical items", vendor, len(items))
	body := fmt.Sprintf(
		"Attached is the purchase order plan for %s covering %d items below their safety stock as of %s.",
		vendor, len(items), day.Format("2006-01-02"))
	filename := fmt.Sprintf("po_plan_%s_%s.pdf", sanitizeFilename(vendor), day.Format("20060102"))

	return s.mailer.SendPDF(ctx, recipient, subject, body, filename, pdf)
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
