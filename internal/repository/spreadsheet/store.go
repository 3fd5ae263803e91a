// Package spreadsheet persists the uploaded source workbook and the
// configured recipient address at fixed paths, and converts between tabular
// files and in-memory header/row slices.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/apollostores/poplanner/internal/domain/models"
)

const (
	sourceBasename = "source"
	recipientFile  = "recipient.txt"
	planSheetName  = "SKU_PO_PLAN"
	dateLayout     = "2006-01-02"
)

var sourceExtensions = []string{".xlsx", ".xls", ".csv"}

// ErrNoSource is returned when no workbook has been uploaded yet.
var ErrNoSource = errors.New("no source file uploaded")

// ErrNoRecipient is returned when no recipient address has been configured.
var ErrNoRecipient = errors.New("no recipient configured")

// Store is a filesystem-backed repository for the single source file and the
// single recipient address. Each upload overwrites the previous one.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates the data directory if needed and returns a store rooted there.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// SaveSource stores the uploaded file under the fixed source path, keeping
// the upload's extension and removing any previously stored variant.
func (s *Store) SaveSource(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExtension(ext) {
		return "", fmt.Errorf("unsupported source format %q", ext)
	}

	for _, old := range sourceExtensions {
		if old == ext {
			continue
		}
		_ = os.Remove(filepath.Join(s.dir, sourceBasename+old))
	}

	path := filepath.Join(s.dir, sourceBasename+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create source file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write source file: %w", err)
	}

	s.logger.Info("source file stored", zap.String("path", path))
	return path, nil
}

// SourcePath locates the currently stored source file.
func (s *Store) SourcePath() (string, error) {
	for _, ext := range sourceExtensions {
		path := filepath.Join(s.dir, sourceBasename+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNoSource
}

// LoadTable reads the stored source file into a header row plus data rows.
func (s *Store) LoadTable() ([]string, [][]string, error) {
	path, err := s.SourcePath()
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	default:
		return readWorkbook(path)
	}
}

// ParseTable reads an in-memory upload without persisting it, used to
// validate a file before it replaces the stored source.
func ParseTable(filename string, r io.Reader) ([]string, [][]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return parseCSV(r)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return sheetRows(f)
}

// SaveRecipient persists the notification recipient address, overwriting any
// previous value.
func (s *Store) SaveRecipient(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("recipient must not be empty")
	}
	path := filepath.Join(s.dir, recipientFile)
	if err := os.WriteFile(path, []byte(email+"\n"), 0o644); err != nil {
		return fmt.Errorf("write recipient: %w", err)
	}
	s.logger.Info("recipient stored", zap.String("recipient", email))
	return nil
}

// Recipient reads the configured recipient address.
func (s *Store) Recipient() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, recipientFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoRecipient
		}
		return "", fmt.Errorf("read recipient: %w", err)
	}
	email := strings.TrimSpace(string(data))
	if email == "" {
		return "", ErrNoRecipient
	}
	return email, nil
}

// ExportPlans renders plan rows as an xlsx workbook with the canonical
// column order on sheet SKU_PO_PLAN.
func ExportPlans(plans []models.POPlan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", planSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(models.PlanColumns))
	for i, c := range models.PlanColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(planSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	for i, p := range plans {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		row := []interface{}{
			p.ItemCode,
			p.ItemName,
			p.Vendor,
			p.AvgMonthlyDemand,
			p.CurrentStock,
			p.MinStockQty,
			p.POMonth1Qty,
			p.POMonth2Qty,
			p.PORaiseDate.Format(dateLayout),
			p.DeliveryRequiredDate.Format(dateLayout),
			string(p.VendorRisk),
			string(p.Status),
		}
		if err := f.SetSheetRow(planSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write plan row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func supportedExtension(ext string) bool {
	for _, e := range sourceExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func readWorkbook(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return sheetRows(f)
}

func sheetRows(f *excelize.File) ([]string, [][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("sheet is empty")
	}
	return rows[0], rows[1:], nil
}

func readCSV(path string) ([]string, [][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer fh.Close()
	return parseCSV(fh)
}

func parseCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("csv is empty")
	}
	return rows[0], rows[1:], nil
}
