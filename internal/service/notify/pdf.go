package notify

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/apollostores/poplanner/internal/domain/models"
)

// Column x-offsets (mm) of the deficit table on an A4 portrait page.
var pdfColumns = []struct {
	title string
	width float64
}{
	{"ITEM CODE", 35},
	{"ITEM NAME", 75},
	{"STOCK", 25},
	{"PO QTY (M1)", 35},
}

// BuildVendorDeficitPDF renders one vendor's deficit items as a paginated
// document: a title block, a table header and one line per item, breaking to
// a new page when vertical space runs out.
func BuildVendorDeficitPDF(vendor string, items []models.POPlan, day time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	addPage := func() {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, fmt.Sprintf("Purchase Order Plan - %s", vendor), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Critical shortages as of %s", day.Format("2006-01-02")), "", 1, "L", false, 0, "")
		pdf.Ln(4)

		pdf.SetFont("Helvetica", "B", 10)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}

	addPage()
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()
	limit := pageHeight - bottomMargin - 10

	for _, item := range items {
		if pdf.GetY() > limit {
			addPage()
		}
		cells := []string{
			item.ItemCode,
			item.ItemName,
			fmt.Sprintf("%d", item.CurrentStock),
			fmt.Sprintf("%d", item.POMonth1Qty),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf for vendor %s: %w", vendor, err)
	}
	return buf.Bytes(), nil
}
