package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
	"github.com/garyjia/invoice-editor/internal/domain/totals"
)

// SheetName is the worksheet the invoice is written to.
const SheetName = "Invoice"

// XLSXRenderer exports the invoice as a spreadsheet.
type XLSXRenderer struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewXLSXRenderer creates a spreadsheet renderer
func NewXLSXRenderer(logger *zap.Logger) *XLSXRenderer {
	return &XLSXRenderer{
		now:    time.Now,
		logger: logger,
	}
}

// ContentType implements Renderer.
func (r *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements Renderer.
func (r *XLSXRenderer) Extension() string { return ".xlsx" }

// Render writes inv as a single-sheet workbook. Every product line is listed,
// including lines without a description, so the sheet sums to the editor's subtotal.
func (r *XLSXRenderer) Render(w io.Writer, inv entity.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	now := r.now()
	derived := totals.Derive(inv)

	header := [][2]string{
		{inv.Title, ""},
		{inv.CompanyName, inv.Name},
		{inv.CompanyAddress, inv.CompanyAddress2},
		{inv.CompanyCountry, ""},
		{inv.BillTo, inv.ClientName},
		{inv.ClientAddress, inv.ClientAddress2},
		{inv.ClientCountry, ""},
		{inv.InvoiceTitleLabel, inv.InvoiceTitle},
		{inv.InvoiceDateLabel, entity.FormatDate(inv.IssueDate(now))},
		{inv.InvoiceDueDateLabel, entity.FormatDate(inv.DueDate(now))},
	}
	row := 1
	for _, h := range header {
		r.setRow(f, row, h[0], h[1])
		row++
	}
	r.setStyle(f, "A1", "A1", bold)

	row++
	r.setRow(f, row, inv.ProductLineDescription, inv.ProductLineQuantity, inv.ProductLineQuantityRate, inv.ProductLineQuantityAmount)
	r.setStyle(f, cell("A", row), cell("D", row), bold)
	row++

	for _, line := range inv.ProductLines {
		r.setRow(f, row, line.Description, numberOrText(line.Quantity), numberOrText(line.Rate), totals.LineAmount(line.Quantity, line.Rate))
		r.setStyle(f, cell("D", row), cell("D", row), money)
		row++
	}

	row++
	sums := []struct {
		label string
		value float64
	}{
		{inv.SubTotalLabel, derived.SubTotal},
		{inv.TaxLabel, derived.SaleTax},
		{inv.TotalLabel + " " + inv.Currency, derived.GrandTotal},
	}
	for _, s := range sums {
		r.setRow(f, row, "", "", s.label, s.value)
		r.setStyle(f, cell("D", row), cell("D", row), money)
		row++
	}
	r.setStyle(f, cell("C", row-1), cell("C", row-1), bold)

	row++
	footer := [][2]string{
		{inv.NotesLabel, inv.Notes},
		{inv.Bank1, inv.Bank1IBAN + " " + inv.Bank1SWIFT},
		{inv.Bank2, inv.Bank2IBAN + " " + inv.Bank2SWIFT},
		{inv.CompanyInfo, ""},
	}
	for _, ft := range footer {
		r.setRow(f, row, ft[0], ft[1])
		row++
	}

	if err := f.SetColWidth(SheetName, "A", "A", 40); err != nil {
		r.logger.Warn("Failed to set column width", zap.Error(err))
	}
	if err := f.SetColWidth(SheetName, "B", "D", 16); err != nil {
		r.logger.Warn("Failed to set column width", zap.Error(err))
	}

	if _, err := f.WriteTo(w); err != nil {
		r.logger.Error("Failed to write workbook", zap.Error(err))
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	r.logger.Debug("Workbook rendered",
		zap.String("title", inv.Title),
		zap.Int("lines", len(inv.ProductLines)))
	return nil
}

// setRow writes values left to right starting at column A
func (r *XLSXRenderer) setRow(f *excelize.File, row int, values ...interface{}) {
	if err := f.SetSheetRow(SheetName, cell("A", row), &values); err != nil {
		r.logger.Warn("Failed to set row",
			zap.Int("row", row),
			zap.Error(err))
	}
}

func (r *XLSXRenderer) setStyle(f *excelize.File, from, to string, style int) {
	if err := f.SetCellStyle(SheetName, from, to, style); err != nil {
		r.logger.Warn("Failed to set cell style",
			zap.String("from", from),
			zap.Error(err))
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// numberOrText stores text that is a complete number as a number, anything else verbatim.
func numberOrText(text string) interface{} {
	if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
		return v
	}
	return text
}
