package render

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
)

const (
	pageMargin   = 15.0
	contentWidth = 210.0 - 2*pageMargin
	pxToMM       = 25.4 / 96
	maxLogoWidth = contentWidth / 2
)

// Column widths of the line table, as fractions of the content width.
var lineColumns = [4]float64{0.48, 0.17, 0.17, 0.18}

// PDFRenderer lays the invoice out on A4 pages.
type PDFRenderer struct {
	fontFamily string
	now        func() time.Time
	logger     *zap.Logger
}

// NewPDFRenderer creates a PDF renderer using one of the core PDF fonts.
func NewPDFRenderer(fontFamily string, logger *zap.Logger) *PDFRenderer {
	if fontFamily == "" {
		fontFamily = "Helvetica"
	}
	return &PDFRenderer{
		fontFamily: fontFamily,
		now:        time.Now,
		logger:     logger,
	}
}

// ContentType implements Renderer.
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (r *PDFRenderer) Extension() string { return ".pdf" }

// Render writes inv as a PDF document.
func (r *PDFRenderer) Render(w io.Writer, inv entity.Invoice) error {
	doc := BuildDocument(inv, r.now())

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(inv.Title, true)
	pdf.SetCreator("invoice-editor", true)
	pdf.AddPage()

	p := &pdfPage{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), font: r.fontFamily}

	r.header(p, doc)
	r.parties(p, doc)
	r.lineTable(p, doc)
	r.totalsBlock(p, doc)
	r.notes(p, doc)
	r.footer(p, doc)

	if err := pdf.Output(w); err != nil {
		r.logger.Error("Failed to render PDF", zap.Error(err))
		return fmt.Errorf("failed to render PDF: %w", err)
	}

	r.logger.Debug("PDF rendered",
		zap.String("title", inv.Title),
		zap.Int("lines", len(doc.Lines)),
		zap.Int("pages", pdf.PageCount()))
	return nil
}

type pdfPage struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	font string
}

func (p *pdfPage) style(bold bool, size float64) {
	s := ""
	if bold {
		s = "B"
	}
	p.pdf.SetFont(p.font, s, size)
}

func (p *pdfPage) cell(w, h float64, text, align string, fill bool) {
	p.pdf.CellFormat(w, h, p.tr(text), "", 0, align, fill, 0, "")
}

func (p *pdfPage) line(w, h float64, text, align string) {
	if text == "" {
		return
	}
	p.pdf.CellFormat(w, h, p.tr(text), "", 1, align, false, 0, "")
}

func (r *PDFRenderer) header(p *pdfPage, doc Document) {
	inv := doc.Invoice
	top := p.pdf.GetY()
	half := contentWidth / 2

	logoBottom := top
	if logo, err := DecodeLogo(inv.Logo); err != nil {
		r.logger.Warn("Skipping logo", zap.Error(err))
	} else if logo != nil {
		opts := gofpdf.ImageOptions{ImageType: logo.ImageType, ReadDpi: true}
		p.pdf.RegisterImageOptionsReader("logo", opts, logo.reader())
		if p.pdf.Ok() {
			width := inv.LogoWidth * pxToMM
			if width <= 0 || width > maxLogoWidth {
				width = maxLogoWidth / 2
			}
			p.pdf.ImageOptions("logo", pageMargin, top, width, 0, false, opts, 0, "")
			if info := p.pdf.GetImageInfo("logo"); info != nil && info.Width() > 0 {
				logoBottom = top + width*info.Height()/info.Width() + 2
			}
		} else {
			r.logger.Warn("Skipping unreadable logo", zap.Error(p.pdf.Error()))
			p.pdf.ClearError()
		}
	}

	p.pdf.SetXY(pageMargin+half, top)
	p.style(true, 28)
	p.line(half, 12, inv.Title, "R")

	p.pdf.SetY(maxFloat(logoBottom, top))
	p.style(true, 14)
	p.line(half, 7, inv.CompanyName, "L")
	p.style(false, 10)
	for _, text := range []string{inv.Name, inv.CompanyAddress, inv.CompanyAddress2, inv.CompanyCountry} {
		p.line(half, 5, text, "L")
	}
	p.pdf.Ln(8)
}

func (r *PDFRenderer) parties(p *pdfPage, doc Document) {
	inv := doc.Invoice
	top := p.pdf.GetY()
	left := contentWidth * 0.6
	right := contentWidth - left

	p.style(true, 10)
	p.line(left, 6, inv.BillTo, "L")
	p.style(false, 10)
	for _, text := range []string{inv.ClientName, inv.ClientAddress, inv.ClientAddress2, inv.ClientCountry} {
		p.line(left, 5, text, "L")
	}
	bottom := p.pdf.GetY()

	rows := [][2]string{
		{inv.InvoiceTitleLabel, inv.InvoiceTitle},
		{inv.InvoiceDateLabel, doc.IssueDate},
		{inv.InvoiceDueDateLabel, doc.DueDate},
	}
	p.pdf.SetY(top)
	for _, row := range rows {
		p.pdf.SetX(pageMargin + left)
		p.style(true, 10)
		p.cell(right/2, 6, row[0], "L", false)
		p.style(false, 10)
		p.cell(right/2, 6, row[1], "R", false)
		p.pdf.Ln(6)
	}

	p.pdf.SetY(maxFloat(bottom, p.pdf.GetY()) + 8)
}

func (r *PDFRenderer) lineTable(p *pdfPage, doc Document) {
	inv := doc.Invoice
	widths := columnWidths()

	p.pdf.SetFillColor(51, 51, 51)
	p.pdf.SetTextColor(255, 255, 255)
	p.style(true, 10)
	headers := []string{inv.ProductLineDescription, inv.ProductLineQuantity, inv.ProductLineQuantityRate, inv.ProductLineQuantityAmount}
	for i, h := range headers {
		align := "R"
		if i == 0 {
			align = "L"
		}
		p.cell(widths[i], 8, h, align, true)
	}
	p.pdf.Ln(8)

	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.SetDrawColor(220, 220, 220)
	p.style(false, 10)
	_, pageHeight := p.pdf.GetPageSize()
	for _, l := range doc.Lines {
		if p.pdf.GetY()+12 > pageHeight-pageMargin {
			p.pdf.AddPage()
		}
		y := p.pdf.GetY()
		p.pdf.MultiCell(widths[0], 6, p.tr(l.Description), "", "L", false)
		next := p.pdf.GetY()

		p.pdf.SetXY(pageMargin+widths[0], y)
		p.cell(widths[1], 6, l.Quantity, "R", false)
		p.cell(widths[2], 6, l.Rate, "R", false)
		p.cell(widths[3], 6, l.Amount, "R", false)

		p.pdf.SetY(maxFloat(next, y+6))
		p.pdf.Line(pageMargin, p.pdf.GetY(), pageMargin+contentWidth, p.pdf.GetY())
		p.pdf.Ln(1)
	}
	p.pdf.Ln(4)
}

func (r *PDFRenderer) totalsBlock(p *pdfPage, doc Document) {
	inv := doc.Invoice
	x := pageMargin + contentWidth/2
	label := contentWidth * 0.3
	value := contentWidth/2 - label

	rows := [][2]string{
		{inv.SubTotalLabel, doc.Formatted.SubTotal},
		{inv.TaxLabel, doc.Formatted.SaleTax},
	}
	p.style(false, 10)
	for _, row := range rows {
		p.pdf.SetX(x)
		p.cell(label, 6, row[0], "L", false)
		p.cell(value, 6, row[1], "R", false)
		p.pdf.Ln(6)
	}

	p.pdf.SetX(x)
	p.pdf.SetFillColor(230, 230, 230)
	p.style(true, 11)
	p.cell(label, 9, inv.TotalLabel, "L", true)
	p.cell(value, 9, inv.Currency+" "+doc.Formatted.GrandTotal, "R", true)
	p.pdf.Ln(14)
}

func (r *PDFRenderer) notes(p *pdfPage, doc Document) {
	inv := doc.Invoice
	if inv.NotesLabel == "" && inv.Notes == "" {
		return
	}
	p.style(true, 10)
	p.line(contentWidth, 6, inv.NotesLabel, "L")
	p.style(false, 10)
	if inv.Notes != "" {
		p.pdf.MultiCell(contentWidth, 5, p.tr(inv.Notes), "", "L", false)
	}
	p.pdf.Ln(8)
}

func (r *PDFRenderer) footer(p *pdfPage, doc Document) {
	inv := doc.Invoice
	banks := [][3]string{
		{inv.Bank1, inv.Bank1IBAN, inv.Bank1SWIFT},
		{inv.Bank2, inv.Bank2IBAN, inv.Bank2SWIFT},
	}
	widths := []float64{contentWidth * 0.2, contentWidth * 0.35, contentWidth * 0.15}

	p.style(false, 9)
	top := p.pdf.GetY()
	for _, bank := range banks {
		if bank[0] == "" && bank[1] == "" && bank[2] == "" {
			continue
		}
		for i, text := range bank {
			p.cell(widths[i], 5, text, "L", false)
		}
		p.pdf.Ln(5)
	}

	if inv.CompanyInfo != "" {
		infoX := pageMargin + widths[0] + widths[1] + widths[2]
		p.pdf.SetXY(infoX, top)
		p.pdf.MultiCell(contentWidth-(infoX-pageMargin), 4, p.tr(inv.CompanyInfo), "", "C", false)
	}
}

func columnWidths() [4]float64 {
	var out [4]float64
	for i, f := range lineColumns {
		out[i] = contentWidth * f
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
