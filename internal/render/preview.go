package render

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
)

// DefaultPreviewDPI renders page one at roughly screen size.
const DefaultPreviewDPI = 96

// Previewer rasterizes the first page of the PDF document to PNG.
type Previewer struct {
	pdf    *PDFRenderer
	dpi    float64
	logger *zap.Logger
}

// NewPreviewer creates a previewer on top of a PDF renderer
func NewPreviewer(pdf *PDFRenderer, dpi float64, logger *zap.Logger) *Previewer {
	if dpi <= 0 {
		dpi = DefaultPreviewDPI
	}
	return &Previewer{
		pdf:    pdf,
		dpi:    dpi,
		logger: logger,
	}
}

// ContentType implements Renderer.
func (p *Previewer) ContentType() string { return "image/png" }

// Extension implements Renderer.
func (p *Previewer) Extension() string { return ".png" }

// Render writes a PNG image of page one.
func (p *Previewer) Render(w io.Writer, inv entity.Invoice) error {
	var buf bytes.Buffer
	if err := p.pdf.Render(&buf, inv); err != nil {
		return err
	}

	doc, err := fitz.NewFromMemory(buf.Bytes())
	if err != nil {
		p.logger.Error("Failed to open rendered PDF", zap.Error(err))
		return fmt.Errorf("failed to open rendered PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return fmt.Errorf("rendered PDF has no pages")
	}

	img, err := doc.ImageDPI(0, p.dpi)
	if err != nil {
		p.logger.Error("Failed to rasterize page", zap.Error(err))
		return fmt.Errorf("failed to rasterize page: %w", err)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}

	p.logger.Debug("Preview rendered",
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))
	return nil
}
