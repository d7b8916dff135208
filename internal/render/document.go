// Package render turns the invoice record into printable documents.
// Renderers only read the record; they never change it.
package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
	"github.com/garyjia/invoice-editor/internal/domain/totals"
	"github.com/garyjia/invoice-editor/internal/snapshot"
)

var (
	// ErrUnknownFormat is returned for a document format no renderer handles
	ErrUnknownFormat = errors.New("unknown document format")

	// ErrUnsupportedLogo is returned for logos that are not PNG or JPEG data URIs
	ErrUnsupportedLogo = errors.New("unsupported logo")
)

// Renderer writes one document format.
type Renderer interface {
	Render(w io.Writer, inv entity.Invoice) error
	ContentType() string
	Extension() string
}

// Line is a product line as printed.
type Line struct {
	Description string
	Quantity    string
	Rate        string
	Amount      string
	AmountValue float64
}

// Document is the record laid out for printing, with dates resolved and figures formatted.
type Document struct {
	Invoice   entity.Invoice
	IssueDate string
	DueDate   string
	Lines     []Line
	Totals    totals.Totals
	Formatted totals.Formatted
}

// BuildDocument prepares inv for printing. Lines without a description are left off the page.
func BuildDocument(inv entity.Invoice, now time.Time) Document {
	derived := totals.Derive(inv)
	doc := Document{
		Invoice:   inv,
		IssueDate: entity.FormatDate(inv.IssueDate(now)),
		DueDate:   entity.FormatDate(inv.DueDate(now)),
		Totals:    derived,
		Formatted: derived.Format(),
	}
	for _, pl := range inv.ProductLines {
		if pl.Description == "" {
			continue
		}
		amount := totals.LineAmount(pl.Quantity, pl.Rate)
		doc.Lines = append(doc.Lines, Line{
			Description: pl.Description,
			Quantity:    pl.Quantity,
			Rate:        pl.Rate,
			Amount:      totals.FormatMoney(amount),
			AmountValue: amount,
		})
	}
	return doc
}

// FileName names a rendered document after the invoice title.
func FileName(title string, r Renderer) string {
	return snapshot.BaseName(title) + r.Extension()
}

// Logo is a decoded embedded image.
type Logo struct {
	Data      []byte
	ImageType string // PNG or JPG
}

// DecodeLogo reads a base64 data URI. Plain URLs are not fetched.
func DecodeLogo(ref string) (*Logo, error) {
	if ref == "" {
		return nil, nil
	}
	if !strings.HasPrefix(ref, "data:") {
		return nil, fmt.Errorf("%w: only data URIs are embedded", ErrUnsupportedLogo)
	}

	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupportedLogo)
	}

	mediaType, params, _ := strings.Cut(meta, ";")
	var imageType string
	switch strings.ToLower(mediaType) {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg", "image/jpg":
		imageType = "JPG"
	default:
		return nil, fmt.Errorf("%w: media type %q", ErrUnsupportedLogo, mediaType)
	}

	var data []byte
	if strings.Contains(params, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedLogo, err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedLogo, err)
		}
		data = []byte(unescaped)
	}

	return &Logo{Data: data, ImageType: imageType}, nil
}

func (l *Logo) reader() io.Reader {
	return bytes.NewReader(l.Data)
}
