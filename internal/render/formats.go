package render

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Formats maps a format name (pdf, xlsx, png) to its renderer.
type Formats map[string]Renderer

// Options configures the default set of renderers.
type Options struct {
	FontFamily string
	PreviewDPI float64
}

// NewFormats builds the PDF, spreadsheet and preview renderers.
func NewFormats(opts Options, logger *zap.Logger) Formats {
	pdf := NewPDFRenderer(opts.FontFamily, logger)
	return Formats{
		"pdf":  pdf,
		"xlsx": NewXLSXRenderer(logger),
		"png":  NewPreviewer(pdf, opts.PreviewDPI, logger),
	}
}

// Get looks up a renderer by name, ignoring case and a leading dot.
func (f Formats) Get(name string) (Renderer, error) {
	key := strings.TrimPrefix(strings.ToLower(name), ".")
	r, ok := f[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownFormat, name, strings.Join(f.Names(), ", "))
	}
	return r, nil
}

// Names lists the available formats, sorted.
func (f Formats) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
