// Package snapshot saves and loads the invoice record as a JSON document.
// The document is exactly the record: every field, no derived figures, no version tag.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
	"github.com/garyjia/invoice-editor/internal/domain/invoice"
	"github.com/garyjia/invoice-editor/pkg/utils"
)

// MaxSize bounds how much is read from an uploaded snapshot. Logos are embedded as data URIs.
const MaxSize = 10 << 20

// DefaultBaseName names files of invoices without a title.
const DefaultBaseName = "invoice"

// Extension of snapshot files.
const Extension = ".json"

type kind int

const (
	kindString kind = iota
	kindNumber
	kindArray
)

func (k kind) String() string {
	switch k {
	case kindNumber:
		return "number"
	case kindArray:
		return "array"
	default:
		return "string"
	}
}

// requiredKeys feed derivation and rendering and must be present in every snapshot.
var requiredKeys = []string{"productLines", "taxLabel", "title", "currency", "logoWidth"}

var keyKinds = map[string]kind{
	"logoWidth":    kindNumber,
	"productLines": kindArray,
}

var lineKeys = []string{"description", "quantity", "rate"}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Encode serializes inv. A record without lines is written with an empty list, never null.
func Encode(inv entity.Invoice) ([]byte, error) {
	out := inv.Clone()
	if out.ProductLines == nil {
		out.ProductLines = []entity.ProductLine{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName derives the download name from the invoice title.
func FileName(title string) string {
	return BaseName(title) + Extension
}

// BaseName is the sanitized title without extension, or DefaultBaseName.
func BaseName(title string) string {
	return utils.SanitizeFileName(title, DefaultBaseName)
}

// Decode reads a whole snapshot from r and checks its shape before building the record.
func Decode(r io.Reader) (entity.Invoice, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return entity.Invoice{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) > MaxSize {
		return entity.Invoice{}, ErrTooLarge
	}
	return Parse(data)
}

// Parse checks and converts snapshot bytes.
func Parse(data []byte) (entity.Invoice, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return entity.Invoice{}, fmt.Errorf("%w: top level must be an object", ErrInvalidSnapshot)
		}
		return entity.Invoice{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if raw == nil {
		return entity.Invoice{}, fmt.Errorf("%w: top level must be an object", ErrInvalidSnapshot)
	}

	if err := checkShape(raw); err != nil {
		return entity.Invoice{}, err
	}

	exact, err := exactKeys(raw)
	if err != nil {
		return entity.Invoice{}, err
	}

	var inv entity.Invoice
	if err := json.Unmarshal(exact, &inv); err != nil {
		return entity.Invoice{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := validate.Struct(inv); err != nil {
		return entity.Invoice{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return inv, nil
}

func checkShape(raw map[string]json.RawMessage) error {
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return fmt.Errorf("%w: missing %q", ErrInvalidSnapshot, key)
		}
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		want, known := keyKinds[key]
		if !known {
			if !invoice.IsStringField(key) {
				// Unknown keys are dropped on decode.
				continue
			}
			want = kindString
		}
		if !hasKind(raw[key], want) {
			return fmt.Errorf("%w: %q must be a %s", ErrInvalidSnapshot, key, want)
		}
	}

	var lines []map[string]json.RawMessage
	if err := json.Unmarshal(raw["productLines"], &lines); err != nil {
		return fmt.Errorf("%w: productLines must hold objects", ErrInvalidSnapshot)
	}
	for i, line := range lines {
		if line == nil {
			return fmt.Errorf("%w: productLines[%d] must be an object", ErrInvalidSnapshot, i)
		}
		for _, key := range lineKeys {
			v, ok := line[key]
			if !ok {
				return fmt.Errorf("%w: productLines[%d] missing %q", ErrInvalidSnapshot, i, key)
			}
			if !hasKind(v, kindString) {
				return fmt.Errorf("%w: productLines[%d].%s must be a string", ErrInvalidSnapshot, i, key)
			}
		}
	}
	return nil
}

// exactKeys re-encodes raw with only the keys checkShape looked at. Struct
// decoding folds case, so "TaxLabel" would otherwise land in taxLabel unchecked.
func exactKeys(raw map[string]json.RawMessage) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(raw))
	for key, v := range raw {
		if _, known := keyKinds[key]; known || invoice.IsStringField(key) {
			out[key] = v
		}
	}

	var lines []map[string]json.RawMessage
	if err := json.Unmarshal(raw[invoice.FieldProductLines], &lines); err != nil {
		return nil, fmt.Errorf("%w: productLines must hold objects", ErrInvalidSnapshot)
	}
	for i, line := range lines {
		kept := make(map[string]json.RawMessage, len(lineKeys))
		for _, key := range lineKeys {
			kept[key] = line[key]
		}
		lines[i] = kept
	}
	encoded, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	out[invoice.FieldProductLines] = encoded

	return json.Marshal(out)
}

func hasKind(v json.RawMessage, want kind) bool {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return false
	}
	switch want {
	case kindString:
		return v[0] == '"'
	case kindArray:
		return v[0] == '['
	case kindNumber:
		return v[0] == '-' || (v[0] >= '0' && v[0] <= '9')
	}
	return false
}
