// Package invoice holds the edit handlers of the invoice record.
// Every handler returns a new record and leaves its input untouched. Edits that do not apply
// (unknown field, wrong value type, index out of range) return the input unchanged and false.
package invoice

import (
	"encoding/json"
	"sort"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
)

// FieldLogoWidth is the only numeric field of the record.
const FieldLogoWidth = "logoWidth"

// FieldProductLines is never edited through SetField; see UpdateLine, AddLine and RemoveLine.
const FieldProductLines = "productLines"

var stringFields = map[string]func(*entity.Invoice) *string{
	"logo":                      func(i *entity.Invoice) *string { return &i.Logo },
	"title":                     func(i *entity.Invoice) *string { return &i.Title },
	"companyName":               func(i *entity.Invoice) *string { return &i.CompanyName },
	"name":                      func(i *entity.Invoice) *string { return &i.Name },
	"companyAddress":            func(i *entity.Invoice) *string { return &i.CompanyAddress },
	"companyAddress2":           func(i *entity.Invoice) *string { return &i.CompanyAddress2 },
	"companyCountry":            func(i *entity.Invoice) *string { return &i.CompanyCountry },
	"billTo":                    func(i *entity.Invoice) *string { return &i.BillTo },
	"clientName":                func(i *entity.Invoice) *string { return &i.ClientName },
	"clientAddress":             func(i *entity.Invoice) *string { return &i.ClientAddress },
	"clientAddress2":            func(i *entity.Invoice) *string { return &i.ClientAddress2 },
	"clientCountry":             func(i *entity.Invoice) *string { return &i.ClientCountry },
	"invoiceTitleLabel":         func(i *entity.Invoice) *string { return &i.InvoiceTitleLabel },
	"invoiceTitle":              func(i *entity.Invoice) *string { return &i.InvoiceTitle },
	"invoiceDateLabel":          func(i *entity.Invoice) *string { return &i.InvoiceDateLabel },
	"invoiceDate":               func(i *entity.Invoice) *string { return &i.InvoiceDate },
	"invoiceDueDateLabel":       func(i *entity.Invoice) *string { return &i.InvoiceDueDateLabel },
	"invoiceDueDate":            func(i *entity.Invoice) *string { return &i.InvoiceDueDate },
	"productLineDescription":    func(i *entity.Invoice) *string { return &i.ProductLineDescription },
	"productLineQuantity":       func(i *entity.Invoice) *string { return &i.ProductLineQuantity },
	"productLineQuantityRate":   func(i *entity.Invoice) *string { return &i.ProductLineQuantityRate },
	"productLineQuantityAmount": func(i *entity.Invoice) *string { return &i.ProductLineQuantityAmount },
	"subTotalLabel":             func(i *entity.Invoice) *string { return &i.SubTotalLabel },
	"taxLabel":                  func(i *entity.Invoice) *string { return &i.TaxLabel },
	"totalLabel":                func(i *entity.Invoice) *string { return &i.TotalLabel },
	"currency":                  func(i *entity.Invoice) *string { return &i.Currency },
	"notesLabel":                func(i *entity.Invoice) *string { return &i.NotesLabel },
	"notes":                     func(i *entity.Invoice) *string { return &i.Notes },
	"bank1":                     func(i *entity.Invoice) *string { return &i.Bank1 },
	"bank1IBAN":                 func(i *entity.Invoice) *string { return &i.Bank1IBAN },
	"bank1SWIFT":                func(i *entity.Invoice) *string { return &i.Bank1SWIFT },
	"bank2":                     func(i *entity.Invoice) *string { return &i.Bank2 },
	"bank2IBAN":                 func(i *entity.Invoice) *string { return &i.Bank2IBAN },
	"bank2SWIFT":                func(i *entity.Invoice) *string { return &i.Bank2SWIFT },
	"firmaLisainfo":             func(i *entity.Invoice) *string { return &i.CompanyInfo },
}

// FieldNames returns the identifiers SetField accepts, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(stringFields)+1)
	for name := range stringFields {
		names = append(names, name)
	}
	names = append(names, FieldLogoWidth)
	sort.Strings(names)
	return names
}

// IsStringField reports whether name is an editable text field.
func IsStringField(name string) bool {
	_, ok := stringFields[name]
	return ok
}

// SetField returns a copy of inv with the named field set to value.
// logoWidth takes numbers only, every other field takes strings only.
func SetField(inv entity.Invoice, name string, value interface{}) (entity.Invoice, bool) {
	if name == FieldProductLines {
		return inv, false
	}

	if name == FieldLogoWidth {
		width, ok := toNumber(value)
		if !ok {
			return inv, false
		}
		out := inv.Clone()
		out.LogoWidth = width
		return out, true
	}

	field, ok := stringFields[name]
	if !ok {
		return inv, false
	}
	s, ok := value.(string)
	if !ok {
		return inv, false
	}

	out := inv.Clone()
	*field(&out) = s
	return out, true
}

// GetField returns the current value of the named field.
func GetField(inv entity.Invoice, name string) (interface{}, bool) {
	if name == FieldLogoWidth {
		return inv.LogoWidth, true
	}
	field, ok := stringFields[name]
	if !ok {
		return nil, false
	}
	return *field(&inv), true
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
