package entity

import "time"

// DateLayout is the layout invoice and due dates are stored in.
const DateLayout = "Jan 02, 2006"

// DefaultDueDays is how far the due date lies after the issue date when no due date is set.
const DefaultDueDays = 14

// Invoice is the complete editable state of one invoice document.
// Every label shown on the document is its own field so the document can be localized by editing text.
type Invoice struct {
	Logo      string  `json:"logo"`
	LogoWidth float64 `json:"logoWidth" validate:"gte=0"`
	Title     string  `json:"title"`

	CompanyName     string `json:"companyName"`
	Name            string `json:"name"`
	CompanyAddress  string `json:"companyAddress"`
	CompanyAddress2 string `json:"companyAddress2"`
	CompanyCountry  string `json:"companyCountry"`

	BillTo         string `json:"billTo"`
	ClientName     string `json:"clientName"`
	ClientAddress  string `json:"clientAddress"`
	ClientAddress2 string `json:"clientAddress2"`
	ClientCountry  string `json:"clientCountry"`

	InvoiceTitleLabel   string `json:"invoiceTitleLabel"`
	InvoiceTitle        string `json:"invoiceTitle"`
	InvoiceDateLabel    string `json:"invoiceDateLabel"`
	InvoiceDate         string `json:"invoiceDate"`
	InvoiceDueDateLabel string `json:"invoiceDueDateLabel"`
	InvoiceDueDate      string `json:"invoiceDueDate"`

	ProductLineDescription    string        `json:"productLineDescription"`
	ProductLineQuantity       string        `json:"productLineQuantity"`
	ProductLineQuantityRate   string        `json:"productLineQuantityRate"`
	ProductLineQuantityAmount string        `json:"productLineQuantityAmount"`
	ProductLines              []ProductLine `json:"productLines" validate:"dive"`

	SubTotalLabel string `json:"subTotalLabel"`
	TaxLabel      string `json:"taxLabel"`
	TotalLabel    string `json:"totalLabel"`
	Currency      string `json:"currency"`

	NotesLabel string `json:"notesLabel"`
	Notes      string `json:"notes"`

	Bank1      string `json:"bank1"`
	Bank1IBAN  string `json:"bank1IBAN"`
	Bank1SWIFT string `json:"bank1SWIFT"`
	Bank2      string `json:"bank2"`
	Bank2IBAN  string `json:"bank2IBAN"`
	Bank2SWIFT string `json:"bank2SWIFT"`

	// CompanyInfo is the free-form footer block (contact, e-mail, phone, web).
	CompanyInfo string `json:"firmaLisainfo"`
}

// ProductLine is one billable entry. Quantity and rate keep the user's text as typed.
type ProductLine struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Rate        string `json:"rate"`
}

// DefaultProductLine returns an empty line.
func DefaultProductLine() ProductLine {
	return ProductLine{}
}

// DefaultInvoice returns the built-in invoice the editor starts from and resets to.
func DefaultInvoice() Invoice {
	return Invoice{
		LogoWidth:                 100,
		Title:                     "INVOICE",
		BillTo:                    "Bill To:",
		InvoiceTitleLabel:         "Invoice#",
		InvoiceTitle:              "",
		InvoiceDateLabel:          "Invoice Date",
		InvoiceDueDateLabel:       "Due Date",
		ProductLineDescription:    "Item Description",
		ProductLineQuantity:       "Qty",
		ProductLineQuantityRate:   "Rate",
		ProductLineQuantityAmount: "Amount",
		ProductLines: []ProductLine{
			{Description: "Brochure Design", Quantity: "2", Rate: "100.00"},
			{Description: "Web Design Packages(Template) - Basic", Quantity: "4", Rate: "50.00"},
			{Description: "Print Ad - Basic - Color", Quantity: "1", Rate: "75.00"},
		},
		SubTotalLabel: "Sub Total",
		TaxLabel:      "VAT (20%)",
		TotalLabel:    "TOTAL",
		Currency:      "€",
		NotesLabel:    "Notes",
		Notes:         "It was great doing business with you.",
	}
}

// Clone returns a copy that shares no mutable state with inv.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.ProductLines != nil {
		out.ProductLines = make([]ProductLine, len(inv.ProductLines))
		copy(out.ProductLines, inv.ProductLines)
	}
	return out
}

var dateLayouts = []string{DateLayout, "Jan 2, 2006", "2006-01-02", time.RFC3339}

// ParseDate parses a stored date string in any of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t in the stored date layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IssueDate returns the invoice date, or now when it is empty or unparseable.
func (inv Invoice) IssueDate(now time.Time) time.Time {
	if t, ok := ParseDate(inv.InvoiceDate); ok {
		return t
	}
	return now
}

// DueDate returns the due date. An empty due date means issue date + DefaultDueDays.
func (inv Invoice) DueDate(now time.Time) time.Time {
	if inv.InvoiceDueDate == "" {
		return inv.IssueDate(now).AddDate(0, 0, DefaultDueDays)
	}
	if t, ok := ParseDate(inv.InvoiceDueDate); ok {
		return t
	}
	return inv.IssueDate(now).AddDate(0, 0, DefaultDueDays)
}
