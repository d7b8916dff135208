package event

// Type identifies what kind of change was committed to the invoice record
type Type string

const (
	TypeFieldChanged Type = "invoice.field_changed"
	TypeLineAdded    Type = "invoice.line_added"
	TypeLineUpdated  Type = "invoice.line_updated"
	TypeLineRemoved  Type = "invoice.line_removed"
	TypeImported     Type = "invoice.imported"
	TypeReset        Type = "invoice.reset"
	TypeReplaced     Type = "invoice.replaced"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeFieldChanged,
		TypeLineAdded,
		TypeLineUpdated,
		TypeLineRemoved,
		TypeImported,
		TypeReset,
		TypeReplaced:
		return true
	default:
		return false
	}
}
