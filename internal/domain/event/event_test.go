package event

import (
	"testing"
	"time"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      string
	}{
		{
			name:      "field changed",
			eventType: TypeFieldChanged,
			want:      "invoice.field_changed",
		},
		{
			name:      "line added",
			eventType: TypeLineAdded,
			want:      "invoice.line_added",
		},
		{
			name:      "line removed",
			eventType: TypeLineRemoved,
			want:      "invoice.line_removed",
		},
		{
			name:      "imported",
			eventType: TypeImported,
			want:      "invoice.imported",
		},
		{
			name:      "reset",
			eventType: TypeReset,
			want:      "invoice.reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.String(); got != tt.want {
				t.Errorf("Type.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{
			name:      "valid - field changed",
			eventType: TypeFieldChanged,
			want:      true,
		},
		{
			name:      "valid - line updated",
			eventType: TypeLineUpdated,
			want:      true,
		},
		{
			name:      "valid - replaced",
			eventType: TypeReplaced,
			want:      true,
		},
		{
			name:      "invalid - empty",
			eventType: "",
			want:      false,
		},
		{
			name:      "invalid - unknown",
			eventType: "invoice.deleted",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	e := NewEvent(TypeReset)
	after := time.Now()

	if e.ID == "" {
		t.Error("NewEvent() ID should not be empty")
	}
	if e.Type != TypeReset {
		t.Errorf("NewEvent() Type = %v, want %v", e.Type, TypeReset)
	}
	if e.Index != NoIndex {
		t.Errorf("NewEvent() Index = %d, want %d", e.Index, NoIndex)
	}
	if e.Timestamp.Before(before) || e.Timestamp.After(after) {
		t.Errorf("NewEvent() Timestamp = %v, want between %v and %v", e.Timestamp, before, after)
	}

	other := NewEvent(TypeReset)
	if other.ID == e.ID {
		t.Error("NewEvent() should generate unique IDs")
	}
}

func TestNewFieldEvent(t *testing.T) {
	e := NewFieldEvent("taxLabel")
	if e.Type != TypeFieldChanged || e.Field != "taxLabel" || e.Index != NoIndex {
		t.Errorf("NewFieldEvent() = %+v", e)
	}
}

func TestNewLineEvent(t *testing.T) {
	e := NewLineEvent(TypeLineUpdated, 2, "rate")
	if e.Type != TypeLineUpdated || e.Field != "rate" || e.Index != 2 {
		t.Errorf("NewLineEvent() = %+v", e)
	}
}
