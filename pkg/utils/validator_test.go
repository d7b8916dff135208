package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title", "INVOICE", "INVOICE"},
		{"keeps spaces and unicode", "Arve nr 12 – Ülo", "Arve nr 12 – Ülo"},
		{"replaces separators", "2024/03 invoice", "2024_03 invoice"},
		{"strips traversal dots", "../..", "_"},
		{"strips control characters", "in\x00voice\n", "invoice"},
		{"empty falls back", "", "fallback"},
		{"blank falls back", "   ", "fallback"},
		{"dots fall back", "...", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.input, "fallback"))
		})
	}
}
