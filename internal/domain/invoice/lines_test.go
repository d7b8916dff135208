package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
)

func TestNormalizeNumericInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2.", "2."},
		{"1.50", "1.50"},
		{"1.0", "1.0"},
		{"0.", "0."},
		{"10", "10"},
		{"2.5", "2.5"},
		{"007", "7"},
		{"abc", "0"},
		{"", "0"},
		{"0", "0"},
		{"12abc", "12"},
		{"-3", "-3"},
		{"1e3", "1000"},
		{"1e21", "1e+21"},
		{"0.0000001", "1e-7"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNumericInput(tt.input))
		})
	}
}

func TestUpdateLine(t *testing.T) {
	base := entity.DefaultInvoice()

	t.Run("quantity keeps mid entry decimal", func(t *testing.T) {
		got, ok := UpdateLine(base, 0, LineQuantity, "2.")
		require.True(t, ok)
		assert.Equal(t, "2.", got.ProductLines[0].Quantity)
	})

	t.Run("rate is coerced", func(t *testing.T) {
		got, ok := UpdateLine(base, 1, LineRate, "x")
		require.True(t, ok)
		assert.Equal(t, "0", got.ProductLines[1].Rate)
	})

	t.Run("description is verbatim", func(t *testing.T) {
		got, ok := UpdateLine(base, 2, LineDescription, "  12.0 widgets ")
		require.True(t, ok)
		assert.Equal(t, "  12.0 widgets ", got.ProductLines[2].Description)
	})

	t.Run("other lines and input untouched", func(t *testing.T) {
		got, ok := UpdateLine(base, 0, LineQuantity, "9")
		require.True(t, ok)
		assert.Equal(t, base.ProductLines[1:], got.ProductLines[1:])
		assert.Equal(t, "2", base.ProductLines[0].Quantity)
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		for _, idx := range []int{-1, len(base.ProductLines)} {
			got, ok := UpdateLine(base, idx, LineQuantity, "3")
			assert.False(t, ok)
			assert.Equal(t, base, got)
		}
	})

	t.Run("unknown line field is a no-op", func(t *testing.T) {
		got, ok := UpdateLine(base, 0, "amount", "3")
		assert.False(t, ok)
		assert.Equal(t, base, got)
	})
}

func TestAddRemoveLine(t *testing.T) {
	base := entity.DefaultInvoice()

	t.Run("add appends an empty line", func(t *testing.T) {
		got := AddLine(base)
		require.Len(t, got.ProductLines, len(base.ProductLines)+1)
		assert.Equal(t, entity.ProductLine{}, got.ProductLines[len(got.ProductLines)-1])
		assert.Len(t, base.ProductLines, 3)
	})

	t.Run("add then remove restores lines", func(t *testing.T) {
		added := AddLine(base)
		got, ok := RemoveLine(added, len(added.ProductLines)-1)
		require.True(t, ok)
		assert.Equal(t, base.ProductLines, got.ProductLines)
	})

	t.Run("remove keeps order", func(t *testing.T) {
		got, ok := RemoveLine(base, 1)
		require.True(t, ok)
		require.Len(t, got.ProductLines, 2)
		assert.Equal(t, base.ProductLines[0], got.ProductLines[0])
		assert.Equal(t, base.ProductLines[2], got.ProductLines[1])
		assert.Len(t, base.ProductLines, 3)
	})

	t.Run("remove out of range is a no-op", func(t *testing.T) {
		got, ok := RemoveLine(base, 7)
		assert.False(t, ok)
		assert.Equal(t, base, got)
	})

	t.Run("add on empty record", func(t *testing.T) {
		got := AddLine(entity.Invoice{})
		assert.Len(t, got.ProductLines, 1)
	})
}
