package invoice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
)

func TestSetField(t *testing.T) {
	base := entity.DefaultInvoice()

	t.Run("replaces a string field", func(t *testing.T) {
		got, ok := SetField(base, "companyName", "Acme OÜ")

		require.True(t, ok)
		assert.Equal(t, "Acme OÜ", got.CompanyName)
		assert.Equal(t, "", base.CompanyName, "input must not change")

		want := base.Clone()
		want.CompanyName = "Acme OÜ"
		assert.Equal(t, want, got)
	})

	t.Run("footer info uses its snapshot name", func(t *testing.T) {
		got, ok := SetField(base, "firmaLisainfo", "info@acme.test")
		require.True(t, ok)
		assert.Equal(t, "info@acme.test", got.CompanyInfo)
	})

	t.Run("logo width accepts numbers", func(t *testing.T) {
		for _, v := range []interface{}{150, 150.0, int64(150), json.Number("150")} {
			got, ok := SetField(base, FieldLogoWidth, v)
			require.True(t, ok, "%T", v)
			assert.Equal(t, 150.0, got.LogoWidth)
		}
	})

	t.Run("logo width rejects strings", func(t *testing.T) {
		got, ok := SetField(base, FieldLogoWidth, "150")
		assert.False(t, ok)
		assert.Equal(t, base, got)
	})

	t.Run("string field rejects numbers", func(t *testing.T) {
		got, ok := SetField(base, "title", 42)
		assert.False(t, ok)
		assert.Equal(t, base, got)
	})

	t.Run("unknown field is ignored", func(t *testing.T) {
		got, ok := SetField(base, "discount", "10")
		assert.False(t, ok)
		assert.Equal(t, base, got)
	})

	t.Run("product lines are not editable here", func(t *testing.T) {
		got, ok := SetField(base, FieldProductLines, "[]")
		assert.False(t, ok)
		assert.Equal(t, base, got)
	})
}

func TestSetField_DoesNotShareLines(t *testing.T) {
	base := entity.DefaultInvoice()
	got, ok := SetField(base, "notes", "thanks")
	require.True(t, ok)

	got.ProductLines[0].Description = "mutated"
	assert.Equal(t, "Brochure Design", base.ProductLines[0].Description)
}

func TestFieldNames(t *testing.T) {
	names := FieldNames()

	assert.Contains(t, names, "logoWidth")
	assert.Contains(t, names, "taxLabel")
	assert.NotContains(t, names, "productLines")
	assert.IsIncreasing(t, names)

	inv := entity.DefaultInvoice()
	for _, name := range names {
		_, ok := GetField(inv, name)
		assert.True(t, ok, name)
	}
}
