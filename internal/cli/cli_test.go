package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/invoice-editor/internal/domain/entity"
	"github.com/garyjia/invoice-editor/internal/snapshot"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newSnapshot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := run(t, "", "new", "-d", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(dir, "INVOICE.json"), path)
	return path
}

func load(t *testing.T, path string) entity.Invoice {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	inv, err := snapshot.Decode(f)
	require.NoError(t, err)
	return inv
}

func TestNew(t *testing.T) {
	path := newSnapshot(t)
	assert.Equal(t, entity.DefaultInvoice(), load(t, path))

	t.Run("title names the file", func(t *testing.T) {
		dir := t.TempDir()
		out, err := run(t, "", "new", "-d", dir, "--title", "Quote 12")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Quote 12.json"), strings.TrimSpace(out))
	})

	t.Run("existing file is kept", func(t *testing.T) {
		out, err := run(t, "", "new", "-d", filepath.Dir(path))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(filepath.Dir(path), "INVOICE (1).json"), strings.TrimSpace(out))
	})
}

func TestSet(t *testing.T) {
	path := newSnapshot(t)

	_, err := run(t, "", "set", path, "clientName", "Client AS")
	require.NoError(t, err)
	_, err = run(t, "", "set", path, "logoWidth", "120")
	require.NoError(t, err)

	inv := load(t, path)
	assert.Equal(t, "Client AS", inv.ClientName)
	assert.Equal(t, float64(120), inv.LogoWidth)

	_, err = run(t, "", "set", path, "logoWidth", "wide")
	assert.Error(t, err)
	_, err = run(t, "", "set", path, "productLines", "[]")
	assert.ErrorContains(t, err, "unknown field")
	_, err = run(t, "", "set", filepath.Join(t.TempDir(), "missing.json"), "title", "x")
	assert.Error(t, err)
}

func TestLine(t *testing.T) {
	path := newSnapshot(t)

	out, err := run(t, "", "line", "add", path)
	require.NoError(t, err)
	assert.Equal(t, "3", strings.TrimSpace(out))

	_, err = run(t, "", "line", "set", path, "3", "description", "Hosting")
	require.NoError(t, err)
	_, err = run(t, "", "line", "set", path, "3", "quantity", "12")
	require.NoError(t, err)
	_, err = run(t, "", "line", "set", path, "3", "rate", "2.50")
	require.NoError(t, err)

	inv := load(t, path)
	require.Len(t, inv.ProductLines, 4)
	assert.Equal(t, entity.ProductLine{Description: "Hosting", Quantity: "12", Rate: "2.50"}, inv.ProductLines[3])

	_, err = run(t, "", "line", "rm", path, "0")
	require.NoError(t, err)
	assert.Len(t, load(t, path).ProductLines, 3)

	_, err = run(t, "", "line", "remove", path, "7")
	assert.Error(t, err)
	_, err = run(t, "", "line", "set", path, "0", "amount", "1")
	assert.Error(t, err)
}

func TestTotals(t *testing.T) {
	path := newSnapshot(t)

	out, err := run(t, "", "totals", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Brochure Design")
	assert.Contains(t, out, "475.00")
	assert.Contains(t, out, "95.00")
	assert.Contains(t, out, "€ 570.00")
}

func TestRender(t *testing.T) {
	path := newSnapshot(t)
	dir := t.TempDir()

	out, err := run(t, "", "render", path, "--format", "xlsx", "-d", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "INVOICE.xlsx"), strings.TrimSpace(out))
	assert.FileExists(t, filepath.Join(dir, "INVOICE.xlsx"))

	target := filepath.Join(dir, "out", "invoice.pdf")
	_, err = run(t, "", "render", path, "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = run(t, "", "render", path, "--format", "docx")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	path := newSnapshot(t)
	_, err := run(t, "", "set", path, "title", "Draft")
	require.NoError(t, err)

	out, err := run(t, "n\n", "reset", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[y/N]")
	assert.Contains(t, out, "Reset cancelled")
	assert.Equal(t, "Draft", load(t, path).Title)

	_, err = run(t, "", "reset", path)
	require.NoError(t, err)
	assert.Equal(t, "Draft", load(t, path).Title, "no answer declines")

	_, err = run(t, "yes\n", "reset", path)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultInvoice(), load(t, path))
}

func TestFields(t *testing.T) {
	out, err := run(t, "", "fields")
	require.NoError(t, err)
	assert.Contains(t, out, "logoWidth\n")
	assert.Contains(t, out, "firmaLisainfo\n")
}
