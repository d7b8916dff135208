package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_Save(t *testing.T) {
	tempDir := t.TempDir()
	logger, _ := zap.NewDevelopment()
	fs := NewLocalFileStorage(tempDir, false, logger)

	t.Run("saves file successfully", func(t *testing.T) {
		content := []byte("%PDF-1.3")

		path, err := fs.Save("INVOICE.pdf", content)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "INVOICE.pdf"), path)

		savedContent, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, savedContent)
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path, err := fs.Save(filepath.Join("2024", "05", "INVOICE.json"), []byte("{}"))

		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("keeps existing file", func(t *testing.T) {
		first, err := fs.Save("quote.json", []byte("original"))
		require.NoError(t, err)

		second, err := fs.Save("quote.json", []byte("updated"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "quote (1).json"), second)

		third, err := fs.Save("quote.json", []byte("again"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "quote (2).json"), third)

		content, _ := os.ReadFile(first)
		assert.Equal(t, []byte("original"), content)
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotEqual(t, '.', e.Name()[0], e.Name())
		}
	})
}

func TestLocalFileStorage_Overwrite(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, true, zap.NewNop())

	_, err := fs.Save("file.xlsx", []byte("original"))
	require.NoError(t, err)
	path, err := fs.Save("file.xlsx", []byte("updated"))
	require.NoError(t, err)

	content, _ := os.ReadFile(path)
	assert.Equal(t, []byte("updated"), content)
}

func TestLocalFileStorage_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, false, zap.NewNop())

	t.Run("accepts valid path within base", func(t *testing.T) {
		err := fs.ValidatePath(filepath.Join(tempDir, "exports", "file.pdf"))
		assert.NoError(t, err)
	})

	t.Run("rejects path outside base directory", func(t *testing.T) {
		err := fs.ValidatePath("/etc/passwd")
		assert.ErrorIs(t, err, ErrPathEscapesBase)
	})

	t.Run("rejects path traversal attempt", func(t *testing.T) {
		_, err := fs.Save(filepath.Join("..", "..", "etc", "passwd"), []byte("x"))
		assert.ErrorIs(t, err, ErrPathEscapesBase)
	})

	t.Run("rejects path with similar prefix", func(t *testing.T) {
		err := fs.ValidatePath(tempDir + "_malicious/file.txt")
		assert.ErrorIs(t, err, ErrPathEscapesBase)
	})

	t.Run("rejects the base itself", func(t *testing.T) {
		err := fs.ValidatePath(tempDir)
		assert.ErrorIs(t, err, ErrPathEscapesBase)
	})
}

func TestFileTypeOf(t *testing.T) {
	assert.Equal(t, FileTypeSnapshot, FileTypeOf("invoice.JSON"))
	assert.Equal(t, FileTypePDF, FileTypeOf("invoice.pdf"))
	assert.Equal(t, FileTypeExcel, FileTypeOf("invoice.xlsx"))
	assert.Equal(t, FileTypeImage, FileTypeOf("preview.png"))
	assert.Equal(t, FileTypeGeneric, FileTypeOf("notes.txt"))
	assert.Equal(t, "pdf", FileTypePDF.String())
}
