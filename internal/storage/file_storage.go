// Package storage writes exported invoice files to the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrPathEscapesBase is returned for target paths outside the storage directory
var ErrPathEscapesBase = errors.New("path escapes base directory")

// FileType represents the kind of export being stored
type FileType int

const (
	FileTypeGeneric FileType = iota
	FileTypeSnapshot
	FileTypePDF
	FileTypeExcel
	FileTypeImage
)

// String returns the file type name used in logs
func (t FileType) String() string {
	switch t {
	case FileTypeSnapshot:
		return "snapshot"
	case FileTypePDF:
		return "pdf"
	case FileTypeExcel:
		return "excel"
	case FileTypeImage:
		return "image"
	default:
		return "generic"
	}
}

// FileTypeOf guesses the file type from a file name extension
func FileTypeOf(name string) FileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FileTypeSnapshot
	case ".pdf":
		return FileTypePDF
	case ".xlsx":
		return FileTypeExcel
	case ".png", ".jpg", ".jpeg":
		return FileTypeImage
	default:
		return FileTypeGeneric
	}
}

// FileStorage defines the interface for export storage operations
type FileStorage interface {
	// Save writes content to name inside the storage directory and returns the path written.
	Save(name string, content []byte) (string, error)

	// ValidatePath checks path security (no traversal, within base)
	ValidatePath(fullPath string) error
}

// LocalFileStorage implements FileStorage for local filesystem
type LocalFileStorage struct {
	baseDir   string
	overwrite bool
	logger    *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage.
// Unless overwrite is set, an existing file is kept and the new one gets a numbered name.
func NewLocalFileStorage(baseDir string, overwrite bool, logger *zap.Logger) *LocalFileStorage {
	return &LocalFileStorage{
		baseDir:   baseDir,
		overwrite: overwrite,
		logger:    logger,
	}
}

// Save writes content to name inside the storage directory
func (s *LocalFileStorage) Save(name string, content []byte) (string, error) {
	fullPath := filepath.Join(s.baseDir, name)
	if err := s.ValidatePath(fullPath); err != nil {
		return "", err
	}

	// Create parent directories
	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if !s.overwrite {
		fullPath = freeName(fullPath)
	}

	if err := writeAtomic(fullPath, content); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved successfully",
		zap.String("path", fullPath),
		zap.Int("size", len(content)),
		zap.Stringer("file_type", FileTypeOf(fullPath)))

	return fullPath, nil
}

// ValidatePath checks that the path is safe and within baseDir
func (s *LocalFileStorage) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	// Equal to base is not a file name
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathEscapesBase, fullPath)
	}

	return nil
}

// freeName returns path, or "name (n).ext" for the first n not yet taken
func freeName(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// writeAtomic writes to a temporary file next to path and renames it into place
func writeAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
