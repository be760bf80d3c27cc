package files

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "reportqa/internal/errors"
	"reportqa/internal/infrastructure"
	"reportqa/internal/validation"
)

// Writer stores JSON documents such as validation reports
type Writer struct {
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewWriter creates a writer that checks target directories with validator
func NewWriter(validator *validation.FileValidator, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = validation.NewFileValidator(logger)
	}
	return &Writer{validator: validator, logger: infrastructure.WithComponent(logger, "writer")}
}

// WriteJSON encodes v as indented JSON into path. The document is written
// to a temporary file in the same directory, then renamed over path.
func (w *Writer) WriteJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := w.validator.ValidateOutputDirectory(dir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".reportqa-*.json")
	if err != nil {
		return apperrors.NewStorageError("failed to create file", err).WithContext("path", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("failed to write file", err).WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("failed to write file", err).WithContext("path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.NewStorageError("failed to move file into place", err).WithContext("path", path)
	}

	w.logger.Debug("File written",
		slog.String("path", path),
		slog.Int("size_bytes", len(data)))
	return nil
}
