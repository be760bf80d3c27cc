package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "reportqa/internal/errors"
	"reportqa/pkg/contracts/domain"
)

// ExcelExtensions are the workbook formats the loader can open
var ExcelExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

var bytesPerMB = decimal.NewFromInt(1024 * 1024)

// FileValidator checks input and output paths before a run touches them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewValidationError("file path is empty", nil)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError(fmt.Sprintf("file %s", path)).WithContext("path", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewValidationError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewValidationError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExcelFile checks that path is a readable workbook the loader
// understands. Legacy .xls files and Office lock files are rejected.
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !isExcelExtension(ext) {
		v.logger.Error("File is not an Excel file",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewValidationError(
			fmt.Sprintf("file %s is not an Excel workbook (extension: %s)", path, ext), nil).
			WithContext("extension", ext)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", path))
		return apperrors.NewValidationError(fmt.Sprintf("file %s is a temporary Excel file", path), nil)
	}

	return nil
}

// ValidateOutputDirectory ensures the directory that will hold a report
// exists and is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// Describe returns the file information reported alongside a validation.
// A missing file is described with Exists=false rather than an error.
func Describe(path string) domain.FileInfo {
	info := domain.FileInfo{
		FileName: filepath.Base(path),
		Path:     path,
		FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	}

	stat, err := os.Stat(path)
	if err != nil || stat.IsDir() {
		return info
	}

	info.Exists = true
	info.SizeBytes = stat.Size()
	info.SizeMB = decimal.NewFromInt(stat.Size()).Div(bytesPerMB).Round(2).InexactFloat64()
	info.ModifiedAt = stat.ModTime()
	return info
}

func isExcelExtension(ext string) bool {
	for _, e := range ExcelExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
