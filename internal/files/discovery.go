package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "reportqa/internal/errors"
	"reportqa/internal/infrastructure"
	"reportqa/internal/validation"
)

// FileInfo represents information about a discovered workbook
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Pair is a source workbook and the destination workbook with the same name
type Pair struct {
	Name   string
	Source FileInfo
	Dest   FileInfo
}

// Pairing is the outcome of matching two directories
type Pairing struct {
	Pairs []Pair
	// SourceOnly and DestOnly hold workbook names without a counterpart
	SourceOnly []string
	DestOnly   []string
}

// Discovery finds workbooks on disk
type Discovery struct {
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{logger: infrastructure.WithComponent(logger, "discovery")}
}

// FindWorkbooks lists the Excel workbooks directly inside dir, sorted by
// name. Office lock files (~$name.xlsx) are skipped.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("directory %s", dir)).WithContext("path", dir)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read directory %s", dir), err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") || !IsWorkbook(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	d.logger.Debug("Workbooks discovered",
		slog.String("directory", dir),
		slog.Int("count", len(files)))
	return files, nil
}

// PairWorkbooks matches the workbooks of sourceDir and destDir by file name
// without extension, ignoring case. Pairs keep the source order.
func (d *Discovery) PairWorkbooks(sourceDir, destDir string) (*Pairing, error) {
	sources, err := d.FindWorkbooks(sourceDir)
	if err != nil {
		return nil, err
	}
	dests, err := d.FindWorkbooks(destDir)
	if err != nil {
		return nil, err
	}

	// The first file of a base name wins; later ones stay unpaired
	byName := make(map[string]FileInfo, len(dests))
	for _, f := range dests {
		if _, dup := byName[pairKey(f.Name)]; !dup {
			byName[pairKey(f.Name)] = f
		}
	}

	pairing := &Pairing{Pairs: []Pair{}}
	paired := make(map[string]bool, len(dests))
	for _, src := range sources {
		key := pairKey(src.Name)
		dst, ok := byName[key]
		if !ok || paired[dst.Path] {
			pairing.SourceOnly = append(pairing.SourceOnly, src.Name)
			continue
		}
		paired[dst.Path] = true
		pairing.Pairs = append(pairing.Pairs, Pair{Name: BaseName(src.Name), Source: src, Dest: dst})
	}
	for _, f := range dests {
		if !paired[f.Path] {
			pairing.DestOnly = append(pairing.DestOnly, f.Name)
		}
	}

	d.logger.Info("Workbooks paired",
		slog.Int("pairs", len(pairing.Pairs)),
		slog.Int("source_only", len(pairing.SourceOnly)),
		slog.Int("dest_only", len(pairing.DestOnly)))
	return pairing, nil
}

// IsWorkbook reports whether name has an Excel workbook extension
func IsWorkbook(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range validation.ExcelExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// BaseName strips the directory and extension from path
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func pairKey(name string) string {
	return strings.ToLower(BaseName(name))
}
