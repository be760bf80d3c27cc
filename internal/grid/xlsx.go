package grid

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "reportqa/internal/errors"
)

// WorkbookInfo summarises a workbook without parsing its contents
type WorkbookInfo struct {
	Path         string   `json:"path"`
	Sheets       []string `json:"sheets"`
	SheetCount   int      `json:"sheet_count"`
	ActiveSheet  string   `json:"active_sheet"`
	MaxRow       int      `json:"max_row"`
	MaxColumn    int      `json:"max_column"`
	MergedRanges int      `json:"merged_cells_count"`
}

// LoadFile reads one sheet of an .xlsx workbook into a Grid. An empty sheet
// name selects the workbook's active sheet. Cell values are read raw, so a
// percent-formatted 0.125 stays 0.125.
func LoadFile(ctx context.Context, path, sheet string) (*Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err = resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read rows", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := FromStrings(trimTrailingEmptyRows(rows))
	g.Sheet = sheet
	g.Path = path

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read merged cells", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}
	addMerges(g, merges)

	return g, nil
}

// addMerges records the merged ranges of a sheet on g. Ranges with
// unparsable or out-of-bounds references are skipped.
func addMerges(g *Grid, merges []excelize.MergeCell) {
	for _, mc := range merges {
		r, err := mergeRange(mc)
		if err != nil {
			continue
		}
		if err := g.Merge(r.StartRow, r.StartCol, r.EndRow, r.EndCol); err != nil {
			continue
		}
	}
}

// Inspect reports the sheets and extents of a workbook
func Inspect(path string) (*WorkbookInfo, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	active := f.GetSheetName(f.GetActiveSheetIndex())
	info := &WorkbookInfo{
		Path:        path,
		Sheets:      f.GetSheetList(),
		ActiveSheet: active,
	}
	info.SheetCount = len(info.Sheets)

	rows, err := f.GetRows(active, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read rows", err).WithContext("path", path)
	}
	rows = trimTrailingEmptyRows(rows)
	info.MaxRow = len(rows)
	for _, row := range rows {
		if len(row) > info.MaxColumn {
			info.MaxColumn = len(row)
		}
	}

	merges, err := f.GetMergeCells(active)
	if err == nil {
		info.MergedRanges = len(merges)
	}
	return info, nil
}

func openWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("workbook %q", path))
		}
		return nil, apperrors.NewValidationError("cannot access workbook", err).WithContext("path", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	return f, nil
}

func resolveSheet(f *excelize.File, sheet string) (string, error) {
	if sheet == "" {
		return f.GetSheetName(f.GetActiveSheetIndex()), nil
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("worksheet %q", sheet))
	}
	return sheet, nil
}

func mergeRange(mc excelize.MergeCell) (Range, error) {
	startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
	if err != nil {
		return Range{}, err
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
	if err != nil {
		return Range{}, err
	}
	return Range{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol}, nil
}

// trimTrailingEmptyRows drops blank rows excelize reports past the last
// populated row
func trimTrailingEmptyRows(rows [][]string) [][]string {
	last := len(rows)
	for last > 0 && isBlankRow(rows[last-1]) {
		last--
	}
	return rows[:last]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
