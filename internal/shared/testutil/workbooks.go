package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// WriteWorkbook saves rows to dir/name as the first sheet of a new workbook,
// starting at A1. merges are cell ranges such as "A1:D1".
func WriteWorkbook(t *testing.T, dir, name string, rows [][]any, merges ...string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	for _, m := range merges {
		start, end, ok := strings.Cut(m, ":")
		if !ok {
			end = start
		}
		require.NoError(t, f.MergeCell(sheet, start, end))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// ReportWorkbook writes a one-section daily report: a merged "Baqala (BQ)"
// title, a header row, a units row and one data row for Central/Michael/MGG.
func ReportWorkbook(t *testing.T, dir, name string, daySale any) string {
	t.Helper()

	return WriteWorkbook(t, dir, name, [][]any{
		{"Baqala (BQ)"},
		{"Region", "Supervisor", "Area", "Day Sale"},
		{"", "", "", "SAR"},
		{"Central", "Michael", "MGG", daySale},
	}, "A1:D1")
}
