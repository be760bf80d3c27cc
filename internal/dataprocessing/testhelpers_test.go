package dataprocessing

import (
	"testing"

	"reportqa/internal/grid"
	"reportqa/internal/shared/testutil"
)

var reportHeaders = []string{"Region", "Supervisor", "Area", "Day Sale"}

// reportGrid lays out sections the way the daily report does: a title row,
// a header row, a units row, then data.
func reportGrid(sections ...[][]string) *grid.Grid {
	var rows [][]string
	for _, s := range sections {
		rows = append(rows, s...)
	}
	return grid.FromStrings(rows)
}

func section(title string, data ...[]string) [][]string {
	rows := [][]string{
		{title},
		reportHeaders,
		{"", "", "", "SAR"},
	}
	return append(rows, data...)
}

func testParser(t *testing.T) (*Parser, *testutil.BufferedSlogHandler) {
	logger, logs := testutil.NewTestLogger(t)
	return NewParser(logger), logs
}
