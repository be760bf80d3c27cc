// Package grid holds a worksheet as a rectangular array of cells plus its
// merged ranges, and resolves effective cell values the way a spreadsheet
// displays them.
//
// Coordinates are 1-based, matching spreadsheet row numbers and column
// indices (A=1).
package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source is the read-only view of a sheet consumed by the parser.
type Source interface {
	// Dimensions returns the number of rows and columns in use
	Dimensions() (rows, cols int, err error)
	// Cell returns the raw value stored at row/col, nil when empty
	Cell(row, col int) (any, error)
	// MergedRanges returns every merged rectangle of the sheet
	MergedRanges() []Range
}

// Range is an inclusive merged rectangle. The value lives in its top-left cell.
type Range struct {
	StartRow int `json:"start_row"`
	StartCol int `json:"start_col"`
	EndRow   int `json:"end_row"`
	EndCol   int `json:"end_col"`
}

// Contains reports whether row/col lies inside the range
func (r Range) Contains(row, col int) bool {
	return row >= r.StartRow && row <= r.EndRow && col >= r.StartCol && col <= r.EndCol
}

// Grid is the in-memory Source. Cells hold nil, string, bool or a numeric
// type.
type Grid struct {
	Sheet  string
	Path   string
	cells  [][]any
	cols   int
	merged []Range
}

// New builds a grid from row-major values. Ragged rows are allowed.
func New(rows [][]any) *Grid {
	g := &Grid{cells: make([][]any, len(rows))}
	for i, row := range rows {
		g.cells[i] = append([]any(nil), row...)
		if len(row) > g.cols {
			g.cols = len(row)
		}
	}
	return g
}

// FromStrings builds a grid from text rows; empty strings become empty cells.
func FromStrings(rows [][]string) *Grid {
	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = make([]any, len(row))
		for j, s := range row {
			if s != "" {
				values[i][j] = s
			}
		}
	}
	return New(values)
}

// Set stores v at row/col, growing the grid as needed
func (g *Grid) Set(row, col int, v any) {
	if row < 1 || col < 1 {
		return
	}
	for len(g.cells) < row {
		g.cells = append(g.cells, nil)
	}
	r := g.cells[row-1]
	for len(r) < col {
		r = append(r, nil)
	}
	r[col-1] = v
	g.cells[row-1] = r
	if col > g.cols {
		g.cols = col
	}
}

// Merge records a merged rectangle. Corners may be given in any order.
func (g *Grid) Merge(startRow, startCol, endRow, endCol int) error {
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}
	if startRow < 1 || startCol < 1 {
		return fmt.Errorf("merged range %d:%d-%d:%d out of bounds", startRow, startCol, endRow, endCol)
	}
	g.merged = append(g.merged, Range{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol})
	return nil
}

func (g *Grid) Dimensions() (int, int, error) {
	if g == nil {
		return 0, 0, fmt.Errorf("grid is nil")
	}
	return len(g.cells), g.cols, nil
}

func (g *Grid) Cell(row, col int) (any, error) {
	if row < 1 || col < 1 {
		return nil, fmt.Errorf("cell %d:%d out of bounds", row, col)
	}
	if row > len(g.cells) || col > len(g.cells[row-1]) {
		return nil, nil
	}
	return g.cells[row-1][col-1], nil
}

func (g *Grid) MergedRanges() []Range {
	return g.merged
}

// Value returns the effective value of row/col. A cell inside a merged range
// resolves to the range's top-left value. Errors and panics raised by the
// source are swallowed and yield nil so a scan never aborts on one bad cell.
func Value(src Source, row, col int) (v any) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
		}
	}()

	if src == nil {
		return nil
	}
	for _, mr := range src.MergedRanges() {
		if mr.Contains(row, col) {
			row, col = mr.StartRow, mr.StartCol
			break
		}
	}
	val, err := src.Cell(row, col)
	if err != nil {
		return nil
	}
	return val
}

// Text returns the effective value of row/col as display text, "" when empty
// or when rendering the value panics
func Text(src Source, row, col int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	return FormatValue(Value(src, row, col))
}

// FormatValue renders a raw cell value as text. Whole floats print without a
// fractional part.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RowText returns the display text of every column of row, trimmed
func RowText(src Source, row, cols int) []string {
	out := make([]string, cols)
	for c := 1; c <= cols; c++ {
		out[c-1] = strings.TrimSpace(Text(src, row, c))
	}
	return out
}
