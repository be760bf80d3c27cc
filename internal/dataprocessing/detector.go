package dataprocessing

import (
	"sort"
	"strings"
	"unicode"

	"reportqa/internal/grid"
	"reportqa/pkg/contracts/domain"
)

// headerSearchRows is how many rows from a section's start are scanned for
// column headers.
const headerSearchRows = 5

// sectionKeywords ties a canonical section name to the keywords that open it
type sectionKeywords struct {
	Name     string
	Keywords []string
}

// sectionCatalog is evaluated in order; the first entry whose keyword occurs
// in a cell wins.
var sectionCatalog = []sectionKeywords{
	{Name: domain.SectionBQ, Keywords: []string{"baqala", "bq"}},
	{Name: domain.SectionNA, Keywords: []string{"national accounts", "national_accounts", "na"}},
	{Name: domain.SectionCombined, Keywords: []string{"combined", "total", "summary"}},
}

var headerKeywords = []string{
	"region", "supervisor", "area", "wk slab", "day sale", "day slab",
	"day stale", "stale %", "wtd slab", "wtd sale", "wtd ach%",
	"wtd stale", "stale%", "wk sale ly", "wk grw%", "ytd ly", "ytd ty", "grw%",
}

// matchSection returns the catalog section whose keyword occurs in text
func matchSection(text string) (string, bool) {
	for _, sk := range sectionCatalog {
		if containsAny(text, sk.Keywords) {
			return sk.Name, true
		}
	}
	return "", false
}

// detectorState is the scan state: either no section is open, or one named
// section is open since start.
type detectorState struct {
	open  bool
	name  string
	start int
}

// step folds one section-title row into the state. It returns the interval
// closed by the transition, if any.
func (s detectorState) step(row int, name string) (detectorState, domain.Section, bool) {
	next := detectorState{open: true, name: name, start: row}
	if !s.open {
		return next, domain.Section{}, false
	}
	return next, domain.Section{Name: s.name, StartRow: s.start, EndRow: row - 1}, true
}

// finish closes the open section at lastRow
func (s detectorState) finish(lastRow int) (domain.Section, bool) {
	if !s.open {
		return domain.Section{}, false
	}
	return domain.Section{Name: s.name, StartRow: s.start, EndRow: lastRow}, true
}

// DetectSections finds the named sections of a sheet. A row opens a section
// when its first cell containing a catalog keyword is found; the previously
// open section ends on the row above. A name seen again replaces its earlier
// interval. The result is ordered by start row and pairwise disjoint.
func DetectSections(src grid.Source) []domain.Section {
	rows, cols, err := safeDimensions(src)
	if err != nil || rows == 0 {
		return nil
	}

	byName := make(map[string]domain.Section)
	var state detectorState

	for row := 1; row <= rows; row++ {
		name, ok := rowSection(src, row, cols)
		if !ok {
			continue
		}
		var closed domain.Section
		var didClose bool
		state, closed, didClose = state.step(row, name)
		if didClose {
			byName[closed.Name] = closed
		}
	}
	if last, ok := state.finish(rows); ok {
		byName[last.Name] = last
	}

	sections := make([]domain.Section, 0, len(byName))
	for _, s := range byName {
		sections = append(sections, s)
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].StartRow < sections[j].StartRow })
	return sections
}

// rowSection returns the section opened by the first matching cell of row
func rowSection(src grid.Source, row, cols int) (string, bool) {
	for col := 1; col <= cols; col++ {
		text := keywordText(grid.Text(src, row, col))
		if text == "" {
			continue
		}
		if name, ok := matchSection(text); ok {
			return name, true
		}
	}
	return "", false
}

// DetectHeaders maps columns to field names within the first rows of a
// section. Cells containing a header keyword are taken first, the longest
// text winning per column. Remaining columns take the first cell that does
// not look like plain numeric data.
func DetectHeaders(src grid.Source, start, end int) domain.HeaderMap {
	headers := make(domain.HeaderMap)
	_, cols, err := safeDimensions(src)
	if err != nil || end < start {
		return headers
	}

	search := end - start + 1
	if search > headerSearchRows {
		search = headerSearchRows
	}
	last := start + search - 1

	for row := start; row <= last; row++ {
		for col := 1; col <= cols; col++ {
			text := strings.TrimSpace(grid.Text(src, row, col))
			if text == "" {
				continue
			}
			if !containsAny(keywordText(text), headerKeywords) {
				continue
			}
			if current, ok := headers[col]; !ok || len(text) > len(current) {
				headers[col] = text
			}
		}
	}

	for row := start; row <= last; row++ {
		for col := 1; col <= cols; col++ {
			if _, assigned := headers[col]; assigned {
				continue
			}
			text := strings.TrimSpace(grid.Text(src, row, col))
			if text == "" {
				continue
			}
			if looksLikeHeader(text) {
				headers[col] = text
			}
		}
	}

	return headers
}

// looksLikeHeader reports whether text is not plain numeric data: it is not
// all digits once separators, signs, parentheses and percent signs are
// removed, or it carries a percent sign or a letter.
func looksLikeHeader(text string) bool {
	if strings.Contains(text, "%") {
		return true
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	stripped := strings.NewReplacer(",", "", ".", "", "-", "", "(", "", ")", "", "%", "").Replace(text)
	return !isDigits(stripped)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// safeDimensions reads the grid extents, turning a panic into an error
func safeDimensions(src grid.Source) (rows, cols int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errUnreadableGrid
		}
	}()
	if src == nil {
		return 0, 0, errUnreadableGrid
	}
	return src.Dimensions()
}
