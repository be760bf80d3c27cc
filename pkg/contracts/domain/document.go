package domain

import (
	"sort"
	"time"
)

// Canonical section names produced by the structure detector.
const (
	SectionBQ       = "BQ"
	SectionNA       = "NA"
	SectionCombined = "COMBINED"
	SectionCentral  = "CENTRAL"
	SectionTotal    = "TOTAL"
)

// Section is a named, closed row interval of a sheet. Rows are 1-based and
// inclusive.
type Section struct {
	Name     string `json:"name" validate:"required"`
	StartRow int    `json:"start_row" validate:"min=1"`
	EndRow   int    `json:"end_row" validate:"gtefield=StartRow"`
}

// Contains reports whether row lies inside the section.
func (s Section) Contains(row int) bool {
	return row >= s.StartRow && row <= s.EndRow
}

// HeaderMap maps a 1-based column index to the field name found there.
type HeaderMap map[int]string

// Columns returns the mapped column indices in ascending order.
func (h HeaderMap) Columns() []int {
	cols := make([]int, 0, len(h))
	for c := range h {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

// Record is one keyed data row of a section. Fields keeps column order so
// comparisons and exports are deterministic.
type Record struct {
	Key    string           `json:"composite_key"`
	Row    int              `json:"row"`
	Fields []string         `json:"fields"`
	Values map[string]Value `json:"values"`
}

// NewRecord returns an empty record for the given sheet row.
func NewRecord(row int) Record {
	return Record{Row: row, Values: make(map[string]Value)}
}

// Set assigns a field value. A repeated field name keeps its first position
// and takes the latest value.
func (r *Record) Set(field string, v Value) {
	if r.Values == nil {
		r.Values = make(map[string]Value)
	}
	if _, exists := r.Values[field]; !exists {
		r.Fields = append(r.Fields, field)
	}
	r.Values[field] = v
}

// Get returns the value of field and whether the record has that field.
func (r Record) Get(field string) (Value, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// DocumentMetadata describes where a parsed document came from.
type DocumentMetadata struct {
	FilePath      string    `json:"file_path,omitempty"`
	SheetName     string    `json:"worksheet_name,omitempty"`
	TotalRows     int       `json:"total_rows"`
	TotalColumns  int       `json:"total_columns"`
	SectionsFound []string  `json:"sections_found"`
	ParsedAt      time.Time `json:"parsing_timestamp"`
	Error         string    `json:"error,omitempty"`
}

// ParsedDocument is the structured view of one report sheet.
type ParsedDocument struct {
	Sections      map[string][]Record  `json:"sections"`
	Headers       map[string]HeaderMap `json:"headers"`
	Metadata      DocumentMetadata     `json:"metadata"`
	TotalRecords  int                  `json:"total_records"`
	ParsingErrors []string             `json:"parsing_errors"`
}

// NewParsedDocument returns a document with initialised maps.
func NewParsedDocument() *ParsedDocument {
	return &ParsedDocument{
		Sections:      make(map[string][]Record),
		Headers:       make(map[string]HeaderMap),
		ParsingErrors: []string{},
	}
}

// SectionNames returns the parsed section names sorted alphabetically.
func (d *ParsedDocument) SectionNames() []string {
	names := make([]string, 0, len(d.Sections))
	for name := range d.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasSection reports whether the document parsed a section with that name.
func (d *ParsedDocument) HasSection(name string) bool {
	_, ok := d.Sections[name]
	return ok
}

// IsEmpty reports whether no section was parsed. Callers treat an empty
// document as a side that could not be read.
func (d *ParsedDocument) IsEmpty() bool {
	return d == nil || len(d.Sections) == 0
}

// StructureIssue is one advisory finding of a structure check.
type StructureIssue struct {
	ErrorType  string `json:"error_type"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Value      string `json:"value,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Structure issue types.
const (
	IssueEmptyFile           = "EMPTY_FILE"
	IssueNoSections          = "NO_SECTIONS"
	IssueNoHeaders           = "NO_HEADERS"
	IssueInsufficientHeaders = "INSUFFICIENT_HEADERS"
	IssueFileReadError       = "FILE_READ_ERROR"
)

// SectionPreview summarises one detected section for a preview.
type SectionPreview struct {
	StartRow    int       `json:"start_row"`
	EndRow      int       `json:"end_row"`
	Headers     HeaderMap `json:"headers"`
	HeaderCount int       `json:"header_count"`
}

// FilePreview is a quick look at a sheet's detected layout.
type FilePreview struct {
	FileName     string                    `json:"filename,omitempty"`
	SheetName    string                    `json:"worksheet_name,omitempty"`
	TotalRows    int                       `json:"total_rows"`
	TotalColumns int                       `json:"total_columns"`
	Sections     map[string]SectionPreview `json:"sections"`
	SampleData   [][]string                `json:"sample_data"`
	Error        string                    `json:"error,omitempty"`
}
