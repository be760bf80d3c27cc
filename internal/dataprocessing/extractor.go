package dataprocessing

import (
	"fmt"
	"hash/fnv"
	"strings"

	"reportqa/internal/grid"
	"reportqa/pkg/contracts/domain"
)

// Identifier allow-lists used to recognise data rows that carry no numbers.
var (
	regionIdentifiers     = []string{"central"}
	supervisorIdentifiers = map[string]bool{"michael": true, "sms": true, "mic": true, "s": true}
	areaIdentifiers       = map[string]bool{"mgg": true, "gmg": true, "mg": true, "m": true}
)

// identifierRole classifies a field name as region, supervisor or area. The
// checks run in that order so a name matching several takes the first.
type identifierRole int

const (
	roleNone identifierRole = iota
	roleRegion
	roleSupervisor
	roleArea
)

func fieldRole(field string) identifierRole {
	name := strings.ToLower(field)
	switch {
	case strings.Contains(name, "region"):
		return roleRegion
	case strings.Contains(name, "supervis"):
		return roleSupervisor
	case strings.Contains(name, "area"):
		return roleArea
	default:
		return roleNone
	}
}

// Extract turns rows start..end of a section into keyed records. A row is
// kept when it has at least one non-empty field and looks like data: it
// carries a known identifier or a plain number. Records are numbered in the
// order they are kept, which only matters for the fallback key.
func Extract(src grid.Source, start, end int, headers domain.HeaderMap) []domain.Record {
	records := []domain.Record{}
	if len(headers) == 0 || end < start {
		return records
	}

	cols := headers.Columns()
	for row := start; row <= end; row++ {
		rec := domain.NewRecord(row)
		meaningful := false
		for _, col := range cols {
			v := NormalizeCell(grid.Value(src, row, col))
			rec.Set(strings.TrimSpace(headers[col]), v)
			if !v.IsNull() {
				meaningful = true
			}
		}

		if !meaningful || !isDataRow(rec) {
			continue
		}
		rec.Key = CompositeKey(rec, len(records)+1)
		records = append(records, rec)
	}
	return records
}

// isDataRow reports whether the record carries a known identifier value or
// any plain number
func isDataRow(rec domain.Record) bool {
	for _, field := range rec.Fields {
		v := rec.Values[field]
		if v.IsNumber() {
			return true
		}
		if v.IsNull() {
			continue
		}
		text := strings.ToLower(strings.TrimSpace(v.String()))
		switch fieldRole(field) {
		case roleRegion:
			if containsAny(text, regionIdentifiers) {
				return true
			}
		case roleSupervisor:
			if supervisorIdentifiers[text] {
				return true
			}
		case roleArea:
			if areaIdentifiers[text] {
				return true
			}
		}
	}
	return false
}

// CompositeKey builds a record identity from its region, supervisor and area
// values joined by "_" with spaces replaced by "_". When a role is covered by
// several fields the last non-empty one wins. A record with none of them gets
// "row_<seq>_<hash>", where seq is its ordinal within the section and hash is
// an FNV-1a digest of its field values.
func CompositeKey(rec domain.Record, seq int) string {
	var region, supervisor, area string
	for _, field := range rec.Fields {
		v := rec.Values[field]
		if v.IsNull() {
			continue
		}
		text := strings.TrimSpace(v.String())
		switch fieldRole(field) {
		case roleRegion:
			region = text
		case roleSupervisor:
			supervisor = text
		case roleArea:
			area = text
		}
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{region, supervisor, area} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.ReplaceAll(strings.Join(parts, "_"), " ", "_")
	}

	h := fnv.New64a()
	for _, field := range rec.Fields {
		fmt.Fprintf(h, "%s=%s;", field, rec.Values[field].String())
	}
	return fmt.Sprintf("row_%d_%x", seq, h.Sum64())
}
