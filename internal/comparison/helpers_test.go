package comparison

import (
	"testing"

	"reportqa/internal/config"
	"reportqa/internal/shared/testutil"
	"reportqa/pkg/contracts/domain"
)

// rec builds a record with fields in argument order. Values are given as
// display text and normalized the way the parser does it.
func rec(key string, kv ...string) domain.Record {
	r := domain.NewRecord(1)
	r.Key = key
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], domain.ParseText(kv[i+1]))
	}
	return r
}

func doc(sections map[string][]domain.Record) *domain.ParsedDocument {
	d := domain.NewParsedDocument()
	for name, records := range sections {
		d.Sections[name] = records
		d.TotalRecords += len(records)
	}
	return d
}

func testComparator(t *testing.T, mutate func(*config.ComparisonConfig)) (*Comparator, *testutil.BufferedSlogHandler) {
	cfg := config.DefaultComparisonConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	logger, logs := testutil.NewTestLogger(t)
	return NewComparator(cfg, logger), logs
}
