package comparison

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"reportqa/internal/config"
	"reportqa/internal/infrastructure"
	"reportqa/internal/shared/testutil"
	"reportqa/pkg/contracts/domain"
)

func bqRecord(daySale string) domain.Record {
	return rec("Central_Michael_MGG",
		"Region", "Central",
		"Supervisor", "Michael",
		"Area", "MGG",
		"Day Sale", daySale)
}

func TestCompare_EndToEnd(t *testing.T) {
	c, logs := testComparator(t, nil)
	source := doc(map[string][]domain.Record{"BQ": {bqRecord("1000")}})
	dest := doc(map[string][]domain.Record{"BQ": {bqRecord("1050")}})

	out := c.Compare(context.Background(), source, dest)

	require.Len(t, out.Results, 1)
	r := out.Results[0]
	assert.Equal(t, "Central_Michael_MGG", r.Key)
	assert.Equal(t, "BQ", r.Section)
	assert.Equal(t, "Day Sale", r.Field)
	assert.Equal(t, domain.StatusMismatch, r.Status)
	assert.Equal(t, domain.SeverityHigh, r.Severity)
	require.NotNil(t, r.Difference)
	assert.Equal(t, -50.0, *r.Difference)
	assert.True(t, domain.Number(1000).Equal(r.SourceValue))
	assert.True(t, domain.Number(1050).Equal(r.DestValue))

	assert.Equal(t, domain.SectionStats{RecordsCompared: 1, FieldsCompared: 4, FieldMatches: 3}, out.Stats.Sections["BQ"])
	assert.Empty(t, out.CalculationValidations)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "comparison completed")
	testutil.AssertLogAttr(t, logs, "component", "comparator")
}

func TestCompare_IdenticalDocuments(t *testing.T) {
	c, _ := testComparator(t, nil)
	d := doc(map[string][]domain.Record{
		"BQ": {bqRecord("1000")},
		"NA": {rec("Central_SMS_GMG", "Day Sale", "12.5%")},
	})

	out := c.Compare(context.Background(), d, d)
	assert.Empty(t, out.Results)
	assert.Equal(t, 5, out.Stats.Totals().FieldMatches)

	summary := WithStats(GenerateSummary(out.Results, out.CalculationValidations), out.Stats)
	assert.Equal(t, 100.0, summary.OverallMatchPercentage)
	assert.Equal(t, 100.0, summary.FieldMatchPercentage)
}

func TestCompare_MissingRecords(t *testing.T) {
	c, _ := testComparator(t, nil)
	source := doc(map[string][]domain.Record{"BQ": {rec("k2", "Day Sale", "1"), rec("k1", "Day Sale", "1")}})
	dest := doc(map[string][]domain.Record{"BQ": {rec("k3", "Day Sale", "1"), rec("k1", "Day Sale", "1")}})

	out := c.Compare(context.Background(), source, dest)

	var got []string
	for _, r := range out.Results {
		if r.Field == domain.FieldEntireRecord {
			got = append(got, r.Key+":"+string(r.Status))
			assert.Equal(t, domain.SeverityHigh, r.Severity)
		}
	}
	assert.Equal(t, []string{"k2:MISSING_IN_DEST", "k3:MISSING_IN_SOURCE"}, got)
	assert.Equal(t, 1, out.Stats.Sections["BQ"].RecordsCompared)
}

func TestCompare_FieldUnion(t *testing.T) {
	c, _ := testComparator(t, nil)
	source := doc(map[string][]domain.Record{"BQ": {rec("k", "Day Sale", "1", "Notes", "ok")}})
	dest := doc(map[string][]domain.Record{"BQ": {rec("k", "WTD Sale", "7", "Day Sale", "1")}})

	out := c.Compare(context.Background(), source, dest)

	require.Len(t, out.Results, 2)
	assert.Equal(t, "Notes", out.Results[0].Field)
	assert.Nil(t, out.Results[0].Difference)
	assert.Equal(t, domain.SeverityMedium, out.Results[0].Severity)
	assert.Equal(t, "WTD Sale", out.Results[1].Field)
	assert.True(t, out.Results[1].SourceValue.IsNull())
	assert.Equal(t, 3, out.Stats.Sections["BQ"].FieldsCompared)
}

func TestCompare_OrderAndToggles(t *testing.T) {
	source := doc(map[string][]domain.Record{
		"BQ":       {rec("a", "Day Sale", "300"), rec("b", "Day Sale", "1")},
		"NA":       {rec("n", "Day Sale", "200")},
		"COMBINED": {rec("t", "Day Sale", "500")},
	})
	dest := doc(map[string][]domain.Record{
		"BQ":       {rec("a", "Day Sale", "300")},
		"COMBINED": {rec("t", "Day Sale", "450")},
	})

	c, _ := testComparator(t, nil)
	out := c.Compare(context.Background(), source, dest)

	var keys []string
	for _, r := range out.Results {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"SECTION_NA", "COUNT_BQ", "b", "t", domain.KeyTotalCalculation}, keys)
	require.Len(t, out.CalculationValidations, 1)
	assert.Equal(t, "Sum of BQ sections", out.CalculationValidations[0].FormulaUsed)

	bare, _ := testComparator(t, func(cfg *config.ComparisonConfig) {
		cfg.EnableStructureValidation = false
		cfg.EnableCalculationValidation = false
	})
	out = bare.Compare(context.Background(), source, dest)

	keys = nil
	for _, r := range out.Results {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"b", "t"}, keys)
	assert.Empty(t, out.CalculationValidations)
}

func TestCompare_NilDocuments(t *testing.T) {
	c, _ := testComparator(t, nil)
	out := c.Compare(context.Background(), nil, doc(map[string][]domain.Record{"BQ": {rec("a")}}))

	require.Len(t, out.Results, 1)
	assert.Equal(t, "SECTION_BQ", out.Results[0].Key)
	assert.Equal(t, domain.StatusMissingInSource, out.Results[0].Status)
	assert.NotNil(t, out.Stats.Sections)
}

func TestCompare_Tolerance(t *testing.T) {
	source := doc(map[string][]domain.Record{"BQ": {rec("k", "Day Sale", "100")}})
	dest := doc(map[string][]domain.Record{"BQ": {rec("k", "Day Sale", "100.4")}})

	strict, _ := testComparator(t, nil)
	assert.Len(t, strict.Compare(context.Background(), source, dest).Results, 1)

	loose, _ := testComparator(t, func(cfg *config.ComparisonConfig) { cfg.Tolerance = 0.5 })
	assert.Empty(t, loose.Compare(context.Background(), source, dest).Results)
}

func TestCompare_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreateValidationMetrics(provider.Meter("test"))
	require.NoError(t, err)

	c, _ := testComparator(t, nil)
	c.WithMetrics(metrics)
	c.Compare(context.Background(),
		doc(map[string][]domain.Record{"BQ": {bqRecord("1000")}, "NA": {rec("n", "Day Sale", "5")}, "COMBINED": {rec("t", "Day Sale", "1005")}}),
		doc(map[string][]domain.Record{"BQ": {bqRecord("1050")}, "NA": {rec("n", "Day Sale", "5")}, "COMBINED": {rec("t", "Day Sale", "1005")}}),
	)

	totals, err := (&infrastructure.OTelProviders{Reader: reader}).CollectMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, totals["reportqa_discrepancies_total"])
	assert.Equal(t, 1.0, totals["reportqa_calculation_checks_total"])
}
