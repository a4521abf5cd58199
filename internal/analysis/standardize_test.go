package analysis_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/objones25/marquee/internal/analysis"
	"github.com/objones25/marquee/internal/testutil"
)

const eps = 1e-5

func column(t analysis.Table, j int) []float64 {
	col := make([]float64, t.Len())
	for i, row := range t.Rows {
		col[i] = row[j]
	}
	return col
}

func TestStandardizeMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	features := []string{"budget", "gross", "score"}
	records := make([]analysis.Record, 200)
	for i := range records {
		records[i] = analysis.Record{
			"budget": 1e6 + rng.Float64()*5e7,
			"gross":  rng.NormFloat64()*1e8 + 3e8,
			"score":  rng.Intn(100),
		}
	}

	std := analysis.Standardize(analysis.NewTable(records, features), eps)
	require.Equal(t, len(records), std.Len())
	require.Len(t, std.Means, len(features))
	require.Len(t, std.StdDevs, len(features))

	for j, name := range features {
		col := column(std.Table, j)
		assert.InDelta(t, 0, stat.Mean(col, nil), 1e-9, "mean of %s", name)
		assert.InDelta(t, 1, math.Sqrt(stat.PopVariance(col, nil)), 1e-9, "stddev of %s", name)
	}
}

func TestStandardizeConstantFeature(t *testing.T) {
	records := []analysis.Record{
		{"a": 0.1, "b": 1},
		{"a": 0.1, "b": 2},
		{"a": 0.1, "b": 3},
	}

	std := analysis.Standardize(analysis.NewTable(records, []string{"a", "b"}), eps)
	for i := range records {
		assert.Equal(t, 0.0, std.Rows[i][0], "row %d", i)
	}

	sd, ok := std.StdDev("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, sd)
}

func TestStandardizeNonNumeric(t *testing.T) {
	records := []analysis.Record{
		{"a": 1},
		{"a": "unknown"},
		{"a": 3},
	}

	std := analysis.Standardize(analysis.NewTable(records, []string{"a"}), eps)

	mean, ok := std.Mean("a")
	require.True(t, ok)
	assert.Equal(t, 2.0, mean)

	sd, ok := std.StdDev("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, sd)

	// the non-numeric value is kept as 0 before centering
	assert.Equal(t, []float64{-1, -2, 1}, column(std.Table, 0))
}

func TestStandardizeDegenerate(t *testing.T) {
	t.Run("no records", func(t *testing.T) {
		std := analysis.Standardize(analysis.NewTable(nil, []string{"a"}), eps)
		assert.Equal(t, 0, std.Len())
		assert.Empty(t, std.Means)
		assert.Empty(t, std.StdDevs)
		_, ok := std.Mean("a")
		assert.False(t, ok)
	})

	t.Run("no features", func(t *testing.T) {
		std := analysis.Standardize(analysis.NewTable([]analysis.Record{{"a": 1}}, nil), eps)
		assert.Equal(t, 0, std.Len())
		assert.Empty(t, std.Means)
	})

	t.Run("single record", func(t *testing.T) {
		std := analysis.Standardize(analysis.NewTable([]analysis.Record{{"a": 12}}, []string{"a"}), eps)
		require.Equal(t, 1, std.Len())
		assert.Equal(t, 0.0, std.Rows[0][0])
		assert.Equal(t, []float64{1}, std.StdDevs)
	})

	t.Run("all non-numeric", func(t *testing.T) {
		records := []analysis.Record{{"a": "x"}, {"a": nil}}
		std := analysis.Standardize(analysis.NewTable(records, []string{"a"}), eps)
		assert.Equal(t, []float64{0, 0}, column(std.Table, 0))
	})
}

func TestStandardizeNearConstantFeature(t *testing.T) {
	// spread below eps is clamped to 1, but values still differ
	records := []analysis.Record{{"a": 1.0}, {"a": 1.000001}}

	std := analysis.Standardize(analysis.NewTable(records, []string{"a"}), eps)

	sd, ok := std.StdDev("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, sd)
	assert.InDelta(t, -5e-7, std.Rows[0][0], 1e-12)
	assert.InDelta(t, 5e-7, std.Rows[1][0], 1e-12)
}

func TestStandardizeHugeValues(t *testing.T) {
	testutil.QuietLogs(t)
	records := []analysis.Record{
		{"a": 1e308, "b": 1},
		{"a": 1.5e308, "b": 2},
		{"a": 1.2e308, "b": 4},
	}

	std := analysis.Standardize(analysis.NewTable(records, []string{"a", "b"}), eps)

	mean, ok := std.Mean("a")
	require.True(t, ok)
	assert.InDelta(t, 1, mean/1.2333333333333333e308, 1e-12)

	col := column(std.Table, 0)
	for _, z := range col {
		assert.False(t, math.IsNaN(z) || math.IsInf(z, 0))
		assert.NotZero(t, z)
	}
	assert.InDelta(t, 0, stat.Mean(col, nil), 1e-9)
	assert.InDelta(t, 1, math.Sqrt(stat.PopVariance(col, nil)), 1e-9)
}
