package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Film,Genre,Lead Studio,Audience score %,Profitability,Rotten Tomatoes %,Worldwide Gross,Year
Zack and Miri Make a Porno,Romance,The Weinstein Company,70,1.747541667,64%,$41.94 ,2008
Youth in Revolt,Comedy,The Weinstein Company,52,1.09,68%,$19.62 ,2010
You Will Meet a Tall Dark Stranger,Comedy,Independent,35,1.211818182,43%,$26.66 ,2010
When in Rome,Comedy,Disney,44,0,15%,$43.04 ,2010
,,,,,,,
Mystery Film,Drama,Independent,n/a,,,unknown,20xx
`

func TestLoadCSV(t *testing.T) {
	movies, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, movies, 5)

	first := movies[0]
	assert.Equal(t, "Zack and Miri Make a Porno", first.Title)
	assert.Equal(t, "Romance", first.Genre)
	assert.Equal(t, "The Weinstein Company", first.Studio)
	assert.Equal(t, 2008, first.Year)
	assert.Equal(t, Number(70), first.AudienceScore)
	assert.Equal(t, Number(64), first.RottenTomatoes)
	assert.InDelta(t, 41.94, first.WorldwideGross.Value, 1e-12)

	when := movies[3]
	assert.True(t, when.Profitability.Valid)
	assert.Equal(t, 0.0, when.Profitability.Value)

	mystery := movies[4]
	assert.Equal(t, 0, mystery.Year)
	assert.False(t, mystery.AudienceScore.Valid)
	assert.Equal(t, "n/a", mystery.AudienceScore.Raw)
	assert.False(t, mystery.Profitability.Valid)
	assert.Equal(t, "unknown", mystery.WorldwideGross.Raw)
}

func TestLoadCSVColumnOrder(t *testing.T) {
	data := "year,worldwide gross,TITLE\n2011,$100,Reordered\n"
	movies, err := LoadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Reordered", movies[0].Title)
	assert.Equal(t, 2011, movies[0].Year)
	assert.Equal(t, Number(100), movies[0].WorldwideGross)
	assert.False(t, movies[0].AudienceScore.Valid)
}

func TestLoadCSVMoneyColumns(t *testing.T) {
	data := `Film,Year,Budget (million $),Domestic Gross (million $),Foreign Gross (million $),Worldwide Gross (million $),Profitability,Rotten Tomatoes %
WALL-E,2008,180,223.81,297.5,521.28,2.896019067,96%
Untracked,2009,,n/a,"$1,200.5",,,
`

	movies, err := LoadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, movies, 2)

	walle := movies[0]
	assert.Equal(t, Number(180), walle.Budget)
	assert.Equal(t, Number(223.81), walle.DomesticGross)
	assert.Equal(t, Number(297.5), walle.ForeignGross)
	assert.Equal(t, Number(521.28), walle.WorldwideGross)
	assert.Equal(t, Number(96), walle.RottenTomatoes)

	untracked := movies[1]
	assert.False(t, untracked.Budget.Valid)
	assert.Equal(t, "n/a", untracked.DomesticGross.Raw)
	assert.Equal(t, Number(1200.5), untracked.ForeignGross)

	rec := walle.Record()
	for _, f := range DefaultFeatures {
		v, ok := rec[f].(float64)
		require.True(t, ok, f)
		assert.Positive(t, v, f)
	}
}

func TestLoadCSVErrors(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = LoadCSV(strings.NewReader("genre,year\nComedy,2010\n"))
	assert.True(t, IsMissingColumn(err))

	_, err = LoadCSV(strings.NewReader("film,year\n\"unterminated,2010\n"))
	require.Error(t, err)
	assert.True(t, IsMalformedRow(err))
	var rowErr *RowError
	assert.ErrorAs(t, err, &rowErr)
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	movies, err := LoadCSVFile(path)
	require.NoError(t, err)
	assert.Len(t, movies, 5)

	_, err = LoadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
