package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objones25/marquee/internal/dataset"
	"github.com/objones25/marquee/internal/session"
)

func testExploration(t *testing.T, k int) *session.Exploration {
	t.Helper()
	movies := make([]dataset.Movie, 12)
	for i := range movies {
		movies[i] = dataset.Movie{
			Title:          fmt.Sprintf("Movie %d", i),
			Year:           2010,
			Budget:         dataset.Number(float64(20 + 10*(i%5))),
			DomesticGross:  dataset.Number(float64(50 + 7*i)),
			ForeignGross:   dataset.Number(float64(30 + 3*(i%4))),
			AudienceScore:  dataset.Number(float64(40 + 5*i)),
			Profitability:  dataset.Number(float64(i % 4)),
			RottenTomatoes: dataset.Number(float64(30 + 6*i)),
			WorldwideGross: dataset.Number(float64(100 * (i % 3))),
		}
	}

	cfg := session.DefaultConfig()
	cfg.Analysis.Seed = 5
	s, err := session.New(movies, cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	exp, err := s.Explore(context.Background(), session.Request{K: k})
	require.NoError(t, err)
	return exp
}

func TestScatter(t *testing.T) {
	exp := testExploration(t, 3)

	p, err := Scatter(exp, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().Title, p.Title.Text)
	assert.Contains(t, p.X.Label.Text, "PC1")
	assert.Contains(t, p.Y.Label.Text, "PC2")
}

func TestWrite(t *testing.T) {
	exp := testExploration(t, 3)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, exp, "svg", Options{Title: "Test"}))
	assert.Contains(t, buf.String(), "<svg")

	buf.Reset()
	require.NoError(t, Write(&buf, exp, ".PNG", Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	err := Write(&buf, exp, "gif", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSave(t *testing.T) {
	exp := testExploration(t, 3)
	dir := t.TempDir()

	path := filepath.Join(dir, "chart.png")
	require.NoError(t, Save(path, exp, Options{}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	err = Save(filepath.Join(dir, "chart.bmp"), exp, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestScatterUnclustered(t *testing.T) {
	exp := testExploration(t, 0)
	require.False(t, exp.Clustered())

	p, err := Scatter(exp, Options{})
	require.NoError(t, err)
	assert.Contains(t, p.X.Label.Text, "PC1")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, exp, "svg", Options{}))
	assert.Contains(t, buf.String(), "Movies")
	assert.NotContains(t, buf.String(), "Centroids")
}
