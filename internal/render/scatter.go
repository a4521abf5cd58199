package render

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/objones25/marquee/internal/session"
)

// ErrUnsupportedFormat is returned for image formats the renderer cannot write
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Formats lists the image formats Write accepts
var Formats = []string{"png", "svg", "pdf", "jpg"}

// Options controls chart rendering
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns default rendering options
func DefaultOptions() Options {
	return Options{
		Title:  "Movies by principal component",
		Width:  8 * vg.Inch,
		Height: 6 * vg.Inch,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Title == "" {
		o.Title = def.Title
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	return o
}

// Scatter builds a scatter plot of an exploration: one series per cluster
// and a cross at each centroid, or a single series when it was not clustered.
func Scatter(exp *session.Exploration, opts Options) (*plot.Plot, error) {
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = fmt.Sprintf("PC1 (%.1f%%)", 100*exp.PCA.VarianceExplained[0])
	p.Y.Label.Text = fmt.Sprintf("PC2 (%.1f%%)", 100*exp.PCA.VarianceExplained[1])
	p.Add(plotter.NewGrid())

	for i, series := range exp.Series() {
		if len(series) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(series))
		for j, pt := range series {
			xys[j].X = pt.X
			xys[j].Y = pt.Y
		}

		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to build cluster %d series: %w", i, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		if exp.Clustered() {
			p.Legend.Add(fmt.Sprintf("Cluster %d", i), s)
		} else {
			p.Legend.Add("Movies", s)
		}
	}

	if exp.Clustered() && len(exp.Clusters.Centroids) > 0 {
		centers := make(plotter.XYs, len(exp.Clusters.Centroids))
		for i, c := range exp.Clusters.Centroids {
			centers[i].X = c.X()
			centers[i].Y = c.Y()
		}
		s, err := plotter.NewScatter(centers)
		if err != nil {
			return nil, fmt.Errorf("failed to build centroid series: %w", err)
		}
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		s.GlyphStyle.Radius = vg.Points(6)
		p.Add(s)
		p.Legend.Add("Centroids", s)
	}

	return p, nil
}

// Write renders the exploration to w in the given format
func Write(w io.Writer, exp *session.Exploration, format string, opts Options) error {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if !supported(format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	opts = opts.withDefaults()

	p, err := Scatter(exp, opts)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(opts.Width, opts.Height, format)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

// Save renders the exploration to a file, inferring the format from its extension
func Save(path string, exp *session.Exploration, opts Options) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !supported(format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	opts = opts.withDefaults()

	p, err := Scatter(exp, opts)
	if err != nil {
		return err
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}

	log.Info().Str("path", path).Int("points", len(exp.Points)).Msg("Saved chart")
	return nil
}

func supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
