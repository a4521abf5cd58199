package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot/vg"

	"github.com/objones25/marquee/internal/analysis"
	"github.com/objones25/marquee/internal/config"
	"github.com/objones25/marquee/internal/dataset"
	"github.com/objones25/marquee/internal/render"
	"github.com/objones25/marquee/internal/session"
)

// Summary is the JSON document printed after an exploration
type Summary struct {
	Session           string                   `json:"session"`
	Movies            int                      `json:"movies"`
	Features          []string                 `json:"features"`
	Eigenvalues       [2]float64               `json:"eigenvalues"`
	VarianceExplained [2]float64               `json:"variance_explained"`
	Loadings          [2]map[string]float64    `json:"loadings"`
	Statistics        dataset.Stats            `json:"statistics"`
	Clusters          []session.ClusterSummary `json:"clusters,omitempty"`
	Iterations        int                      `json:"kmeans_iterations,omitempty"`
	Converged         bool                     `json:"kmeans_converged,omitempty"`
	Diagnostics       analysis.Diagnostics     `json:"diagnostics"`
	Facets            dataset.Facets           `json:"facets"`
	Chart             string                   `json:"chart,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Exploration failed")
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	movies, err := loadMovies(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info().Int("movies", len(movies)).Str("source", cfg.Dataset.Source).Msg("Dataset loaded")

	s, err := session.New(movies, cfg.SessionConfig())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer s.Close()

	exp, err := s.Explore(ctx, cfg.Request())
	if err != nil {
		return fmt.Errorf("failed to explore dataset: %w", err)
	}

	if cfg.Render.Output != "" {
		opts := render.Options{
			Title:  cfg.Render.Title,
			Width:  vg.Length(cfg.Render.Width) * vg.Inch,
			Height: vg.Length(cfg.Render.Height) * vg.Inch,
		}
		if err := render.Save(cfg.Render.Output, exp, opts); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		log.Info().Str("path", cfg.Render.Output).Msg("Chart written")
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summarize(s, exp, cfg.Render.Output))
}

func loadMovies(ctx context.Context, cfg *config.Config) ([]dataset.Movie, error) {
	if cfg.Dataset.Source == config.SourceCSV {
		return dataset.LoadCSVFile(cfg.Dataset.CSVPath)
	}

	store, err := dataset.NewRedisStore(cfg.RedisConfig())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if cfg.Dataset.SeedRedis {
		movies, err := dataset.LoadCSVFile(cfg.Dataset.CSVPath)
		if err != nil {
			return nil, err
		}
		if err := store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear movie store: %w", err)
		}
		if err := store.Put(ctx, movies); err != nil {
			return nil, fmt.Errorf("failed to seed movie store: %w", err)
		}
		log.Info().Int("movies", len(movies)).Msg("Movie store seeded from CSV")
	}

	// the store indexes by year, so a year filter narrows the fetch
	return store.Load(ctx, cfg.Filter.Years...)
}

func summarize(s *session.Session, exp *session.Exploration, chart string) Summary {
	sum := Summary{
		Session:           s.ID(),
		Movies:            len(exp.Movies),
		Features:          exp.PCA.Features,
		Eigenvalues:       exp.PCA.Eigenvalues,
		VarianceExplained: exp.PCA.VarianceExplained,
		Loadings:          [2]map[string]float64{exp.PCA.Loadings(0), exp.PCA.Loadings(1)},
		Statistics:        exp.Statistics,
		Clusters:          exp.ClusterSummaries(),
		Diagnostics:       exp.PCA.Diagnostics,
		Facets:            s.Facets(),
		Chart:             chart,
	}
	if exp.Clustered() {
		sum.Iterations = exp.Clusters.Iterations
		sum.Converged = exp.Clusters.Converged
	}
	return sum
}
