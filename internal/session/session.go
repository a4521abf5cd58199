package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/objones25/marquee/internal/analysis"
	"github.com/objones25/marquee/internal/dataset"
	"github.com/objones25/marquee/internal/monitor"
)

var (
	// ErrNoMovies is returned when the filter leaves nothing to analyze
	ErrNoMovies = errors.New("no movies match the filter")

	// ErrUnknownFeature is returned for feature names a movie does not carry
	ErrUnknownFeature = errors.New("unknown feature")
)

const defaultCacheSize = 64

// Config holds session configuration
type Config struct {
	Analysis  analysis.Config
	CacheSize int // Explorations kept in memory; negative disables caching
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		Analysis:  analysis.DefaultConfig(),
		CacheSize: defaultCacheSize,
	}
}

// Request describes one exploration
type Request struct {
	Filter   dataset.Filter
	Features []string // defaults to dataset.DefaultFeatures
	K        int      // cluster count; 0 projects without clustering
}

// key fingerprints a request for caching
func (r Request) key(seed int64) string {
	return strings.Join([]string{
		r.Filter.Key(),
		"f=" + strings.Join(r.Features, ","),
		"k=" + strconv.Itoa(r.K),
		"seed=" + strconv.FormatInt(seed, 10),
	}, "|")
}

// Session owns a dataset and runs explorations over it.
// It is safe for concurrent use.
type Session struct {
	id     string
	movies []dataset.Movie
	facets dataset.Facets
	config Config
	cache  *lru.Cache
	logger zerolog.Logger
}

// New creates a session over movies. The slice is copied.
func New(movies []dataset.Movie, cfg Config) (*Session, error) {
	owned := make([]dataset.Movie, len(movies))
	copy(owned, movies)

	s := &Session{
		id:     uuid.New().String(),
		movies: owned,
		facets: dataset.FacetsOf(owned),
		config: cfg,
	}
	s.logger = log.With().Str("component", "session").Str("session", s.id).Logger()

	if cfg.CacheSize == 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New(cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create exploration cache: %w", err)
		}
		s.cache = cache
	}

	monitor.DatasetSize.Set(float64(len(owned)))
	s.logger.Info().Int("movies", len(owned)).Msg("Session created")
	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Movies returns the movies passing a filter
func (s *Session) Movies(f dataset.Filter) []dataset.Movie {
	return f.Apply(s.movies)
}

// Statistics returns the totals and averages of the movies passing a filter
func (s *Session) Statistics(f dataset.Filter) dataset.Stats {
	return dataset.Statistics(f.Apply(s.movies))
}

// Facets returns the distinct years, genres and studios in the dataset
func (s *Session) Facets() dataset.Facets {
	return s.facets
}

// Explore filters the dataset, projects it with PCA and, when req.K is
// positive, clusters the projection. Results are cached when the analysis
// seed is fixed; every call gets its own copy of the points and movies.
func (s *Session) Explore(ctx context.Context, req Request) (*Exploration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(req.Features) == 0 {
		req.Features = dataset.DefaultFeatures
	}
	for _, f := range req.Features {
		if !dataset.KnownFeature(f) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, f)
		}
	}
	if req.K < 0 {
		return nil, &analysis.AnalysisError{Op: "explore", K: req.K, Err: analysis.ErrInvalidK}
	}

	seed := s.config.Analysis.Seed
	cacheable := s.cache != nil && seed != 0
	key := req.key(seed)
	if cacheable {
		if v, ok := s.cache.Get(key); ok {
			monitor.SessionCache.WithLabelValues("hit").Inc()
			s.logger.Debug().Str("key", key).Msg("Exploration cache hit")
			return v.(*Exploration).clone(), nil
		}
		monitor.SessionCache.WithLabelValues("miss").Inc()
	}

	movies := req.Filter.Apply(s.movies)
	if len(movies) == 0 {
		return nil, ErrNoMovies
	}

	// one random stream per exploration keeps seeded runs reproducible
	rng := s.config.Analysis.NewRand()

	start := time.Now()
	pca := analysis.PCAWithRand(dataset.Records(movies), req.Features, s.config.Analysis, rng)
	monitor.RecordAnalysis(monitor.KindPCA, start)
	recordDiagnostics(pca.Diagnostics)

	var clusters *analysis.Clustering
	if req.K > 0 {
		start = time.Now()
		var err error
		clusters, err = analysis.KMeansWithRand(pca.Scores, req.K, s.config.Analysis, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to cluster projection: %w", err)
		}
		monitor.RecordAnalysis(monitor.KindKMeans, start)
		monitor.KMeansIterations.Observe(float64(clusters.Iterations))
		if !clusters.Converged {
			monitor.KMeansNotConverged.Inc()
			s.logger.Warn().
				Int("iterations", clusters.Iterations).
				Int("k", req.K).
				Msg("K-means stopped at the iteration cap")
		}
	}

	exp := newExploration(req, movies, pca, clusters)
	if cacheable {
		s.cache.Add(key, exp)
		exp = exp.clone()
	}

	s.logger.Info().
		Int("movies", len(movies)).
		Strs("features", req.Features).
		Int("k", req.K).
		Floats64("variance_explained", pca.VarianceExplained[:]).
		Msg("Exploration complete")

	return exp, nil
}

// Purge drops every cached exploration
func (s *Session) Purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Close releases session resources
func (s *Session) Close() {
	s.Purge()
}

func recordDiagnostics(d analysis.Diagnostics) {
	for _, reason := range d.Fallbacks {
		monitor.AnalysisFallbacks.WithLabelValues(reason).Inc()
	}
	if d.Reseeds > 0 {
		monitor.EigenReseeds.Add(float64(d.Reseeds))
	}
}

// IsNoMovies checks if an error is a "no movies" error
func IsNoMovies(err error) bool {
	return errors.Is(err, ErrNoMovies)
}
