package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/objones25/marquee/internal/analysis"
	"github.com/objones25/marquee/internal/dataset"
	"github.com/objones25/marquee/internal/render"
	"github.com/objones25/marquee/internal/session"
)

// DefaultConfigPaths lists the paths searched for a config file, in order
var DefaultConfigPaths = []string{
	"marquee.yaml",
	"marquee.yml",
}

const (
	// ConfigPathEnvVar overrides the config file path
	ConfigPathEnvVar = "MARQUEE_CONFIG"

	envPrefix = "MARQUEE_"
)

// Dataset sources
const (
	SourceCSV   = "csv"
	SourceRedis = "redis"
)

// ErrInvalidConfig is returned when validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the application configuration
type Config struct {
	Dataset  DatasetConfig  `koanf:"dataset"`
	Analysis AnalysisConfig `koanf:"analysis"`
	Filter   dataset.Filter `koanf:"filter"`
	Render   RenderConfig   `koanf:"render"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatasetConfig selects where movies come from
type DatasetConfig struct {
	Source    string `koanf:"source"` // csv or redis
	CSVPath   string `koanf:"csv_path"`
	SeedRedis bool   `koanf:"seed_redis"` // copy the CSV into Redis before loading
	RedisAddr string `koanf:"redis_addr"`
	RedisPass string `koanf:"redis_password"`
	RedisDB   int    `koanf:"redis_db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// AnalysisConfig holds the exploration parameters
type AnalysisConfig struct {
	Features            []string `koanf:"features"`
	K                   int      `koanf:"k"` // 0 skips clustering
	Seed                int64    `koanf:"seed"`
	EigenMaxIterations  int      `koanf:"eigen_max_iterations"`
	KMeansMaxIterations int      `koanf:"kmeans_max_iterations"`
}

// RenderConfig controls chart output
type RenderConfig struct {
	Output string  `koanf:"output"` // empty disables rendering
	Title  string  `koanf:"title"`
	Width  float64 `koanf:"width"`  // inches
	Height float64 `koanf:"height"` // inches
}

// CacheConfig sizes the exploration cache
type CacheConfig struct {
	Size int `koanf:"size"` // 0 disables caching
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
}

func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Source:    SourceCSV,
			CSVPath:   "movies.csv",
			RedisAddr: "localhost:6379",
			KeyPrefix: "marquee",
		},
		Analysis: AnalysisConfig{
			Features:            dataset.DefaultFeatures,
			K:                   3,
			EigenMaxIterations:  analysis.DefaultConfig().EigenMaxIterations,
			KMeansMaxIterations: analysis.DefaultConfig().KMeansMaxIterations,
		},
		Render: RenderConfig{
			Output: "",
			Title:  render.DefaultOptions().Title,
			Width:  8,
			Height: 6,
		},
		Cache: CacheConfig{
			Size: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// MARQUEE_* environment variables, in increasing priority.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path; empty skips the file
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envSections are the top-level keys; the first underscore after one of
// them separates section from field
var envSections = []string{"dataset", "analysis", "filter", "render", "cache", "logging"}

// envTransformFunc maps MARQUEE_ANALYSIS_MAX_ITER style names to analysis.max_iter
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if key == "config" {
		return ""
	}
	for _, section := range envSections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

var sliceConfigPaths = []string{
	"analysis.features",
	"filter.genres",
	"filter.studios",
	"filter.years",
}

// processSliceFields splits comma-separated values coming from the environment
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Dataset.Source {
	case SourceCSV:
		if c.Dataset.CSVPath == "" {
			errs = append(errs, errors.New("dataset.csv_path is required for the csv source"))
		}
	case SourceRedis:
		if c.Dataset.RedisAddr == "" {
			errs = append(errs, errors.New("dataset.redis_addr is required for the redis source"))
		}
		if c.Dataset.SeedRedis && c.Dataset.CSVPath == "" {
			errs = append(errs, errors.New("dataset.csv_path is required to seed redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown dataset.source %q", c.Dataset.Source))
	}

	if c.Analysis.K < 0 {
		errs = append(errs, fmt.Errorf("analysis.k cannot be negative, got %d", c.Analysis.K))
	}
	if len(c.Analysis.Features) == 0 {
		errs = append(errs, errors.New("analysis.features cannot be empty"))
	}
	for _, f := range c.Analysis.Features {
		if !dataset.KnownFeature(f) {
			errs = append(errs, fmt.Errorf("unknown feature %q", f))
		}
	}

	if c.Render.Output != "" {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(c.Render.Output), "."))
		if !slices.Contains(render.Formats, ext) {
			errs = append(errs, fmt.Errorf("render.output has unsupported format %q", ext))
		}
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid logging.level %q", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("invalid logging.format %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// AnalysisConfig converts the exploration settings to the engine configuration
func (c *Config) AnalysisConfig() analysis.Config {
	cfg := analysis.DefaultConfig()
	cfg.Seed = c.Analysis.Seed
	if c.Analysis.EigenMaxIterations > 0 {
		cfg.EigenMaxIterations = c.Analysis.EigenMaxIterations
	}
	if c.Analysis.KMeansMaxIterations > 0 {
		cfg.KMeansMaxIterations = c.Analysis.KMeansMaxIterations
	}
	return cfg
}

// SessionConfig returns the session configuration
func (c *Config) SessionConfig() session.Config {
	cacheSize := c.Cache.Size
	if cacheSize == 0 {
		cacheSize = -1
	}
	return session.Config{
		Analysis:  c.AnalysisConfig(),
		CacheSize: cacheSize,
	}
}

// Request returns the exploration request described by the configuration
func (c *Config) Request() session.Request {
	return session.Request{
		Filter:   c.Filter,
		Features: c.Analysis.Features,
		K:        c.Analysis.K,
	}
}

// RedisConfig returns the movie store configuration
func (c *Config) RedisConfig() dataset.RedisConfig {
	return dataset.RedisConfig{
		Addr:      c.Dataset.RedisAddr,
		Password:  c.Dataset.RedisPass,
		DB:        c.Dataset.RedisDB,
		KeyPrefix: c.Dataset.KeyPrefix,
	}
}
