package dataset

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/objones25/marquee/internal/monitor"
)

const (
	defaultKeyPrefix = "marquee"
	defaultPoolSize  = 10
)

// RedisStore keeps movies in Redis, one hash per release year.
//
// Layout:
//
//	<prefix>:years        set of years present
//	<prefix>:year:<yyyy>  hash of title -> JSON movie
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	PoolSize  int
}

// NewRedisStore creates a movie store and verifies the connection
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("Redis address is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.KeyPrefix,
	}, nil
}

func (s *RedisStore) yearsKey() string {
	return s.prefix + ":years"
}

func (s *RedisStore) yearKey(year int) string {
	return s.prefix + ":year:" + strconv.Itoa(year)
}

// Put stores movies, replacing entries with the same year and title
func (s *RedisStore) Put(ctx context.Context, movies []Movie) (err error) {
	start := time.Now()
	defer func() { monitor.RecordStoreOperation("put", start, err) }()

	if len(movies) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, m := range movies {
		if strings.TrimSpace(m.Title) == "" {
			return fmt.Errorf("%w (year %d)", ErrEmptyKey, m.Year)
		}
		data, merr := json.Marshal(m)
		if merr != nil {
			return fmt.Errorf("failed to marshal movie %q: %w", m.Title, merr)
		}
		pipe.HSet(ctx, s.yearKey(m.Year), m.Title, data)
		pipe.SAdd(ctx, s.yearsKey(), m.Year)
	}

	if _, execErr := pipe.Exec(ctx); execErr != nil {
		return fmt.Errorf("failed to store movies: %w", execErr)
	}

	log.Debug().Int("count", len(movies)).Msg("Stored movies")
	return nil
}

// Years returns the sorted years present in the store
func (s *RedisStore) Years(ctx context.Context) ([]int, error) {
	members, err := s.client.SMembers(ctx, s.yearsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list years: %w", err)
	}

	years := make([]int, 0, len(members))
	for _, m := range members {
		y, err := strconv.Atoi(m)
		if err != nil {
			log.Warn().Str("member", m).Msg("Skipping malformed year")
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// Load returns the movies released in the given years, or every movie when
// no year is given. Results are ordered by year, then title.
func (s *RedisStore) Load(ctx context.Context, years ...int) (movies []Movie, err error) {
	start := time.Now()
	defer func() { monitor.RecordStoreOperation("load", start, err) }()

	if len(years) == 0 {
		if years, err = s.Years(ctx); err != nil {
			return nil, err
		}
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(years))
	for i, y := range years {
		cmds[i] = pipe.HGetAll(ctx, s.yearKey(y))
	}
	if _, execErr := pipe.Exec(ctx); execErr != nil && execErr != redis.Nil {
		return nil, fmt.Errorf("failed to load movies: %w", execErr)
	}

	for i, cmd := range cmds {
		fields, cmdErr := cmd.Result()
		if cmdErr != nil {
			return nil, fmt.Errorf("failed to load year %d: %w", years[i], cmdErr)
		}

		titles := make([]string, 0, len(fields))
		for t := range fields {
			titles = append(titles, t)
		}
		sort.Strings(titles)

		for _, t := range titles {
			var m Movie
			if uerr := json.Unmarshal([]byte(fields[t]), &m); uerr != nil {
				return nil, fmt.Errorf("failed to unmarshal movie %q: %w", t, uerr)
			}
			movies = append(movies, m)
		}
	}

	log.Debug().Int("count", len(movies)).Ints("years", years).Msg("Loaded movies")
	return movies, nil
}

// Clear removes every movie and the year index
func (s *RedisStore) Clear(ctx context.Context) error {
	years, err := s.Years(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(years)+1)
	for _, y := range years {
		keys = append(keys, s.yearKey(y))
	}
	keys = append(keys, s.yearsKey())

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	log.Debug().Int("years", len(years)).Msg("Cleared movie store")
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Health checks the Redis connection
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
