package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"warehouse-route-service/internal/adapters/cache"
	"warehouse-route-service/internal/adapters/distance"
	"warehouse-route-service/internal/config"
	"warehouse-route-service/internal/platform/db"
	"warehouse-route-service/internal/ports"
)

// Closer releases whatever connection backs a matrix cache.
type Closer func() error

func noopClose() error { return nil }

// NewMatrixCache opens the cache backend selected by cfg. A nil cache with
// no error means caching is disabled.
func NewMatrixCache(cfg config.CacheConfig) (ports.MatrixCache, Closer, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, noopClose, nil

	case "file":
		dir := cfg.Dir
		if dir == "" {
			dir = "cache"
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("matrix cache: create dir %q: %w", dir, err)
		}
		return cache.NewFileMatrixCache(dir), noopClose, nil

	case "sqlite":
		path := cfg.SqlitePath
		if path == "" {
			path = config.Get("DB_PATH", "data/matrix.db")
		}
		conn, err := db.OpenSqlite(path)
		if err != nil {
			return nil, nil, fmt.Errorf("matrix cache: %w", err)
		}
		if err := cache.InitSqliteSchema(conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("matrix cache: %w", err)
		}
		return cache.NewSqliteMatrixCache(conn), conn.Close, nil

	case "postgres":
		conn, err := openPostgres()
		if err != nil {
			return nil, nil, fmt.Errorf("matrix cache: %w", err)
		}
		return cache.NewSQLMatrixCache(conn), conn.Close, nil

	case "redis":
		url := config.Get("REDIS_URL", "redis://localhost:6379/0")
		c, err := cache.NewRedisMatrixCacheFromURL(url, cfg.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("matrix cache: %w", err)
		}
		return c, c.Close, nil
	}
	return nil, nil, fmt.Errorf("matrix cache: unknown backend %q", cfg.Backend)
}

// openPostgres expects the schema from cmd/dbtool to exist already.
func openPostgres() (*sql.DB, error) {
	url := config.Get("DATABASE_URL", "")
	if url == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres cache")
	}
	return db.Open(url)
}

// NewMatrixProvider picks Google when apiKey is set and the haversine
// estimate otherwise, then layers the cache on top.
func NewMatrixProvider(apiKey string, cfg config.PlannerConfig) (ports.MatrixProvider, Closer, error) {
	var upstream ports.MatrixProvider
	if strings.TrimSpace(apiKey) != "" {
		g, err := distance.NewGoogleMatrixProvider(apiKey, distance.GoogleConfig{
			BaseURL:           cfg.Matrix.BaseURL,
			MaxElements:       cfg.Matrix.MaxElements,
			RequestsPerSecond: cfg.Matrix.RequestsPerSecond,
		})
		if err != nil {
			return nil, nil, err
		}
		upstream = g
		log.Printf("matrix provider=google max_elements=%d", cfg.Matrix.MaxElements)
	} else {
		upstream = distance.HaversineProvider{}
		log.Printf("matrix provider=haversine (GOOGLE_API_KEY not set)")
	}

	mc, closeCache, err := NewMatrixCache(cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	if mc == nil {
		return upstream, closeCache, nil
	}

	cached, err := distance.NewCachedProvider(upstream, mc)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	log.Printf("matrix cache backend=%s", cfg.Cache.Backend)
	return cached, closeCache, nil
}
