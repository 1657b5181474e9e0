// Package config loads server configuration from the environment and
// builds the repository and blob store it selects.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbitshare/orbitshare/pkg/orbitshare"
	memoryrepo "github.com/orbitshare/orbitshare/pkg/orbitshare/repo/memory"
	postgresrepo "github.com/orbitshare/orbitshare/pkg/orbitshare/repo/postgres"
	fsstorage "github.com/orbitshare/orbitshare/pkg/orbitshare/storage/fs"
	memorystorage "github.com/orbitshare/orbitshare/pkg/orbitshare/storage/memory"
	s3storage "github.com/orbitshare/orbitshare/pkg/orbitshare/storage/s3"
)

// Config is the server configuration.
//
// DATABASE_URL selects the repository:
//
//	memory                  - in-memory (default)
//	postgres://user:pw@h/db - PostgreSQL
//
// STORAGE_URL selects the blob store:
//
//	memory://               - in-memory (default)
//	file:///path/to/data    - filesystem
//	s3://bucket?region=...  - S3-compatible object store
type Config struct {
	Port        string        `env:"PORT" env-default:"8080"`
	Environment string        `env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL string        `env:"DATABASE_URL" env-default:"memory"`
	StorageURL  string        `env:"STORAGE_URL" env-default:"memory://"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" env-default:"1h"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for holes before anything is built.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.JWTSecret == "" {
		if c.Environment != "development" {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWTSecret = "orbitshare-dev-secret"
	}

	if c.TokenTTL <= 0 {
		return errors.New("token TTL must be positive")
	}

	switch {
	case c.DatabaseURL == "memory",
		strings.HasPrefix(c.DatabaseURL, "postgres://"),
		strings.HasPrefix(c.DatabaseURL, "postgresql://"):
	default:
		return fmt.Errorf("unsupported DATABASE_URL %q (use 'memory' or 'postgres://...')", c.DatabaseURL)
	}

	switch {
	case c.StorageURL == "memory", c.StorageURL == "memory://",
		strings.HasPrefix(c.StorageURL, "file://"),
		strings.HasPrefix(c.StorageURL, "s3://"):
	default:
		return fmt.Errorf("unsupported STORAGE_URL %q (use 'memory://', 'file://...' or 's3://...')", c.StorageURL)
	}

	return nil
}

// BuildRepository constructs the repository selected by DATABASE_URL. The
// returned cleanup function is safe to call once the repository is no
// longer in use; it is a no-op for the memory backend.
func (c *Config) BuildRepository(ctx context.Context) (orbitshare.Repository, func(), error) {
	if c.DatabaseURL == "memory" {
		return memoryrepo.New(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, c.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Migrations run over database/sql because that is what goose speaks.
	migrationDB, err := sql.Open("pgx", c.DatabaseURL)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer migrationDB.Close()

	if err := postgresrepo.RunMigrations(ctx, migrationDB); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgresrepo.NewWithPool(pool), pool.Close, nil
}

// BuildBlobStore constructs the blob store selected by STORAGE_URL.
func (c *Config) BuildBlobStore() (orbitshare.BlobStore, error) {
	if c.StorageURL == "memory" || c.StorageURL == "memory://" {
		return memorystorage.New(), nil
	}

	u, err := url.Parse(c.StorageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing STORAGE_URL: %w", err)
	}

	switch u.Scheme {
	case "file":
		path := u.Path
		if u.Host != "" {
			// file://relative/path puts the first segment in Host.
			path = u.Host + u.Path
		}
		if path == "" {
			return nil, errors.New("filesystem path cannot be empty in STORAGE_URL")
		}
		return fsstorage.New(fsstorage.Config{BaseDir: path})

	case "s3":
		if u.Host == "" {
			return nil, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
		}
		cfg := s3storage.Config{
			Bucket:                 u.Host,
			Region:                 u.Query().Get("region"),
			Endpoint:               u.Query().Get("endpoint"),
			UsePathStyle:           u.Query().Get("path_style") == "true",
			CreateBucketIfNotExist: u.Query().Get("create_bucket") == "true",
			AccessKeyID:            os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:        os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
		return s3storage.New(cfg)

	default:
		return nil, fmt.Errorf("unsupported STORAGE_URL scheme %q", u.Scheme)
	}
}
