// Package config loads reference curation configuration from a YAML file
// with environment variable overrides, and opens the configured backends.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	blobcore "refcore/internal/infra/blob/core"
	blobfs "refcore/internal/infra/blob/fs"
	blobmemory "refcore/internal/infra/blob/memory"
	blobs3 "refcore/internal/infra/blob/s3"
	"refcore/internal/infra/persistence/memory"
	"refcore/internal/infra/persistence/postgres"
	"refcore/internal/infra/persistence/sqlite"
	"refcore/pkg/domain"
)

// StoreConfig selects and parameterises the persistent store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // memory|sqlite|postgres
	Path   string `yaml:"path"`   // sqlite file path
	DSN    string `yaml:"dsn"`    // postgres DSN
}

// BlobConfig selects and parameterises the record archive backend.
type BlobConfig struct {
	Driver    string `yaml:"driver"` // fs|s3|memory
	Root      string `yaml:"root"`   // fs root directory
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// EngineConfig tunes the curation engine.
type EngineConfig struct {
	LengthTolerance float64 `yaml:"length_tolerance"`
}

// Config is the root configuration document.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Blob   BlobConfig   `yaml:"blob"`
	Engine EngineConfig `yaml:"engine"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		Store:  StoreConfig{Driver: "sqlite", Path: "refcore.db"},
		Blob:   BlobConfig{Driver: "fs", Root: "./archive"},
		Engine: EngineConfig{LengthTolerance: domain.DefaultLengthTolerance},
	}
}

// Load reads the YAML file at path when it exists, then applies REFCORE_*
// environment overrides. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Environment overrides:
//
//	REFCORE_STORE_DRIVER: memory|sqlite|postgres
//	REFCORE_SQLITE_PATH: path to sqlite file
//	REFCORE_POSTGRES_DSN: postgres DSN when driver=postgres
//	REFCORE_BLOB_DRIVER: fs|s3|memory
//	REFCORE_BLOB_ROOT: fs archive root
//	REFCORE_BLOB_S3_BUCKET / REGION / ENDPOINT / PATH_STYLE
//	REFCORE_LENGTH_TOLERANCE: fractional tolerance, e.g. 0.03
func applyEnv(cfg *Config) {
	if v := os.Getenv("REFCORE_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("REFCORE_SQLITE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("REFCORE_POSTGRES_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("REFCORE_BLOB_DRIVER"); v != "" {
		cfg.Blob.Driver = v
	}
	if v := os.Getenv("REFCORE_BLOB_ROOT"); v != "" {
		cfg.Blob.Root = v
	}
	if v := os.Getenv("REFCORE_BLOB_S3_BUCKET"); v != "" {
		cfg.Blob.Bucket = v
	}
	if v := os.Getenv("REFCORE_BLOB_S3_REGION"); v != "" {
		cfg.Blob.Region = v
	}
	if v := os.Getenv("REFCORE_BLOB_S3_ENDPOINT"); v != "" {
		cfg.Blob.Endpoint = v
	}
	if v := os.Getenv("REFCORE_BLOB_S3_PATH_STYLE"); v != "" {
		cfg.Blob.PathStyle = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("REFCORE_LENGTH_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.LengthTolerance = f
		}
	}
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Engine.LengthTolerance < 0 || c.Engine.LengthTolerance > 1 {
		return fmt.Errorf("length tolerance %v out of range [0, 1]", c.Engine.LengthTolerance)
	}
	return nil
}

// OpenPersistentStore opens the configured store backend.
func OpenPersistentStore(cfg Config, engine *domain.RulesEngine) (domain.PersistentStore, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.NewStore(engine), nil
	case "sqlite":
		return sqlite.NewStore(cfg.Store.Path, engine)
	case "postgres":
		return postgres.NewStore(cfg.Store.DSN, engine)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// OpenBlobStore opens the configured record archive backend.
func OpenBlobStore(ctx context.Context, cfg Config) (blobcore.Store, error) {
	switch cfg.Blob.Driver {
	case "memory":
		return blobmemory.New(), nil
	case "fs":
		return blobfs.New(cfg.Blob.Root)
	case "s3":
		return blobs3.New(ctx, blobs3.Config{
			Region:    cfg.Blob.Region,
			Bucket:    cfg.Blob.Bucket,
			Endpoint:  cfg.Blob.Endpoint,
			PathStyle: cfg.Blob.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}
