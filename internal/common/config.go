package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/perks-tracker/constants"
	"github.com/joseph-ayodele/perks-tracker/internal/core/perks"
)

const configPathEnv = "PERKS_CONFIG"

// Database drivers understood by the draft repository.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig                         `yaml:"database"`
	Server   ServerConfig                           `yaml:"server"`
	OCR      OCRConfig                              `yaml:"ocr"`
	Cache    CacheConfig                            `yaml:"cache"`
	Batch    BatchConfig                            `yaml:"batch"`
	Issuers  map[constants.IssuerKey]perks.Override `yaml:"issuers"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"`
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"maxConns"`
	MinConns         int32         `yaml:"minConns"`
	MaxConnLifetime  time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime  time.Duration `yaml:"maxConnIdleTime"`
	DialTimeout      time.Duration `yaml:"dialTimeout"`
	StatementTimeout time.Duration `yaml:"statementTimeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `yaml:"grpcAddr"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract        string `yaml:"tesseract"`
	Language         string `yaml:"language"`
	HeicConverter    string `yaml:"heicConverter"`
	TessdataDir      string `yaml:"tessdataDir"`
	ArtifactCacheDir string `yaml:"artifactCacheDir"`
	TSVConfidence    bool   `yaml:"tsvConfidence"`
}

// CacheConfig holds the Redis recognition cache settings. An empty Addr disables the cache.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// BatchConfig holds screenshot batch settings.
type BatchConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	Retention   time.Duration `yaml:"retention"`
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			DSN:             "file:perks.db?_pragma=foreign_keys(1)",
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{
			GRPCAddr: ":8080",
		},
		OCR: OCRConfig{
			Tesseract:        "tesseract",
			Language:         "eng",
			HeicConverter:    "magick",
			ArtifactCacheDir: "./tmp",
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Batch: BatchConfig{
			Concurrency: 3,
			Timeout:     60 * time.Second,
			Retention:   30 * 24 * time.Hour,
		},
	}
}

// LoadConfig starts from defaults, applies the YAML file named by PERKS_CONFIG
// (if set) and then environment overrides.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("cannot read %s", path), err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("cannot parse %s", path), err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)

	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.Language = getEnv("TESSERACT_LANG", c.OCR.Language)
	c.OCR.HeicConverter = getEnv("HEIC_CONVERTER", c.OCR.HeicConverter)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.ArtifactCacheDir = getEnv("ARTIFACT_CACHE_DIR", c.OCR.ArtifactCacheDir)
	c.OCR.TSVConfidence = getEnvAsBool("OCR_TSV_CONFIDENCE", c.OCR.TSVConfidence)

	c.Cache.Addr = getEnv("REDIS_ADDR", c.Cache.Addr)
	c.Cache.Password = getEnv("REDIS_PASSWORD", c.Cache.Password)
	c.Cache.DB = getEnvAsInt("REDIS_DB", c.Cache.DB)
	c.Cache.TTL = getEnvAsDuration("OCR_CACHE_TTL", c.Cache.TTL)

	c.Batch.Concurrency = getEnvAsInt("BATCH_CONCURRENCY", c.Batch.Concurrency)
	c.Batch.Timeout = getEnvAsDuration("BATCH_IMAGE_TIMEOUT", c.Batch.Timeout)
	c.Batch.Retention = getEnvAsDuration("DRAFT_RETENTION", c.Batch.Retention)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported DB_DRIVER %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Batch.Concurrency < 1 {
		return NewAppError("CONFIG_ERROR", "BATCH_CONCURRENCY must be at least 1", ErrInvalidInput)
	}
	if c.Batch.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_IMAGE_TIMEOUT must be positive", ErrInvalidInput)
	}
	for key := range c.Issuers {
		if k, ok := constants.CanonicalIssuer(string(key)); !ok || k != key {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown issuer %q in overrides", key), ErrInvalidInput)
		}
	}
	return nil
}
