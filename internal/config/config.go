package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const EnvPrefix = "TASKMAPPER_"

type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreSqlite StoreKind = "sqlite"
	StoreMySQL  StoreKind = "mysql"
	StoreRedis  StoreKind = "redis"
)

type Config struct {
	Store StoreKind `env:"STORE" envDefault:"memory"`

	Sqlite Sqlite `envPrefix:"SQLITE_"`
	MySQL  MySQL  `envPrefix:"MYSQL_"`
	Redis  Redis  `envPrefix:"REDIS_"`
	Cache  Cache  `envPrefix:"CACHE_"`

	Log     Log     `envPrefix:"LOG_"`
	Tracing Tracing `envPrefix:"TRACING_"`

	// MetricsFile receives the collected metrics in the prometheus text format when a command finishes.
	MetricsFile string `env:"METRICS_FILE"`

	// LookupRetries is the number of retries for failed task definition lookups.
	LookupRetries uint64 `env:"LOOKUP_RETRIES" envDefault:"3"`
}

type Sqlite struct {
	// Path of the database file. Empty keeps definitions in memory.
	Path string `env:"PATH"`
}

type MySQL struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"3306"`
	User     string `env:"USER" envDefault:"root"`
	Password string `env:"PASSWORD"`
	Database string `env:"DATABASE" envDefault:"taskmapper"`
}

type Redis struct {
	Addrs     []string `env:"ADDRS" envDefault:"localhost:6379" envSeparator:","`
	Password  string   `env:"PASSWORD"`
	DB        int      `env:"DB"`
	KeyPrefix string   `env:"KEY_PREFIX"`
}

type Cache struct {
	// TTL of cached task definitions, zero disables the cache.
	TTL  time.Duration `env:"TTL"`
	Size int           `env:"SIZE" envDefault:"1000"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

type Tracing struct {
	// Exporter is one of none, stdout, or otlp.
	Exporter string `env:"EXPORTER" envDefault:"none"`
	Endpoint string `env:"ENDPOINT" envDefault:"localhost:4318"`
	Insecure bool   `env:"INSECURE"`
}

// Load reads the given .env files, if they exist, and parses the configuration from the environment.
// Variables already set in the environment take precedence over the files.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("loading %v: %w", f, err)
		}
	}

	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSqlite, StoreMySQL, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	switch c.Tracing.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unknown tracing exporter %q", c.Tracing.Exporter)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	if c.Cache.TTL < 0 || (c.Cache.TTL > 0 && c.Cache.Size <= 0) {
		return errors.New("cache needs a positive ttl and size")
	}

	return nil
}
