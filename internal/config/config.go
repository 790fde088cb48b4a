package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jesses-code-adventures/billing/internal/logger"
)

// Sequence backends select the counter used to number new documents.
const (
	SequenceStore = "store"
	SequenceRedis = "redis"
	SequenceLocal = "local"
)

type Config struct {
	DatabaseURL     string `mapstructure:"database_url"`
	DatabaseDriver  string `mapstructure:"database_driver"`
	SequenceBackend string `mapstructure:"sequence_backend"`
	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPassword   string `mapstructure:"redis_password"`
	PushgatewayURL  string `mapstructure:"pushgateway_url"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		Output string `mapstructure:"output"`
	} `mapstructure:"log"`

	Archive struct {
		Bucket    string `mapstructure:"bucket"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"archive"`

	Company struct {
		Name    string `mapstructure:"name"`
		Address string `mapstructure:"address"`
		Phone   string `mapstructure:"phone"`
		Email   string `mapstructure:"email"`
		ABN     string `mapstructure:"abn"`
		Bank    string `mapstructure:"bank"`
	} `mapstructure:"company"`
}

// Load reads .env, the optional billing.yaml and the environment. Non-empty arguments come from
// command line flags and win over everything else.
func Load(dbConn, dbDriver, sequenceBackend string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("billing")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir := os.Getenv("BILLING_CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetDefault("database_url", "./billing.db")
	v.SetDefault("database_driver", "sqlite3")
	v.SetDefault("sequence_backend", SequenceStore)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("company.name", "")

	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading billing.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if dbConn != "" {
		cfg.DatabaseURL = dbConn
	}
	if dbDriver != "" {
		cfg.DatabaseDriver = dbDriver
	}
	if sequenceBackend != "" {
		cfg.SequenceBackend = sequenceBackend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnv maps the flat environment names onto config keys. Nested keys are not reachable
// through AutomaticEnv alone because Unmarshal only sees keys viper already knows.
func bindEnv(v *viper.Viper) {
	bindings := map[string]string{
		"database_url":       "DATABASE_URL",
		"database_driver":    "DATABASE_DRIVER",
		"sequence_backend":   "SEQUENCE_BACKEND",
		"redis_addr":         "REDIS_ADDR",
		"redis_password":     "REDIS_PASSWORD",
		"pushgateway_url":    "PUSHGATEWAY_URL",
		"log.level":          "LOG_LEVEL",
		"log.format":         "LOG_FORMAT",
		"log.output":         "LOG_OUTPUT",
		"archive.bucket":     "ARCHIVE_BUCKET",
		"archive.endpoint":   "ARCHIVE_ENDPOINT",
		"archive.region":     "ARCHIVE_REGION",
		"archive.access_key": "ARCHIVE_ACCESS_KEY",
		"archive.secret_key": "ARCHIVE_SECRET_KEY",
		"company.name":       "BILLING_COMPANY_NAME",
		"company.address":    "BILLING_COMPANY_ADDRESS",
		"company.phone":      "BILLING_COMPANY_PHONE",
		"company.email":      "BILLING_COMPANY_EMAIL",
		"company.abn":        "BILLING_COMPANY_ABN",
		"company.bank":       "BILLING_COMPANY_BANK",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
	v.AutomaticEnv()
}

func (c *Config) Validate() error {
	switch c.SequenceBackend {
	case SequenceStore, SequenceLocal:
	case SequenceRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis sequence backend")
		}
	default:
		return fmt.Errorf("unknown sequence backend %q, expected store, redis or local", c.SequenceBackend)
	}

	switch strings.ToLower(c.DatabaseDriver) {
	case "sqlite3", "libsql", "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	return nil
}

// ArchiveEnabled reports whether rendered documents should be uploaded.
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}

func (c *Config) GetLoggerConfig() logger.LogConfig {
	lc := logger.DefaultConfig()
	if c.Log.Level != "" {
		lc.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	if c.Log.Output != "" {
		lc.Output = c.Log.Output
	}
	lc.TimeFormat = time.RFC3339
	return lc
}

func (c *Config) Dump() {
	fmt.Printf("Database URL: %s\n", c.DatabaseURL)
	fmt.Printf("Database Driver: %s\n", c.DatabaseDriver)
	fmt.Printf("Sequence Backend: %s\n", c.SequenceBackend)
	if c.ArchiveEnabled() {
		fmt.Printf("Archive Bucket: %s\n", c.Archive.Bucket)
	}
}
