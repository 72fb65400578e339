package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
	StorageDriver string   `mapstructure:"STORAGE_DRIVER"`
	DataDir       string   `mapstructure:"DATA_DIR"`
	SQLitePath    string   `mapstructure:"SQLITE_PATH"`
	DatabaseURL   string   `mapstructure:"DATABASE_URL"`
	SeedURL       string   `mapstructure:"SEED_URL"`
	SeedFile      string   `mapstructure:"SEED_FILE"`

	BackupDriver        string `mapstructure:"BACKUP_DRIVER"`
	BackupDir           string `mapstructure:"BACKUP_DIR"`
	BackupIntervalHours int    `mapstructure:"BACKUP_INTERVAL_HOURS"`

	S3Bucket          string `mapstructure:"S3_BUCKET"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3PathStyle       bool   `mapstructure:"S3_PATH_STYLE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("STORAGE_DRIVER", "file")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("SQLITE_PATH", "./data/dentora.db")
	v.SetDefault("BACKUP_DRIVER", "fs")
	v.SetDefault("BACKUP_DIR", "./backups")
	v.SetDefault("BACKUP_INTERVAL_HOURS", 24)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "CORS_ORIGINS",
		"STORAGE_DRIVER", "DATA_DIR", "SQLITE_PATH", "DATABASE_URL",
		"SEED_URL", "SEED_FILE",
		"BACKUP_DRIVER", "BACKUP_DIR", "BACKUP_INTERVAL_HOURS",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT",
		"S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_PATH_STYLE",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration can actually be wired: the
// driver names must be known and every driver must have the settings it
// needs.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "file", "sqlite", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER is \"postgres\"")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be \"file\", \"sqlite\", \"postgres\" or \"memory\", got %q", c.StorageDriver)
	}

	switch c.BackupDriver {
	case "fs", "none":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when BACKUP_DRIVER is \"s3\"")
		}
	default:
		return fmt.Errorf("BACKUP_DRIVER must be \"fs\", \"s3\" or \"none\", got %q", c.BackupDriver)
	}

	if c.SeedURL != "" && c.SeedFile != "" {
		return fmt.Errorf("SEED_URL and SEED_FILE are mutually exclusive")
	}
	if c.BackupIntervalHours <= 0 {
		return fmt.Errorf("BACKUP_INTERVAL_HOURS must be positive, got %d", c.BackupIntervalHours)
	}
	return nil
}
