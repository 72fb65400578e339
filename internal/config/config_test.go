package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %s, want 8000", cfg.Port)
	}
	if cfg.StorageDriver != "file" {
		t.Errorf("storage driver = %s, want file", cfg.StorageDriver)
	}
	if cfg.BackupDriver != "fs" {
		t.Errorf("backup driver = %s, want fs", cfg.BackupDriver)
	}
	if cfg.BackupIntervalHours != 24 {
		t.Errorf("backup interval = %d, want 24", cfg.BackupIntervalHours)
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Error("expected a default CORS origin")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %s", cfg.Port)
	}
	if cfg.StorageDriver != "sqlite" {
		t.Errorf("storage driver = %s", cfg.StorageDriver)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			StorageDriver:       "file",
			BackupDriver:        "fs",
			BackupIntervalHours: 24,
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg := base()
	cfg.StorageDriver = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown storage driver accepted")
	}

	cfg = base()
	cfg.StorageDriver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("postgres without DATABASE_URL accepted")
	}
	cfg.DatabaseURL = "postgres://localhost/dentora"
	if err := cfg.Validate(); err != nil {
		t.Errorf("postgres with DATABASE_URL rejected: %v", err)
	}

	cfg = base()
	cfg.BackupDriver = "s3"
	if err := cfg.Validate(); err == nil {
		t.Error("s3 without bucket accepted")
	}
	cfg.S3Bucket = "dentora-backups"
	if err := cfg.Validate(); err != nil {
		t.Errorf("s3 with bucket rejected: %v", err)
	}

	cfg = base()
	cfg.SeedURL = "https://example.com/seed.json"
	cfg.SeedFile = "./seed.json"
	if err := cfg.Validate(); err == nil {
		t.Error("mutually exclusive seed sources accepted")
	}

	cfg = base()
	cfg.BackupIntervalHours = 0
	if err := cfg.Validate(); err == nil {
		t.Error("non-positive backup interval accepted")
	}
}

func TestIsDev(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDev() {
		t.Error("development env not detected")
	}
	cfg.Env = "production"
	if cfg.IsDev() {
		t.Error("production env reported as dev")
	}
}
