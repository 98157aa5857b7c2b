package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("server.address = %q", cfg.Server.Address)
	}
	if cfg.JWT.Expiration != 720*time.Hour {
		t.Errorf("jwt.expiration = %v", cfg.JWT.Expiration)
	}
	if cfg.RateLimit.LoginAttempts != 5 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("ratelimit = %+v", cfg.RateLimit)
	}
	if cfg.S3.Enabled() {
		t.Error("s3 should be disabled without a bucket")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
database:
  name: from_file
s3:
  bucket_name: pdfs
jwt:
  expiration: 2h
app:
  timezone: Europe/Berlin
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_NAME", "from_env")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("server.address = %q", cfg.Server.Address)
	}
	if cfg.Database.Name != "from_env" {
		t.Errorf("env should override file, got %q", cfg.Database.Name)
	}
	if !cfg.S3.Enabled() {
		t.Error("s3 should be enabled")
	}
	if cfg.JWT.Expiration != 2*time.Hour {
		t.Errorf("jwt.expiration = %v", cfg.JWT.Expiration)
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[1] != "http://b.test" {
		t.Errorf("allowed_origins = %v", got)
	}
	loc, err := cfg.App.Location()
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected parse error")
	}
}
