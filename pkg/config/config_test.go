package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Name      string        `yaml:"name" env:"APP_NAME"`
	Port      int           `yaml:"port" env:"APP_PORT"`
	Debug     bool          `yaml:"debug" env:"APP_DEBUG"`
	Timeout   time.Duration `yaml:"timeout" env:"APP_TIMEOUT"`
	Countries []string      `yaml:"countries" env:"APP_COUNTRIES"`
	Database  struct {
		DSN string `yaml:"dsn" env:"DATABASE_URL"`
	} `yaml:"database"`
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTemp(t, `
name: test-app
port: 8080
debug: false
timeout: 10s
countries: [us, int]
database:
  dsn: file:test.db
`)

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Name != "test-app" {
		t.Fatalf("expected 'test-app', got '%s'", cfg.Name)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected 8080, got %d", cfg.Port)
	}
	if cfg.Debug {
		t.Fatal("expected debug to be false")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("expected 10s, got %s", cfg.Timeout)
	}
	if len(cfg.Countries) != 2 || cfg.Countries[0] != "us" || cfg.Countries[1] != "int" {
		t.Fatalf("unexpected countries: %v", cfg.Countries)
	}
	if cfg.Database.DSN != "file:test.db" {
		t.Fatalf("expected nested dsn, got '%s'", cfg.Database.DSN)
	}
}

func TestEnvOverride(t *testing.T) {
	path := writeTemp(t, `
name: default
port: 3000
`)

	t.Setenv("APP_NAME", "from-env")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("APP_TIMEOUT", "3s")
	t.Setenv("APP_COUNTRIES", "gb, de ,")
	t.Setenv("DATABASE_URL", "postgres://localhost/news")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Name != "from-env" {
		t.Fatalf("expected 'from-env', got '%s'", cfg.Name)
	}
	if cfg.Port != 9090 {
		t.Fatalf("expected 9090, got %d", cfg.Port)
	}
	if !cfg.Debug {
		t.Fatal("expected debug to be true from env")
	}
	if cfg.Timeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.Timeout)
	}
	if len(cfg.Countries) != 2 || cfg.Countries[0] != "gb" || cfg.Countries[1] != "de" {
		t.Fatalf("unexpected countries: %v", cfg.Countries)
	}
	if cfg.Database.DSN != "postgres://localhost/news" {
		t.Fatalf("expected dsn from env, got '%s'", cfg.Database.DSN)
	}
}

func TestLoad_ExpandsVariables(t *testing.T) {
	t.Setenv("SECRET_NAME", "expanded")
	path := writeTemp(t, "name: ${SECRET_NAME}\n")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "expanded" {
		t.Fatalf("expected 'expanded', got '%s'", cfg.Name)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg := testConfig{Name: "preset"}
	if err := LoadOrDefault("/nonexistent/config.yaml", &cfg); err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Name != "preset" {
		t.Fatalf("expected preset name to survive, got '%s'", cfg.Name)
	}
}

func TestLoadOrDefault_MissingFileStillAppliesEnv(t *testing.T) {
	t.Setenv("APP_PORT", "7070")

	var cfg testConfig
	if err := LoadOrDefault("/nonexistent/config.yaml", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7070 {
		t.Fatalf("expected 7070 from env, got %d", cfg.Port)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("NEWSBOT_DOTENV_TEST=hello\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NEWSBOT_DOTENV_TEST", "")
	os.Unsetenv("NEWSBOT_DOTENV_TEST")

	if err := LoadDotEnv(path, "/nonexistent/.env"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("NEWSBOT_DOTENV_TEST"); got != "hello" {
		t.Fatalf("expected 'hello', got '%s'", got)
	}
}
