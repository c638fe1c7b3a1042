package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Session struct {
		// Backend is one of file, redis or memory.
		Backend  string `yaml:"backend"`
		StateDir string `yaml:"state_dir"`
		Profile  string `yaml:"profile"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		// DraftTTL bounds idle drafts. Sessions never expire.
		DraftTTL string `yaml:"draft_ttl"`
	} `yaml:"redis"`
	Archive struct {
		PostgresURL string `yaml:"postgres_url"`
	} `yaml:"archive"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Sandbox struct {
		Port          string `yaml:"port"`
		Secret        string `yaml:"secret"`
		TokenTTL      string `yaml:"token_ttl"`
		AdminEmail    string `yaml:"admin_email"`
		AdminPassword string `yaml:"admin_password"`
	} `yaml:"sandbox"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.Session.Backend = "file"
	cfg.Session.StateDir = defaultStateDir()
	cfg.Session.Profile = "default"
	cfg.Log.Level = "warn"
	cfg.Sandbox.Port = "8080"
	cfg.Sandbox.Secret = "sandbox-secret"
	return cfg
}

// Load reads YAML config from path on top of the defaults. A missing file is
// not an error. Variables from a .env file in the working directory and the
// process environment override file values.
func Load(path string) (Config, error) {
	cfg := Default()
	// .env is optional
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.API.BaseURL, "QUIZ_API_URL")
	setString(&cfg.API.Timeout, "QUIZ_API_TIMEOUT")
	setString(&cfg.Session.Backend, "QUIZCTL_SESSION_BACKEND")
	setString(&cfg.Session.StateDir, "QUIZCTL_STATE_DIR")
	setString(&cfg.Session.Profile, "QUIZCTL_PROFILE")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	setString(&cfg.Archive.PostgresURL, "ARCHIVE_POSTGRES_URL")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Sandbox.Secret, "SANDBOX_SECRET")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "quizctl")
	}
	return ".quizctl"
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
