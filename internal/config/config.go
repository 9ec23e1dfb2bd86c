package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/nixtrack/internal/attach"
	"github.com/five82/nixtrack/internal/nixtrack"
)

// Config holds the console settings.
type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	SessionPath    string
	MetricsAddr    string
	Attachments    attach.S3Config
}

const (
	defaultConfigPath     = "~/.config/nixtrack/config.toml"
	defaultSessionPath    = "~/.config/nixtrack/session.toml"
	defaultRequestTimeout = 30 * time.Second
)

// Environment overrides, applied after the file.
const (
	EnvAPIURL      = "NIXTRACK_API_URL"
	EnvSessionPath = "NIXTRACK_SESSION_PATH"
	EnvMetricsAddr = "NIXTRACK_METRICS_ADDR"
	EnvTimeout     = "NIXTRACK_REQUEST_TIMEOUT"
	EnvS3AccessKey = "NIXTRACK_S3_ACCESS_KEY_ID"
	EnvS3Secret    = "NIXTRACK_S3_SECRET_ACCESS_KEY"
)

type rawConfig struct {
	APIURL         string `toml:"api_url"`
	RequestTimeout int    `toml:"request_timeout"`
	SessionPath    string `toml:"session_path"`
	MetricsAddr    string `toml:"metrics_addr"`
	Attachments    struct {
		S3Bucket          string `toml:"s3_bucket"`
		S3Region          string `toml:"s3_region"`
		S3Endpoint        string `toml:"s3_endpoint"`
		S3PathStyle       bool   `toml:"s3_path_style"`
		S3AccessKeyID     string `toml:"s3_access_key_id"`
		S3SecretAccessKey string `toml:"s3_secret_access_key"`
	} `toml:"attachments"`
}

// Load reads the config file, then .env and environment overrides. A
// missing file means defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:         strings.TrimSpace(raw.APIURL),
		RequestTimeout: time.Duration(raw.RequestTimeout) * time.Second,
		SessionPath:    strings.TrimSpace(raw.SessionPath),
		MetricsAddr:    strings.TrimSpace(raw.MetricsAddr),
		Attachments: attach.S3Config{
			Bucket:    strings.TrimSpace(raw.Attachments.S3Bucket),
			Region:    strings.TrimSpace(raw.Attachments.S3Region),
			Endpoint:  strings.TrimSpace(raw.Attachments.S3Endpoint),
			PathStyle: raw.Attachments.S3PathStyle,

			AccessKeyID:     strings.TrimSpace(raw.Attachments.S3AccessKeyID),
			SecretAccessKey: strings.TrimSpace(raw.Attachments.S3SecretAccessKey),
		},
	}
	if cfg.APIURL == "" {
		cfg.APIURL = nixtrack.DefaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.SessionPath == "" {
		cfg.SessionPath = defaultSessionPath
	}
	cfg.SessionPath = mustExpand(cfg.SessionPath)
	return cfg, nil
}

// LogPath is where the console writes its log, next to the session file.
func (c Config) LogPath() string {
	return filepath.Join(filepath.Dir(c.SessionPath), "nixtrack.log")
}

func applyEnv(raw *rawConfig) error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		raw.APIURL = v
	}
	if v := os.Getenv(EnvSessionPath); v != "" {
		raw.SessionPath = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		raw.MetricsAddr = v
	}
	if v := os.Getenv(EnvS3AccessKey); v != "" {
		raw.Attachments.S3AccessKeyID = v
	}
	if v := os.Getenv(EnvS3Secret); v != "" {
		raw.Attachments.S3SecretAccessKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		raw.RequestTimeout = secs
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
