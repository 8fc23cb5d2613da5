package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrAPIKeyMissing = errors.New("WEATHER_API_KEY environment variable not set")
	ErrInvalidPort   = errors.New("invalid server port")
)

const DefaultProviderURL = "https://api.weatherapi.com/v1/current.json"

type Server struct {
	Port              int
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

type Provider struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type CORS struct {
	AllowedOrigins []string
}

type Log struct {
	Level       string
	Development bool
	File        string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
}

// Config is built once at startup by Load and handed to the components that need it.
type Config struct {
	Server   Server
	Provider Provider
	CORS     CORS
	Log      Log
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// Options tweak where Load looks for its files. The zero value searches the project root.
type Options struct {
	// Dir overrides the directory holding config.yaml and .env.
	Dir string
	// SkipDotEnv disables loading the .env file.
	SkipDotEnv bool
}

// Load reads config.yaml (optional), .env (optional) and the process
// environment, environment winning. The API key is mandatory.
func Load(opts ...Options) (*Config, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	dir := o.Dir
	if dir == "" {
		if root, err := getProjectRoot(); err == nil {
			dir = root
		}
	}

	if !o.SkipDotEnv {
		// godotenv never overrides variables already set in the environment
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}

	v := newViper(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	port, err := parsePort(v.GetString("server.port"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: Server{
			Port:              port,
			ReadHeaderTimeout: v.GetDuration("server.read_header_timeout"),
			ReadTimeout:       v.GetDuration("server.read_timeout"),
			WriteTimeout:      v.GetDuration("server.write_timeout"),
			IdleTimeout:       v.GetDuration("server.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("server.shutdown_timeout"),
		},
		Provider: Provider{
			APIKey:  strings.TrimSpace(v.GetString("provider.api_key")),
			BaseURL: v.GetString("provider.base_url"),
			Timeout: v.GetDuration("provider.timeout"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
		},
		Log: Log{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
			File:        v.GetString("log.file"),
			MaxSizeMB:   v.GetInt("log.max_size_mb"),
			MaxBackups:  v.GetInt("log.max_backups"),
			MaxAgeDays:  v.GetInt("log.max_age_days"),
		},
	}

	if cfg.Provider.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}
	return cfg, nil
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("config")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_header_timeout", "15s")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", DefaultProviderURL)
	v.SetDefault("provider.timeout", "10s")
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	// server.read_timeout <- SERVER_READ_TIMEOUT etc.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("provider.api_key", "WEATHER_API_KEY")
	_ = v.BindEnv("server.port", "PORT")
	return v
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, raw)
	}
	return port, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}
