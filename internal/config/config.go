// Package config loads the task API configuration.
//
// Values come from built-in defaults, then an optional YAML file, then the
// environment. The resulting Config is validated once at startup and passed
// down explicitly; nothing reads the environment after Load returns.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/JamesPrial/todo-api/internal/pathutil"
	"github.com/JamesPrial/todo-api/internal/storage"
)

// Config is the complete runtime configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Mirror MirrorConfig `mapstructure:"mirror"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// AuthConfig holds the single accepted identity.
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// MirrorConfig selects where created tasks are mirrored.
type MirrorConfig struct {
	Backend     string `mapstructure:"backend"`
	Dir         string `mapstructure:"dir"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.addr":         "TODO_ADDR",
	"auth.username":       "TODO_AUTH_USERNAME",
	"auth.password":       "TODO_AUTH_PASSWORD",
	"mirror.backend":      "TODO_MIRROR_BACKEND",
	"mirror.dir":          "TASK_PATH",
	"mirror.sqlite_path":  "TODO_SQLITE_PATH",
	"mirror.postgres_url": "TODO_POSTGRES_URL",
	"log.level":           "TODO_LOG_LEVEL",
	"log.format":          "TODO_LOG_FORMAT",
	"log.file":            "TODO_LOG_FILE",
}

// Default returns the built-in configuration. Mirror.Dir has no default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "0.0.0.0:5000",
		},
		Auth: AuthConfig{
			Username: "miguel",
			Password: "python",
		},
		Mirror: MirrorConfig{
			Backend: storage.BackendFile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty) and the environment, in increasing order of precedence.
//
// Load does not validate; call Validate before using the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("auth.username", d.Auth.Username)
	v.SetDefault("auth.password", d.Auth.Password)
	v.SetDefault("mirror.backend", d.Mirror.Backend)
	v.SetDefault("mirror.dir", d.Mirror.Dir)
	v.SetDefault("mirror.sqlite_path", d.Mirror.SQLitePath)
	v.SetDefault("mirror.postgres_url", d.Mirror.PostgresURL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}

// Validate reports every problem with c, joined into one error.
//
// The mirror directory must exist and be a directory, so a misconfigured
// deployment fails at startup instead of on the first create.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Auth.Username == "" || c.Auth.Password == "" {
		errs = append(errs, errors.New("auth.username and auth.password are required"))
	}

	if strings.TrimSpace(c.Mirror.Dir) == "" {
		errs = append(errs, errors.New("mirror.dir is required (set TASK_PATH)"))
	} else if _, err := pathutil.ValidateDir(c.Mirror.Dir); err != nil {
		errs = append(errs, fmt.Errorf("mirror.dir: %w", err))
	}

	switch strings.ToLower(strings.TrimSpace(c.Mirror.Backend)) {
	case "", storage.BackendFile, storage.BackendSQLite:
	case storage.BackendPostgres:
		if strings.TrimSpace(c.Mirror.PostgresURL) == "" {
			errs = append(errs, errors.New("mirror.postgres_url is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("mirror.backend: unknown backend %q", c.Mirror.Backend))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// MirrorOptions converts the mirror section into storage options.
func (c *Config) MirrorOptions() storage.MirrorOptions {
	return storage.MirrorOptions{
		Backend:     c.Mirror.Backend,
		Dir:         c.Mirror.Dir,
		SQLitePath:  c.Mirror.SQLitePath,
		PostgresURL: c.Mirror.PostgresURL,
	}
}
