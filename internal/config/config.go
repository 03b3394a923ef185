// Package config loads the site configuration from defaults, a .env file and the
// process environment.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultEnvFile = ".env"
	envPrefix      = "SITE_"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Env        string        `env:"ENV" envDefault:"local"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL    string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Dev        bool          `env:"DEV" envDefault:"false"`
	Revalidate time.Duration `env:"REVALIDATE" envDefault:"300s"`

	Server ServerConfig `envPrefix:"SERVER_"`
	Paths  PathsConfig
	CMS    CMSConfig `envPrefix:"CMS_"`
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr         string        `env:"ADDR"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
}

// PathsConfig locates the on-disk assets of the site.
type PathsConfig struct {
	Templates string `env:"TEMPLATES_DIR" envDefault:"templates"`
	Public    string `env:"PUBLIC_DIR" envDefault:"public"`
	Locales   string `env:"LOCALES_DIR" envDefault:"locales"`
	Content   string `env:"CONTENT_DIR" envDefault:"content"`
}

// CMSConfig points at the headless content store. An empty URL selects the local
// content directory instead.
type CMSConfig struct {
	URL      string        `env:"URL"`
	Token    string        `env:"TOKEN"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"5s"`
	PageSize int           `env:"PAGE_SIZE" envDefault:"50"`
}

// Remote reports whether content is read from the headless CMS.
func (c CMSConfig) Remote() bool {
	return strings.TrimSpace(c.URL) != ""
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path. An empty path disables the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over everything else.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv stops Load from reading the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// EnvironmentValues returns the effective key/value map with the precedence used by
// Load: .env < OS env < explicit map.
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	merge := func(source map[string]string) {
		for key, value := range source {
			values[key] = value
		}
	}
	merge(dotEnvValues)
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			values[strings.TrimSpace(key)] = value
		}
	}
	merge(options.envMap)
	return values, nil
}

// Load assembles the configuration. SITE_SERVER_ADDR falls back to SITE_ADDR and then
// to PORT as set by most container platforms.
func Load(opts ...Option) (Config, error) {
	values, err := EnvironmentValues(opts...)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment: values,
		Prefix:      envPrefix,
	}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = firstNonEmpty(values[envPrefix+"ADDR"], portAddr(values["PORT"]), ":8080")
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.CMS.URL = strings.TrimSpace(cfg.CMS.URL)

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var fields []string
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		fields = append(fields, "BaseURL")
	}
	if cfg.CMS.Remote() {
		if u, err := url.Parse(cfg.CMS.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fields = append(fields, "CMS.URL")
		}
	} else if strings.TrimSpace(cfg.Paths.Content) == "" {
		fields = append(fields, "Paths.Content")
	}
	if cfg.CMS.Timeout <= 0 {
		fields = append(fields, "CMS.Timeout")
	}
	if cfg.CMS.PageSize <= 0 {
		fields = append(fields, "CMS.PageSize")
	}
	if cfg.Revalidate < 0 {
		fields = append(fields, "Revalidate")
	}
	if strings.TrimSpace(cfg.Paths.Templates) == "" {
		fields = append(fields, "Paths.Templates")
	}
	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func portAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ""
	}
	return ":" + port
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
