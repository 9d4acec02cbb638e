package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile            = ".env"
	defaultHost               = "0.0.0.0"
	defaultPort               = "8080"
	defaultReadTimeout        = 15 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultIdleTimeout        = 120 * time.Second
	defaultEnvironment        = "development"
	defaultFetchTimeout       = 10 * time.Second
	defaultConnectTimeout     = 5 * time.Second
	defaultMaxIdlePerHost     = 10
	defaultRateLimitPerMinute = 600
	defaultSecretsFallback    = ".secrets.local"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Bible       BibleConfig
	Security    SecurityConfig
	CORS        CORSConfig
	RateLimits  RateLimitConfig
	Events      EventsConfig
	Secrets     SecretsConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// BibleConfig locates the content source and tunes the outbound client.
type BibleConfig struct {
	BaseURL        string
	ProfilesFile   string
	FetchTimeout   time.Duration
	ConnectTimeout time.Duration
	MaxIdlePerHost int
}

// SecurityConfig holds the shared access key checked on /bible routes.
type SecurityConfig struct {
	AccessKey string
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig controls per-client request throttling. Zero disables it.
type RateLimitConfig struct {
	PerMinute int
}

// EventsConfig enables the lookup event topic when Topic is set.
type EventsConfig struct {
	ProjectID string
	Topic     string
}

// Enabled reports whether lookup events should be published.
func (e EventsConfig) Enabled() bool {
	return strings.TrimSpace(e.Topic) != ""
}

// SecretsConfig configures Secret Manager lookups for sm:// references.
type SecretsConfig struct {
	ProjectID    string
	FallbackFile string
}

// SecretResolver resolves references to external secrets.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret calls f.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError lists configuration fields that are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the offending field names.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes a failed secret reference.
type SecretError struct {
	Ref string
	Err error
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env path. An empty path skips the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values; they take precedence over the process environment.
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

// WithSecretResolver sets the resolver used for sm:// and secret:// values.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

func newLoaderOptions(opts []Option) loaderOptions {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// source looks keys up with the precedence explicit map > process env > .env.
type source struct {
	envMap       map[string]string
	useSystemEnv bool
	dotEnv       map[string]string
}

func newSource(options loaderOptions) (source, error) {
	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return source{}, err
	}
	return source{envMap: options.envMap, useSystemEnv: options.useSystemEnv, dotEnv: dotEnv}, nil
}

func (s source) lookup(key string) (string, bool) {
	if value, ok := s.envMap[key]; ok {
		return value, true
	}
	if s.useSystemEnv {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
	}
	value, ok := s.dotEnv[key]
	return value, ok
}

func (s source) str(key, fallback string) string {
	if value, ok := s.lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func (s source) duration(key string, fallback time.Duration) time.Duration {
	if value := s.str(key, ""); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (s source) integer(key string, fallback int) int {
	if value := s.str(key, ""); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func (s source) csv(key string) []string {
	out := []string{}
	for _, part := range strings.Split(s.str(key, ""), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// EnvironmentValue returns one key with the same precedence Load uses, so
// callers can build dependencies such as the secret fetcher before Load runs.
func EnvironmentValue(key string, opts ...Option) (string, error) {
	src, err := newSource(newLoaderOptions(opts))
	if err != nil {
		return "", err
	}
	return src.str(key, ""), nil
}

// Load assembles the configuration from defaults, the .env file, the process
// environment and explicit overrides, then resolves secret references.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := newLoaderOptions(opts)
	src, err := newSource(options)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment: strings.ToLower(src.str("APP_ENVIRONMENT", src.str("RUST_ENV", defaultEnvironment))),
		Server: ServerConfig{
			Host:         src.str("APP_SERVER_HOST", defaultHost),
			Port:         src.str("APP_SERVER_PORT", defaultPort),
			ReadTimeout:  src.duration("APP_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: src.duration("APP_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  src.duration("APP_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Bible: BibleConfig{
			BaseURL:        src.str("APP_BIBLE_BASE_URL", ""),
			ProfilesFile:   src.str("APP_BIBLE_PROFILES_FILE", ""),
			FetchTimeout:   src.duration("APP_BIBLE_FETCH_TIMEOUT", defaultFetchTimeout),
			ConnectTimeout: src.duration("APP_BIBLE_CONNECT_TIMEOUT", defaultConnectTimeout),
			MaxIdlePerHost: src.integer("APP_BIBLE_MAX_IDLE_PER_HOST", defaultMaxIdlePerHost),
		},
		Security: SecurityConfig{
			AccessKey: src.str("APP_SECURITY_ACCESS_KEY", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: src.csv("APP_CORS_ALLOWED_ORIGINS"),
		},
		RateLimits: RateLimitConfig{
			PerMinute: src.integer("APP_RATELIMIT_PER_MIN", defaultRateLimitPerMinute),
		},
		Events: EventsConfig{
			ProjectID: src.str("APP_EVENTS_PROJECT_ID", ""),
			Topic:     src.str("APP_EVENTS_TOPIC", ""),
		},
		Secrets: SecretsConfig{
			ProjectID:    src.str("APP_SECRETS_PROJECT_ID", ""),
			FallbackFile: src.str("APP_SECRETS_FALLBACK_FILE", defaultSecretsFallback),
		},
	}

	if cfg.Events.ProjectID == "" {
		cfg.Events.ProjectID = cfg.Secrets.ProjectID
	}

	resolver := options.secret
	if resolver == nil {
		resolver = SecretResolverFunc(func(context.Context, string) (string, error) {
			return "", errSecretResolverNotConfigured
		})
	}
	resolved, err := resolveSecret(ctx, cfg.Security.AccessKey, resolver)
	if err != nil {
		return Config{}, err
	}
	cfg.Security.AccessKey = strings.TrimSpace(resolved)

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if !isSecretReference(value) {
		return value, nil
	}
	ref := normalizeSecretReference(value)
	secret, err := resolver.ResolveSecret(ctx, ref)
	if err != nil {
		return "", &SecretError{Ref: ref, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	} else if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		invalid = append(invalid, "Server.Port")
	}
	if u, err := url.Parse(cfg.Bible.BaseURL); cfg.Bible.BaseURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		invalid = append(invalid, "Bible.BaseURL")
	}
	if cfg.Bible.FetchTimeout <= 0 {
		invalid = append(invalid, "Bible.FetchTimeout")
	}
	if cfg.Bible.ConnectTimeout <= 0 {
		invalid = append(invalid, "Bible.ConnectTimeout")
	}
	if cfg.Bible.MaxIdlePerHost <= 0 {
		invalid = append(invalid, "Bible.MaxIdlePerHost")
	}
	if cfg.Security.AccessKey == "" {
		invalid = append(invalid, "Security.AccessKey")
	}
	if cfg.RateLimits.PerMinute < 0 {
		invalid = append(invalid, "RateLimits.PerMinute")
	}
	if cfg.Events.Enabled() && cfg.Events.ProjectID == "" {
		invalid = append(invalid, "Events.ProjectID")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if rest, ok := strings.CutPrefix(trimmed, "sm://"); ok {
		return "secret://" + rest
	}
	return trimmed
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

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}
