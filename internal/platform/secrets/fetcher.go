package secrets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultFallbackPath = ".secrets.local"
	meterName           = "github.com/indrapalijama/alkitab-api-v3/internal/platform/secrets"
)

var secretManagerClientFactory = func(ctx context.Context, opts ...option.ClientOption) (secretManagerClient, error) {
	return secretmanager.NewClient(ctx, opts...)
}

type secretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Fetcher resolves secret://name references against Google Secret Manager,
// caching values and falling back to a local KEY=VALUE file when the service
// refuses or is unreachable.
type Fetcher struct {
	client     secretManagerClient
	ownsClient bool
	logger     *zap.Logger
	project    string

	fallbackPath string
	fallbackOnce sync.Once
	fallbackVals map[string]string
	fallbackErr  error

	mu    sync.RWMutex
	cache map[string]string

	latency   metric.Float64Histogram
	cacheHits metric.Int64Counter
}

type fetcherConfig struct {
	logger       *zap.Logger
	project      string
	fallbackPath string
	meter        metric.Meter
	client       secretManagerClient
	clientOpts   []option.ClientOption
}

// Option customises Fetcher construction.
type Option func(*fetcherConfig)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *fetcherConfig) { cfg.logger = logger }
}

// WithDefaultProject sets the project used when a reference names none. Without
// a project only the fallback file is consulted.
func WithDefaultProject(projectID string) Option {
	return func(cfg *fetcherConfig) { cfg.project = strings.TrimSpace(projectID) }
}

// WithFallbackFile overrides the local fallback file path.
func WithFallbackFile(path string) Option {
	return func(cfg *fetcherConfig) { cfg.fallbackPath = strings.TrimSpace(path) }
}

// WithMeter injects an OpenTelemetry meter.
func WithMeter(m metric.Meter) Option {
	return func(cfg *fetcherConfig) { cfg.meter = m }
}

// WithSecretManagerClient injects a client, mainly for tests.
func WithSecretManagerClient(client secretManagerClient) Option {
	return func(cfg *fetcherConfig) { cfg.client = client }
}

// WithClientOptions forwards options to the Secret Manager client constructor.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(cfg *fetcherConfig) { cfg.clientOpts = append(cfg.clientOpts, opts...) }
}

// NewFetcher builds a Fetcher. The Secret Manager client is only created when
// a default project is configured; creation failures degrade to fallback mode.
func NewFetcher(ctx context.Context, opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{fallbackPath: defaultFallbackPath}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	meter := cfg.meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(meterName)
	}

	f := &Fetcher{
		logger:       cfg.logger.Named("secrets"),
		project:      cfg.project,
		fallbackPath: cfg.fallbackPath,
		cache:        make(map[string]string),
	}

	var err error
	if f.latency, err = meter.Float64Histogram("secrets.fetch.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency of secret resolution"),
	); err != nil {
		f.logger.Warn("unable to register latency metric", zap.Error(err))
	}
	if f.cacheHits, err = meter.Int64Counter("secrets.fetch.cache_hits",
		metric.WithDescription("Secret resolutions served from cache"),
	); err != nil {
		f.logger.Warn("unable to register cache hit metric", zap.Error(err))
	}

	switch {
	case cfg.client != nil:
		f.client = cfg.client
	case cfg.project != "":
		client, err := secretManagerClientFactory(ctx, cfg.clientOpts...)
		if err != nil {
			f.logger.Warn("secret manager client unavailable; using fallback file only", zap.Error(err))
		} else {
			f.client = client
			f.ownsClient = true
		}
	}
	return f, nil
}

// Close releases the Secret Manager client when the fetcher created it.
func (f *Fetcher) Close() error {
	if f.ownsClient && f.client != nil {
		return f.client.Close()
	}
	return nil
}

// ResolveSecret resolves ref; it lets a Fetcher act as the config resolver.
func (f *Fetcher) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f.Resolve(ctx, ref)
}

// Resolve returns the secret named by ref, for example
// secret://alkitab-access-key?version=3&project=other.
func (f *Fetcher) Resolve(ctx context.Context, ref string) (string, error) {
	start := time.Now()
	parsed, err := parseReference(ref)
	if err != nil {
		return "", err
	}
	key := parsed.cacheKey()

	f.mu.RLock()
	value, ok := f.cache[key]
	f.mu.RUnlock()
	if ok {
		if f.cacheHits != nil {
			f.cacheHits.Add(ctx, 1)
		}
		f.recordLatency(ctx, start, "cache")
		return value, nil
	}

	source := "remote"
	project := parsed.project
	if project == "" {
		project = f.project
	}
	if project != "" && f.client != nil {
		value, err = f.fetchRemote(ctx, project, parsed)
		if err != nil && !isFallbackError(err) {
			f.recordLatency(ctx, start, "error")
			return "", fmt.Errorf("secrets: fetch failed for %s: %w", parsed.canonical, err)
		}
		if err != nil {
			f.logger.Debug("falling back to local secrets", zap.String("ref", parsed.canonical), zap.Error(err))
		}
	}
	if project == "" || f.client == nil || err != nil {
		source = "fallback"
		var found bool
		value, found = f.lookupFallback(parsed)
		if !found {
			f.recordLatency(ctx, start, "error")
			return "", fmt.Errorf("secrets: no value for %s", parsed.canonical)
		}
	}

	f.mu.Lock()
	f.cache[key] = value
	f.mu.Unlock()
	f.recordLatency(ctx, start, source)
	return value, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, project string, ref reference) (string, error) {
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, ref.secret, ref.version)
	resp, err := f.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", err
	}
	if resp.GetPayload() == nil {
		return "", fmt.Errorf("secret manager returned empty payload for %s", name)
	}
	return string(resp.GetPayload().GetData()), nil
}

func (f *Fetcher) lookupFallback(ref reference) (string, bool) {
	f.fallbackOnce.Do(f.loadFallback)
	if f.fallbackErr != nil {
		f.logger.Warn("fallback file unreadable", zap.Error(f.fallbackErr))
		return "", false
	}
	if value, ok := f.fallbackVals[ref.cacheKey()]; ok {
		return value, true
	}
	value, ok := f.fallbackVals[ref.canonical]
	return value, ok
}

// loadFallback reads lines of the form secret://name[?version=n]=value.
func (f *Fetcher) loadFallback() {
	f.fallbackVals = map[string]string{}
	if f.fallbackPath == "" {
		return
	}
	path, err := filepath.Abs(f.fallbackPath)
	if err != nil {
		path = f.fallbackPath
	}
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		f.fallbackErr = fmt.Errorf("secrets: open fallback file %s: %w", path, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// A ?version=n query carries its own '=' before the separator.
		idx := strings.Index(line, "=")
		if q := strings.Index(line, "?"); q >= 0 && q < idx {
			next := strings.Index(line[idx+1:], "=")
			if next < 0 {
				continue
			}
			idx += 1 + next
		}
		if idx <= 0 {
			continue
		}
		rawRef, value := strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
		if rest, ok := strings.CutPrefix(rawRef, "sm://"); ok {
			rawRef = "secret://" + rest
		}
		ref, err := parseReference(rawRef)
		if err != nil {
			continue
		}
		f.fallbackVals[ref.cacheKey()] = value
		if _, explicit := f.fallbackVals[ref.canonical]; !explicit || ref.version == "latest" {
			f.fallbackVals[ref.canonical] = value
		}
	}
	if err := scanner.Err(); err != nil {
		f.fallbackErr = fmt.Errorf("secrets: read fallback file %s: %w", path, err)
	}
}

func (f *Fetcher) recordLatency(ctx context.Context, start time.Time, source string) {
	if f.latency == nil {
		return
	}
	f.latency.Record(ctx, float64(time.Since(start))/float64(time.Millisecond),
		metric.WithAttributes(attribute.String("source", source)))
}

type reference struct {
	canonical string
	secret    string
	version   string
	project   string
}

func (r reference) cacheKey() string {
	return r.canonical + "#" + r.version
}

func parseReference(ref string) (reference, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return reference{}, errors.New("secrets: empty reference")
	}
	u, err := url.Parse(ref)
	if err != nil {
		return reference{}, fmt.Errorf("secrets: invalid reference %q: %w", ref, err)
	}
	if u.Scheme != "secret" {
		return reference{}, fmt.Errorf("secrets: unsupported scheme %q", u.Scheme)
	}
	name := strings.Trim(u.Host+u.Path, "/")
	if name == "" {
		return reference{}, fmt.Errorf("secrets: missing secret name in %q", ref)
	}
	version := strings.TrimSpace(u.Query().Get("version"))
	if version == "" {
		version = "latest"
	}
	return reference{
		canonical: "secret://" + name,
		secret:    name,
		version:   version,
		project:   strings.TrimSpace(u.Query().Get("project")),
	}, nil
}

func isFallbackError(err error) bool {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated, codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
