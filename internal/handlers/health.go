package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/indrapalijama/alkitab-api-v3/internal/platform/httpx"
)

const (
	healthStatusOK       = "ok"
	healthStatusDegraded = "degraded"

	defaultReadinessTimeout = 3 * time.Second
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// HealthHandlers serves /healthz and /readyz.
type HealthHandlers struct {
	build   BuildInfo
	checks  map[string]ReadinessCheck
	now     func() time.Time
	timeout time.Duration
}

// HealthOption customises HealthHandlers.
type HealthOption func(*HealthHandlers)

// NewHealthHandlers constructs health handlers. Without checks /readyz always
// reports ok.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{
		checks:  make(map[string]ReadinessCheck),
		now:     time.Now,
		timeout: defaultReadinessTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.build.StartedAt.IsZero() {
		h.build.StartedAt = h.now()
	}
	return h
}

// WithHealthBuildInfo sets the build metadata echoed by /healthz.
func WithHealthBuildInfo(info BuildInfo) HealthOption {
	return func(h *HealthHandlers) {
		h.build = info
	}
}

// WithHealthClock injects a clock, primarily for tests.
func WithHealthClock(now func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if now != nil {
			h.now = now
		}
	}
}

// WithReadinessCheck registers a named dependency check for /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandlers) {
		if name != "" && check != nil {
			h.checks[name] = check
		}
	}
}

type healthPayload struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	CommitSHA   string `json:"commitSha,omitempty"`
	Environment string `json:"environment,omitempty"`
	Uptime      string `json:"uptime"`
	Timestamp   string `json:"timestamp"`
}

type checkPayload struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

type readinessPayload struct {
	Status    string                  `json:"status"`
	Checks    map[string]checkPayload `json:"checks"`
	Details   []string                `json:"details,omitempty"`
	Timestamp string                  `json:"timestamp"`
}

// Healthz reports liveness with build metadata.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	httpx.WriteJSON(w, http.StatusOK, healthPayload{
		Status:      healthStatusOK,
		Version:     h.build.Version,
		CommitSHA:   h.build.CommitSHA,
		Environment: h.build.Environment,
		Uptime:      now.Sub(h.build.StartedAt).Truncate(time.Second).String(),
		Timestamp:   now.UTC().Format(time.RFC3339),
	})
}

// Readyz runs every readiness check and answers 503 when any fails.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	payload := readinessPayload{
		Status: healthStatusOK,
		Checks: make(map[string]checkPayload, len(names)),
	}
	for _, name := range names {
		start := h.now()
		err := h.checks[name](ctx)
		result := checkPayload{Status: healthStatusOK, LatencyMS: h.now().Sub(start).Milliseconds()}
		if err != nil {
			result.Status = healthStatusDegraded
			result.Error = err.Error()
			payload.Status = healthStatusDegraded
			payload.Details = append(payload.Details, name+": "+err.Error())
		}
		payload.Checks[name] = result
	}
	payload.Timestamp = h.now().UTC().Format(time.RFC3339)

	status := http.StatusOK
	if payload.Status != healthStatusOK {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, payload)
}
