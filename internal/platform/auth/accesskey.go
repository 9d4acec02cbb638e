package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/indrapalijama/alkitab-api-v3/internal/platform/httpx"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/requestctx"
)

// AccessKeyHeader carries the shared API key on protected routes.
const AccessKeyHeader = "accesskey"

// MetricsRecorder records verification outcomes for observability.
type MetricsRecorder interface {
	RecordVerification(kind string, success bool, reason string)
}

// MetricsRecorderFunc adapts a function to MetricsRecorder.
type MetricsRecorderFunc func(kind string, success bool, reason string)

// RecordVerification implements MetricsRecorder.
func (f MetricsRecorderFunc) RecordVerification(kind string, success bool, reason string) {
	if f != nil {
		f(kind, success, reason)
	}
}

// AccessKeyValidator compares the accesskey header against a configured key.
type AccessKeyValidator struct {
	key     []byte
	metrics MetricsRecorder
}

// AccessKeyOption customises the validator.
type AccessKeyOption func(*AccessKeyValidator)

// WithAccessKeyMetrics sets the metrics recorder.
func WithAccessKeyMetrics(metrics MetricsRecorder) AccessKeyOption {
	return func(v *AccessKeyValidator) {
		v.metrics = metrics
	}
}

// NewAccessKeyValidator builds a validator for key. Surrounding whitespace is
// ignored on both sides of the comparison.
func NewAccessKeyValidator(key string, opts ...AccessKeyOption) *AccessKeyValidator {
	v := &AccessKeyValidator{key: []byte(strings.TrimSpace(key))}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Valid reports whether presented matches the configured key in constant time.
// An unconfigured validator accepts nothing.
func (v *AccessKeyValidator) Valid(presented string) bool {
	if v == nil || len(v.key) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(presented)), v.key) == 1
}

// RequireAccessKey rejects requests without a matching accesskey header with 401.
func (v *AccessKeyValidator) RequireAccessKey() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(AccessKeyHeader)
			reason := "ok"
			switch {
			case strings.TrimSpace(presented) == "":
				reason = "key_missing"
			case !v.Valid(presented):
				reason = "key_mismatch"
			}

			if reason != "ok" {
				v.record(false, reason)
				requestctx.Logger(r.Context()).Debug("access key rejected", zap.String("reason", reason))
				httpx.WriteError(r.Context(), w, httpx.NewError("unauthorized", "missing or invalid access key", http.StatusUnauthorized))
				return
			}

			v.record(true, reason)
			next.ServeHTTP(w, r)
		})
	}
}

func (v *AccessKeyValidator) record(success bool, reason string) {
	if v == nil || v.metrics == nil {
		return
	}
	v.metrics.RecordVerification("access_key", success, reason)
}
