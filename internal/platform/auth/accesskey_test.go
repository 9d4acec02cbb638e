package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordingMetrics struct {
	records []verification
}

type verification struct {
	success bool
	reason  string
}

func (m *recordingMetrics) RecordVerification(kind string, success bool, reason string) {
	if kind != "access_key" {
		return
	}
	m.records = append(m.records, verification{success: success, reason: reason})
}

func TestRequireAccessKey(t *testing.T) {
	metrics := &recordingMetrics{}
	validator := NewAccessKeyValidator(" s3cret ", WithAccessKeyMetrics(metrics))

	handler := validator.RequireAccessKey()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		reason string
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized, reason: "key_missing"},
		{name: "blank", header: "   ", status: http.StatusUnauthorized, reason: "key_missing"},
		{name: "wrong", header: "s3cre", status: http.StatusUnauthorized, reason: "key_mismatch"},
		{name: "exact", header: "s3cret", status: http.StatusNoContent, reason: "ok"},
		{name: "padded", header: "  s3cret\t", status: http.StatusNoContent, reason: "ok"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/bible/find/kej", nil)
			if tc.header != "" {
				req.Header.Set(AccessKeyHeader, tc.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
			if tc.status != http.StatusUnauthorized {
				return
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["error"] != "unauthorized" {
				t.Fatalf("expected unauthorized error, got %v", body["error"])
			}
			if _, ok := body["status"]; ok {
				t.Fatalf("status must not be serialised: %v", body)
			}
		})
	}

	if len(metrics.records) != len(tests) {
		t.Fatalf("expected %d records, got %d", len(tests), len(metrics.records))
	}
	for i, tc := range tests {
		got := metrics.records[i]
		if got.reason != tc.reason || got.success != (tc.reason == "ok") {
			t.Fatalf("record %d: unexpected %+v", i, got)
		}
	}
}

func TestEmptyKeyRejectsEverything(t *testing.T) {
	validator := NewAccessKeyValidator("  ")
	if validator.Valid("") || validator.Valid("anything") {
		t.Fatal("unconfigured validator must reject")
	}

	var nilValidator *AccessKeyValidator
	if nilValidator.Valid("x") {
		t.Fatal("nil validator must reject")
	}
}

func TestMetricsRecorderFunc(t *testing.T) {
	var calls int
	recorder := MetricsRecorderFunc(func(kind string, success bool, reason string) {
		calls++
	})
	NewAccessKeyValidator("k", WithAccessKeyMetrics(recorder)).record(true, "ok")
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}

	var nilFunc MetricsRecorderFunc
	nilFunc.RecordVerification("access_key", true, "ok")
}
