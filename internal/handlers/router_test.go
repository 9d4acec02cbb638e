package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/auth"
)

func TestNewRouter_DefaultRoutes(t *testing.T) {
	router := NewRouter()

	t.Run("index", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		if body := rr.Body.String(); body != "soli deo gloria" {
			t.Fatalf("unexpected body %q", body)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Fatalf("expected text/plain, got %s", ct)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected content-type application/json, got %s", ct)
		}
	})

	t.Run("bible group absent without registrar", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bible/find/kej", nil))

		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rr.Code)
		}
		if body := decodeBody(t, rr); body["error"] != "route_not_found" {
			t.Fatalf("unexpected error code %v", body["error"])
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/healthz", nil))

		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rr.Code)
		}
		if body := decodeBody(t, rr); body["error"] != "method_not_allowed" {
			t.Fatalf("unexpected error code %v", body["error"])
		}
	})

	t.Run("metrics absent without handler", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rr.Code)
		}
	})
}

func TestNewRouter_BibleGroupRequiresAccessKey(t *testing.T) {
	svc := &stubBibleService{metadata: domain.BookMetadata{Book: "Kejadian", TotalVerse: 1, Verses: []int{1}}}
	validator := auth.NewAccessKeyValidator("s3cret")
	router := NewRouter(
		WithBibleRoutes(NewBibleHandlers(svc).Routes),
		WithBibleMiddlewares(validator.RequireAccessKey()),
	)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bible/find/kej", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
	if len(svc.findBooks) != 0 {
		t.Fatalf("handler must not run without a key")
	}

	req := httptest.NewRequest(http.MethodGet, "/bible/find/kej", nil)
	req.Header.Set(auth.AccessKeyHeader, "s3cret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	// Unprotected routes stay open.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected index to stay public, got %d", rr.Code)
	}
}

func TestNewRouter_RateLimit(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := &stubBibleService{metadata: domain.BookMetadata{Book: "Kejadian"}}
	router := NewRouter(
		WithBibleRoutes(NewBibleHandlers(svc).Routes),
		WithRateLimit(2),
		WithClock(func() time.Time { return now }),
	)

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/bible/find/kej", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("203.0.113.7:5000"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := send("203.0.113.7:5001"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the same client on another port, got %d", code)
	}
	if code := send("198.51.100.2:5000"); code != http.StatusOK {
		t.Fatalf("expected other clients to be unaffected, got %d", code)
	}

	now = now.Add(time.Minute + time.Second)
	if code := send("203.0.113.7:5000"); code != http.StatusOK {
		t.Fatalf("expected the window to reset, got %d", code)
	}
}

func TestNewRouter_CORS(t *testing.T) {
	router := NewRouter(WithAllowedOrigins("https://alkitab.example"))

	req := httptest.NewRequest(http.MethodOptions, "/bible/find/kej", nil)
	req.Header.Set("Origin", "https://alkitab.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "accesskey")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://alkitab.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials to be allowed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin must not be allowed, got %q", got)
	}
}

func TestNewRouter_NoCORSWithoutOrigins(t *testing.T) {
	router := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://alkitab.example")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS headers, got %q", got)
	}
}

func TestNewRouter_MetricsHandler(t *testing.T) {
	router := NewRouter(WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("alkitab_up 1\n"))
	})))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "alkitab_up") {
		t.Fatalf("unexpected metrics response %d %q", rr.Code, rr.Body.String())
	}
}
