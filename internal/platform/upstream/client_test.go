package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordedFetch struct {
	outcome string
}

type fakeRecorder struct {
	mu      sync.Mutex
	fetches []recordedFetch
}

func (r *fakeRecorder) ObserveUpstream(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, recordedFetch{outcome: outcome})
}

func (r *fakeRecorder) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.fetches))
	for _, f := range r.fetches {
		out = append(out, f.outcome)
	}
	return out
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	for _, raw := range []string{"", "alkitab.mobi", "ftp://alkitab.mobi", "http://"} {
		_, err := NewClient(raw)
		require.ErrorIs(t, err, ErrInvalidBaseURL, "base=%q", raw)
	}

	c, err := NewClient(" https://alkitab.example/base/ ")
	require.NoError(t, err)
	require.Equal(t, "https://alkitab.example/base/tb/Kej/1", c.URL("tb", "Kej", "1"))
	require.Equal(t, "https://alkitab.example/base/tb/a%2Fb", c.URL("tb", "a/b"))
}

func TestFetchReturnsBody(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.UserAgent()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p>Pada mulanya</p>"))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	c, err := NewClient(srv.URL, WithRecorder(rec))
	require.NoError(t, err)

	body, err := c.Fetch(context.Background(), "tb", "Kej", "1")
	require.NoError(t, err)
	require.Equal(t, "<p>Pada mulanya</p>", body)
	require.Equal(t, "/tb/Kej/1", gotPath)
	require.Equal(t, defaultUserAgent, gotUA)
	require.Equal(t, []string{OutcomeSuccess}, rec.outcomes())
}

func TestFetchDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	body, err := c.Fetch(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, "café", body)
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	c, err := NewClient(srv.URL, WithRecorder(rec))
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "tb", "Kej", "9999")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.True(t, strings.HasSuffix(statusErr.URL, "/tb/Kej/9999"))
	require.Equal(t, []string{OutcomeStatus}, rec.outcomes())
}

func TestFetchBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithMaxBodyBytes(32))
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "big")
	require.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestFetchTransportAndCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	addr := srv.URL

	rec := &fakeRecorder{}
	c, err := NewClient(addr, WithRecorder(rec), WithTimeouts(2*time.Second, time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Fetch(ctx, "slow")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	srv.Close()
	_, err = c.Fetch(context.Background(), "gone")
	require.Error(t, err)
	var statusErr *StatusError
	require.False(t, errors.As(err, &statusErr))

	require.Equal(t, []string{OutcomeCanceled, OutcomeTransport}, rec.outcomes())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestFetchUsesInjectedHTTPClient(t *testing.T) {
	var seen []string
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r.URL.String())
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
			Body:       io.NopCloser(strings.NewReader("<p>Bumi belum berbentuk</p>")),
			Request:    r,
		}, nil
	})}

	c, err := NewClient("https://alkitab.example", WithHTTPClient(hc), WithHTTPClient(nil))
	require.NoError(t, err)
	require.Same(t, hc, c.http)

	body, err := c.Fetch(context.Background(), "tb", "Kej", "1")
	require.NoError(t, err)
	require.Equal(t, "<p>Bumi belum berbentuk</p>", body)
	require.Equal(t, []string{"https://alkitab.example/tb/Kej/1"}, seen)
}
