package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grantwatch/harvester/internal/harvest"
)

func testConfig(maxRetries int) Config {
	return Config{
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		BackoffInitial: time.Millisecond,
		BackoffStep:    time.Millisecond,
		BackoffMax:     5 * time.Millisecond,
	}
}

func TestFetchSucceedsAfterRetries(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := New(testConfig(3))
	result, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, 3, result.Attempts)
	require.Equal(t, int32(3), attempts.Load())
	require.Contains(t, string(result.Body), "ok")
	require.Equal(t, http.StatusOK, result.StatusCode)
}

func TestFetchExhaustsRetries(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(testConfig(2))
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.Equal(t, int32(2), attempts.Load())

	var fetchErr *harvest.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 2, fetchErr.Attempts)
	require.Equal(t, srv.URL, fetchErr.URL)
}

func TestFetchSendsIdentifyingHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(testConfig(1))
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, defaultUserAgent, gotUA)
	require.Equal(t, acceptHeader, gotAccept)
}

func TestFetchHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(testConfig(3))
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
}
