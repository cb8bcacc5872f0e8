package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/sitesimilarity/internal/proxy"
)

func newTestServer(t *testing.T, tls bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	})
	mux.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.UserAgent()))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
		w.Write([]byte("late"))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 4096)))
	})

	var srv *httptest.Server
	if tls {
		srv = httptest.NewTLSServer(mux)
	} else {
		srv = httptest.NewServer(mux)
	}
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcher(t *testing.T) {
	srv := newTestServer(t, false)
	f := NewHTTPFetcher(HTTPOptions{Timeout: time.Second})
	ctx := context.Background()

	t.Run("success returns body", func(t *testing.T) {
		body, err := f.Fetch(ctx, srv.URL+"/ok")
		require.NoError(t, err)
		assert.Equal(t, "hello world", body)
	})

	t.Run("redirects are followed", func(t *testing.T) {
		body, err := f.Fetch(ctx, srv.URL+"/moved")
		require.NoError(t, err)
		assert.Equal(t, "hello world", body)
	})

	for _, path := range []string{"/missing", "/broken"} {
		t.Run("non-2xx fails "+path, func(t *testing.T) {
			_, err := f.Fetch(ctx, srv.URL+path)
			require.ErrorIs(t, err, ErrUnexpectedStatus)
		})
	}

	t.Run("connection refused fails", func(t *testing.T) {
		_, err := f.Fetch(ctx, "http://127.0.0.1:1")
		assert.Error(t, err)
	})
}

func TestHTTPFetcherTimeout(t *testing.T) {
	srv := newTestServer(t, false)
	f := NewHTTPFetcher(HTTPOptions{Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := f.Fetch(context.Background(), srv.URL+"/slow")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestHTTPFetcherTLS(t *testing.T) {
	srv := newTestServer(t, true)

	insecure := NewHTTPFetcher(HTTPOptions{Timeout: time.Second, IgnoreTLSErrors: true})
	body, err := insecure.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "hello world", body)

	strict := NewHTTPFetcher(HTTPOptions{Timeout: time.Second})
	_, err = strict.Fetch(context.Background(), srv.URL+"/ok")
	assert.Error(t, err)
}

func TestHTTPFetcherBodyCap(t *testing.T) {
	srv := newTestServer(t, false)
	f := NewHTTPFetcher(HTTPOptions{Timeout: time.Second, MaxBodyBytes: 100})

	body, err := f.Fetch(context.Background(), srv.URL+"/big")
	require.NoError(t, err)
	assert.Len(t, body, 100)
}

func TestHTTPFetcherUserAgent(t *testing.T) {
	srv := newTestServer(t, false)
	pm, err := proxy.NewManager("recon/1.0", nil)
	require.NoError(t, err)
	f := NewHTTPFetcher(HTTPOptions{Timeout: time.Second, Proxies: pm})

	body, err := f.Fetch(context.Background(), srv.URL+"/agent")
	require.NoError(t, err)
	assert.Equal(t, "recon/1.0", body)
}
