package pagefetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = `<html><body><form id="application_form"></form></body></html>`

func fastClient() *Client {
	c := New(nil)
	c.HTTPClient.RetryWaitMin = time.Millisecond
	c.HTTPClient.RetryWaitMax = 5 * time.Millisecond
	return c
}

func TestFetchPlain(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	page, err := fastClient().Fetch(context.Background(), srv.URL+"/jobs/1")
	require.NoError(t, err)
	assert.Equal(t, body, string(page.HTML))
	assert.Equal(t, srv.URL+"/jobs/1", page.URL)
}

func TestFetchGzip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	page, err := fastClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, string(page.HTML))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	page, err := fastClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, string(page.HTML))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchBadStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	_, err := fastClient().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad status")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastClient().Fetch(ctx, "http://127.0.0.1:1")
	assert.Error(t, err)
}
