package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fenilmodi00/closet-backend/config"
	"github.com/fenilmodi00/closet-backend/models"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullProductPage = `<html><head><title>Crew Neck T | UNIQLO</title></head><body>` +
	strings.Repeat("<p>product details</p>", 100) +
	`<script>window.__PRELOADED_STATE__={"product":{"breadcrumbs":{"category":{"locale":"トップス"}}}}</script></body></html>`

func pageProfile(serverURL string, withRetry bool) config.BrandProfile {
	profile := config.BrandProfile{
		Brand:           models.BrandUniqlo,
		PageURLTemplate: serverURL + "/products/{productId}",
		MinPageBytes:    1000,
		RedirectMarker:  "Redirecting to",
	}
	if withRetry {
		profile.RetryURLTemplate = serverURL + "/products/E{productId}-000/00"
	}
	return profile
}

func newTestPageFetcher() *ProductPageFetcher {
	return NewProductPageFetcher(&http.Client{Transport: &http.Transport{}}, 5*time.Second, 0, shared.NewHTTPRequestRateLimiter(0))
}

func TestProductPageFetcherPlainPage(t *testing.T) {
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(fullProductPage))
	}))
	defer server.Close()

	result, err := newTestPageFetcher().Fetch(context.Background(), pageProfile(server.URL, true), "465185")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, fullProductPage, result.HTML)
	assert.False(t, result.Retried)
	assert.Equal(t, server.URL+"/products/465185", result.FinalURL)
	assert.Equal(t, shared.BrowserUserAgent, userAgent.Load())
}

func TestProductPageFetcherSoftFailureRetry(t *testing.T) {
	tests := []struct {
		name      string
		firstBody string
	}{
		{"short page", `<html>please wait</html>`},
		{"redirect stub", `<html><body>Redirecting to /jp/ja/products/E465185-000/00</body></html>` + strings.Repeat(" ", 2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/products/465185":
					_, _ = w.Write([]byte(tt.firstBody))
				case "/products/E465185-000/00":
					_, _ = w.Write([]byte(fullProductPage))
				default:
					http.NotFound(w, r)
				}
			}))
			defer server.Close()

			result, err := newTestPageFetcher().Fetch(context.Background(), pageProfile(server.URL, true), "465185")

			require.NoError(t, err)
			assert.True(t, result.Retried)
			assert.Equal(t, fullProductPage, result.HTML)
			assert.Equal(t, server.URL+"/products/E465185-000/00", result.RequestedURL)
		})
	}
}

func TestProductPageFetcherRetryNotOKKeepsOriginal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products/465185" {
			_, _ = w.Write([]byte(`<html>short</html>`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	result, err := newTestPageFetcher().Fetch(context.Background(), pageProfile(server.URL, true), "465185")

	require.NoError(t, err)
	assert.False(t, result.Retried)
	assert.Equal(t, `<html>short</html>`, result.HTML)
}

func TestProductPageFetcherNoRetryWithoutTemplate(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`<html>short</html>`))
	}))
	defer server.Close()

	result, err := newTestPageFetcher().Fetch(context.Background(), pageProfile(server.URL, false), "465185")

	require.NoError(t, err)
	assert.False(t, result.Retried)
	assert.Equal(t, int32(1), calls.Load())
}

func TestProductPageFetcherAcceptsAny2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		_, _ = w.Write([]byte(fullProductPage))
	}))
	defer server.Close()

	result, err := newTestPageFetcher().Fetch(context.Background(), pageProfile(server.URL, false), "465185")

	require.NoError(t, err)
	assert.Equal(t, http.StatusNonAuthoritativeInfo, result.StatusCode)
	assert.Equal(t, fullProductPage, result.HTML)
}

func TestPageFetchResultOK(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNoContent, 299} {
		assert.True(t, (&PageFetchResult{StatusCode: status}).OK(), status)
	}
	for _, status := range []int{0, 199, http.StatusMultipleChoices, http.StatusNotFound, http.StatusBadGateway} {
		assert.False(t, (&PageFetchResult{StatusCode: status}).OK(), status)
	}
	var missing *PageFetchResult
	assert.False(t, missing.OK())
}

func TestProductPageFetcherNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	result, err := newTestPageFetcher().Fetch(context.Background(), pageProfile(server.URL, false), "000000")

	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.True(t, shared.HasCode(err, shared.CodeUpstreamFetchFailure))
	assert.Equal(t, http.StatusNotFound, shared.HTTPStatusForError(err))
}

func TestProductPageFetcherUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	result, err := newTestPageFetcher().Fetch(context.Background(), pageProfile(url, true), "465185")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, http.StatusBadGateway, shared.HTTPStatusForError(err))
	assert.True(t, shared.IsRetryableError(err))
}

func TestProductPageFetcherFollowsRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products/465185" {
			http.Redirect(w, r, "/products/465185-canonical", http.StatusMovedPermanently)
			return
		}
		_, _ = w.Write([]byte(fullProductPage))
	}))
	defer server.Close()

	result, err := newTestPageFetcher().Fetch(context.Background(), pageProfile(server.URL, false), "465185")

	require.NoError(t, err)
	assert.Equal(t, server.URL+"/products/465185", result.RequestedURL)
	assert.Equal(t, server.URL+"/products/465185-canonical", result.FinalURL)
}

func TestIsSoftFailure(t *testing.T) {
	profile := config.BrandProfile{MinPageBytes: 10, RedirectMarker: "Redirecting to"}

	assert.True(t, isSoftFailure("short", profile))
	assert.True(t, isSoftFailure("long enough body. Redirecting to elsewhere", profile))
	assert.False(t, isSoftFailure("a perfectly ordinary product page", profile))
	assert.False(t, isSoftFailure("", config.BrandProfile{}))
}
