package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fenilmodi00/closet-backend/config"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// PageFetchResult is one retrieved product page
type PageFetchResult struct {
	RequestedURL string
	FinalURL     string
	HTML         string
	StatusCode   int
	Retried      bool
}

// OK reports whether the page was served with a 2xx status
func (r *PageFetchResult) OK() bool {
	return r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// PageFetcher retrieves product page HTML
type PageFetcher interface {
	Fetch(ctx context.Context, profile config.BrandProfile, productID string) (*PageFetchResult, error)
}

// ProductPageFetcher fetches retailer pages with a collector per request
type ProductPageFetcher struct {
	transport   http.RoundTripper
	timeout     time.Duration
	maxBodySize int
	rateLimiter *shared.HTTPRequestRateLimiter
}

// NewProductPageFetcher creates a fetcher. httpClient supplies the pooled transport.
func NewProductPageFetcher(httpClient *http.Client, timeout time.Duration, maxBodySize int, rateLimiter *shared.HTTPRequestRateLimiter) *ProductPageFetcher {
	var transport http.RoundTripper = http.DefaultTransport
	if httpClient != nil && httpClient.Transport != nil {
		transport = httpClient.Transport
	}

	return &ProductPageFetcher{
		transport:   transport,
		timeout:     timeout,
		maxBodySize: maxBodySize,
		rateLimiter: rateLimiter,
	}
}

// Fetch retrieves the canonical page. When the brand defines a retry URL and the first
// response looks like an interstitial, the retry response replaces it if it is a 2xx.
// A non-2xx final status is reported as an upstream fetch error alongside the result.
func (f *ProductPageFetcher) Fetch(ctx context.Context, profile config.BrandProfile, productID string) (*PageFetchResult, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component":  "ProductPageFetcher",
		"method":     "Fetch",
		"brand":      profile.Brand,
		"product_id": productID,
	})

	pageURL := profile.PageURL(productID)
	result, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, shared.NewUpstreamFetchError("ProductPageFetcher", "Fetch", pageURL, 0, err)
	}

	if retryURL := profile.RetryURL(productID); retryURL != "" && isSoftFailure(result.HTML, profile) {
		logger.WithFields(logrus.Fields{
			"status":    result.StatusCode,
			"length":    len(result.HTML),
			"retry_url": retryURL,
		}).Info("Page looks like an interstitial, retrying alternate URL")

		retry, retryErr := f.get(ctx, retryURL)
		switch {
		case retryErr != nil:
			logger.WithError(retryErr).Warn("Alternate URL fetch failed, keeping original response")
		case retry.OK():
			retry.Retried = true
			result = retry
		default:
			logger.WithField("status", retry.StatusCode).Warn("Alternate URL not OK, keeping original response")
		}
	}

	if !result.OK() {
		return result, shared.NewUpstreamFetchError("ProductPageFetcher", "Fetch", result.RequestedURL, result.StatusCode, nil)
	}

	logger.WithFields(logrus.Fields{
		"final_url": result.FinalURL,
		"length":    len(result.HTML),
		"retried":   result.Retried,
	}).Debug("Fetched product page")

	return result, nil
}

func (f *ProductPageFetcher) get(ctx context.Context, url string) (*PageFetchResult, error) {
	if err := f.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.StdlibContext(ctx),
	)
	c.WithTransport(f.transport)
	if f.maxBodySize > 0 {
		c.MaxBodySize = f.maxBodySize
	}
	if f.timeout > 0 {
		c.SetRequestTimeout(f.timeout)
	}

	result := &PageFetchResult{RequestedURL: url, FinalURL: url}
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		shared.SetBrowserLikeHeaders(*r.Headers, shared.AcceptHTML)
	})

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.HTML = string(r.Body)
		if r.Request != nil && r.Request.URL != nil {
			result.FinalURL = r.Request.URL.String()
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			result.StatusCode = r.StatusCode
			result.HTML = string(r.Body)
			return
		}
		fetchErr = err
	})

	if err := c.Visit(url); err != nil && fetchErr == nil && result.StatusCode == 0 {
		fetchErr = err
	}

	if fetchErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(fetchErr, ctxErr) {
			fetchErr = errors.Join(fetchErr, ctxErr)
		}
		return nil, fetchErr
	}
	return result, nil
}

// isSoftFailure detects short or redirect-stub pages served instead of the product page
func isSoftFailure(html string, profile config.BrandProfile) bool {
	if profile.MinPageBytes > 0 && len(html) < profile.MinPageBytes {
		return true
	}
	return profile.RedirectMarker != "" && strings.Contains(html, profile.RedirectMarker)
}
