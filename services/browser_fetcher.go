package services

import (
	"context"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/fenilmodi00/closet-backend/config"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/sirupsen/logrus"
)

// BrowserPageFetcher renders the product page in headless Chrome. The pipeline uses it when the
// plain fetch fails or returns a page without an embedded state block.
type BrowserPageFetcher struct {
	timeout     time.Duration
	rateLimiter *shared.HTTPRequestRateLimiter
}

// NewBrowserPageFetcher creates a headless browser fetcher
func NewBrowserPageFetcher(timeout time.Duration, rateLimiter *shared.HTTPRequestRateLimiter) *BrowserPageFetcher {
	return &BrowserPageFetcher{timeout: timeout, rateLimiter: rateLimiter}
}

// Fetch navigates to the canonical page and returns the rendered document
func (b *BrowserPageFetcher) Fetch(ctx context.Context, profile config.BrandProfile, productID string) (*PageFetchResult, error) {
	pageURL := profile.PageURL(productID)
	logger := logrus.WithFields(logrus.Fields{
		"component":  "BrowserPageFetcher",
		"method":     "Fetch",
		"brand":      profile.Brand,
		"product_id": productID,
		"url":        pageURL,
	})

	if err := b.rateLimiter.Wait(ctx); err != nil {
		return nil, shared.NewUpstreamFetchError("BrowserPageFetcher", "Fetch", pageURL, 0, err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent(shared.BrowserUserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := b.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var html, finalURL string
	start := time.Now()
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return nil, shared.NewUpstreamFetchError("BrowserPageFetcher", "Fetch", pageURL, 0, err)
	}

	logger.WithFields(logrus.Fields{
		"final_url": finalURL,
		"length":    len(html),
		"duration":  time.Since(start),
	}).Info("Rendered product page in headless browser")

	return &PageFetchResult{
		RequestedURL: pageURL,
		FinalURL:     finalURL,
		HTML:         html,
		StatusCode:   http.StatusOK,
	}, nil
}
