package shared

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPRequestRateLimiter spaces outbound requests to the retailer.
// A zero budget disables limiting.
type HTTPRequestRateLimiter struct {
	limiter      *rate.Limiter
	requestCount atomic.Int64
}

// NewHTTPRequestRateLimiter creates a limiter allowing requestsPerSecond with a burst of one
func NewHTTPRequestRateLimiter(requestsPerSecond float64) *HTTPRequestRateLimiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &HTTPRequestRateLimiter{
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until a request may be sent or ctx is done
func (l *HTTPRequestRateLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	if err := l.limiter.Wait(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"component":     "HTTPRequestRateLimiter",
			"request_count": l.requestCount.Load(),
		}).WithError(err).Debug("Rate limiter wait aborted")
		return err
	}

	l.requestCount.Add(1)
	return nil
}

// GetRequestCount returns the total number of requests let through
func (l *HTTPRequestRateLimiter) GetRequestCount() int64 {
	if l == nil {
		return 0
	}
	return l.requestCount.Load()
}
