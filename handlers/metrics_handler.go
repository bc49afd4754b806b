package handlers

import (
	"database/sql"

	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/gofiber/fiber/v2"
)

type MetricsHandler struct {
	DB          *sql.DB
	Extraction  *shared.ServiceMetrics
	Closet      *shared.ServiceMetrics
	RateLimiter *shared.HTTPRequestRateLimiter
}

func NewMetricsHandler(db *sql.DB, extraction, closet *shared.ServiceMetrics, rateLimiter *shared.HTTPRequestRateLimiter) *MetricsHandler {
	return &MetricsHandler{
		DB:          db,
		Extraction:  extraction,
		Closet:      closet,
		RateLimiter: rateLimiter,
	}
}

// GetMetrics returns extraction counters, closet store metrics and pool statistics
func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	metrics := make(map[string]interface{})

	if h.Extraction != nil {
		metrics["extraction"] = h.Extraction.GetSnapshot()
	}
	if h.Closet != nil {
		metrics["closet"] = h.Closet.GetSnapshot()
	}
	metrics["retailer_requests"] = h.RateLimiter.GetRequestCount()

	if h.DB != nil {
		dbStats := h.DB.Stats()
		metrics["database_stats"] = map[string]interface{}{
			"open_connections":     dbStats.OpenConnections,
			"in_use":               dbStats.InUse,
			"idle":                 dbStats.Idle,
			"wait_count":           dbStats.WaitCount,
			"wait_duration_ms":     dbStats.WaitDuration.Milliseconds(),
			"max_idle_closed":      dbStats.MaxIdleClosed,
			"max_idle_time_closed": dbStats.MaxIdleTimeClosed,
			"max_lifetime_closed":  dbStats.MaxLifetimeClosed,
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    metrics,
	})
}

// ResetMetrics clears the extraction counters
func (h *MetricsHandler) ResetMetrics(c *fiber.Ctx) error {
	if h.Extraction != nil {
		h.Extraction.Reset()
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Metrics reset",
	})
}
