package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Routes groups the handlers mounted on the API. Closet and Admin are nil when no database is configured.
type Routes struct {
	Product *ProductHandler
	Closet  *ClosetHandler
	Metrics *MetricsHandler
	Admin   *AdminHandler
}

// Register mounts every route on app
func (r *Routes) Register(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// Path used by the existing web client
	app.Get("/api/scrape-product", r.Product.ScrapeProduct)

	api := app.Group("/api/v1")
	api.Get("/products/scrape", r.Product.ScrapeProduct)

	if r.Metrics != nil {
		api.Get("/metrics", r.Metrics.GetMetrics)
		api.Delete("/metrics", r.Metrics.ResetMetrics)
	}

	if r.Closet != nil {
		closet := api.Group("/closet")
		closet.Post("/items", r.Closet.CreateItem)
		closet.Get("/items", r.Closet.ListItems)
		closet.Get("/items/:id", r.Closet.GetItem)
		closet.Delete("/items/:id", r.Closet.DeleteItem)
	}

	if r.Admin != nil {
		admin := api.Group("/admin")
		admin.Post("/closet/refresh", r.Admin.TriggerClosetRefresh)
	}
}
