package handlers

import (
	"github.com/fenilmodi00/closet-backend/services"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	Service services.ProductExtractor
}

func NewProductHandler(service services.ProductExtractor) *ProductHandler {
	return &ProductHandler{Service: service}
}

// ScrapeProduct handles GET ?brand=UNIQLO|GU&productId=...
func (h *ProductHandler) ScrapeProduct(c *fiber.Ctx) error {
	brand := c.Query("brand")
	productID := c.Query("productId")

	record, err := h.Service.Extract(c.UserContext(), brand, productID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    record,
	})
}

// errorResponse writes the status carried by a ServiceError, or 500
func errorResponse(c *fiber.Ctx, err error) error {
	status := shared.HTTPStatusForError(err)
	message := err.Error()
	if serviceErr, ok := shared.AsServiceError(err); ok {
		message = serviceErr.Message
	}

	if status >= fiber.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"component": "handlers",
			"path":      c.Path(),
			"status":    status,
		}).WithError(err).Error("Request failed")
	}
	if status == fiber.StatusInternalServerError {
		message = "Internal Server Error"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
