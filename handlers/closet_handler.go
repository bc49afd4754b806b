package handlers

import (
	"context"

	"github.com/fenilmodi00/closet-backend/models"
	"github.com/fenilmodi00/closet-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ClosetStore is the closet service as seen by the HTTP layer
type ClosetStore interface {
	Import(ctx context.Context, req services.ImportClosetItemRequest) (*models.ClosetItem, error)
	List(ctx context.Context) ([]models.ClosetItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ClosetItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClosetHandler struct {
	Service ClosetStore
}

func NewClosetHandler(service ClosetStore) *ClosetHandler {
	return &ClosetHandler{Service: service}
}

func (h *ClosetHandler) CreateItem(c *fiber.Ctx) error {
	var req services.ImportClosetItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	item, err := h.Service.Import(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

func (h *ClosetHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.Service.List(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
	})
}

func (h *ClosetHandler) GetItem(c *fiber.Ctx) error {
	id, ok := parseItemID(c)
	if !ok {
		return invalidItemID(c)
	}

	item, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

func (h *ClosetHandler) DeleteItem(c *fiber.Ctx) error {
	id, ok := parseItemID(c)
	if !ok {
		return invalidItemID(c)
	}

	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseItemID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func invalidItemID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Invalid closet item id",
	})
}
