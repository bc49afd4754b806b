package handlers

import (
	"context"
	"time"

	"github.com/fenilmodi00/closet-backend/jobs"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RefreshRunner runs one closet refresh batch
type RefreshRunner interface {
	Run(ctx context.Context) jobs.RefreshSummary
}

type AdminHandler struct {
	RefreshJob RefreshRunner
}

func NewAdminHandler(refreshJob RefreshRunner) *AdminHandler {
	return &AdminHandler{RefreshJob: refreshJob}
}

// TriggerClosetRefresh manually runs the closet refresh job
func (h *AdminHandler) TriggerClosetRefresh(c *fiber.Ctx) error {
	logrus.Info("Manual closet refresh triggered via admin endpoint")

	startTime := time.Now()
	summary := h.RefreshJob.Run(c.UserContext())
	duration := time.Since(startTime)

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Closet refresh job completed",
		"checked":   summary.Checked,
		"updated":   summary.Updated,
		"failed":    summary.Failed,
		"transient": summary.Transient,
		"duration":  duration.String(),
		"timestamp": time.Now(),
	})
}
