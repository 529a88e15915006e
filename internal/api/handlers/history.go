/**
 * @description
 * History API Handler.
 * Serves per-hotel, per-day-of-week historical pts/$ averages for a
 * destination over the configured look-back window.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend internal/services
 */

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alexbesp18/aa-streak-optimizer/internal/logger"
	"github.com/alexbesp18/aa-streak-optimizer/internal/services"
)

type HistoryHandler struct {
	Service *services.HistoryService
}

func NewHistoryHandler(service *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{Service: service}
}

// GetAverages returns historical baselines for a destination
// GET /api/v1/history?destination=Austin[&hotel=Hilton+Downtown]
func (h *HistoryHandler) GetAverages(c *fiber.Ctx) error {
	destination := c.Query("destination")
	if destination == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "destination parameter is required",
		})
	}

	averages, err := h.Service.Averages(c.Context(), destination, c.Query("hotel"))
	if err != nil {
		logger.Error("GetAverages failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch historical averages",
		})
	}

	return c.JSON(fiber.Map{"averages": averages})
}
