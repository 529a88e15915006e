/**
 * @description
 * Scan API Handlers.
 * Exposes endpoints to start a destination scan, poll its job status, and
 * stream progress events over SSE.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend internal/services
 */

package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/logger"
	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
	"github.com/alexbesp18/aa-streak-optimizer/internal/services"
)

type ScanHandler struct {
	Service *services.ScanService
	Hub     *services.JobStreamHub
	Config  *config.Config
}

func NewScanHandler(service *services.ScanService, hub *services.JobStreamHub, cfg *config.Config) *ScanHandler {
	return &ScanHandler{Service: service, Hub: hub, Config: cfg}
}

// ScanRequest is the POST /scans body
type ScanRequest struct {
	Destination string `json:"destination"`
	CheckIn     string `json:"check_in"`
	Mode        string `json:"mode"`
}

// StartScan kicks off a background scan and returns the job for polling
// POST /api/v1/scans
func (h *ScanHandler) StartScan(c *fiber.Ctx) error {
	var req ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	dest, ok := h.Config.DestinationByName(req.Destination)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("unknown destination %q", req.Destination),
		})
	}

	mode := models.ScanMode(req.Mode)
	if mode == "" {
		mode = models.ScanModeOptimal
	}

	job, err := h.Service.StartScan(c.Context(), dest, req.CheckIn, mode)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// The scan outlives this request; detach it from the request context.
	go h.Service.RunScan(context.Background(), job, dest)

	return c.Status(fiber.StatusAccepted).JSON(services.ScanResponse{
		JobID:    job.ID.String(),
		Status:   job.Status,
		Progress: job.Progress,
	})
}

// GetScan answers job polling, recomputing results for finished jobs
// GET /api/v1/scans/:id
func (h *ScanHandler) GetScan(c *fiber.Ctx) error {
	resp, err := h.Service.GetScan(c.Context(), c.Params("id"))
	if err != nil {
		if err == services.ErrJobNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "job not found",
			})
		}
		logger.Error("GetScan failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch scan",
		})
	}
	return c.JSON(resp)
}

// StreamProgress streams one job's progress events over SSE
// GET /api/v1/scans/:id/stream
func (h *ScanHandler) StreamProgress(c *fiber.Ctx) error {
	jobID := c.Params("id")

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	requestCtx := c.Context()

	events, unsubscribe := h.Hub.Subscribe(jobID)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		requestDone := requestCtx.Done()

		for {
			select {
			case <-requestDone:
				return
			case payload, ok := <-events:
				if !ok {
					return
				}

				var update services.JobUpdate
				if err := json.Unmarshal(payload, &update); err != nil {
					continue
				}

				fmt.Fprintf(w, "data: %s\n\n", payload)
				if err := w.Flush(); err != nil {
					return
				}
				if update.Status.IsTerminal() {
					return
				}
			}
		}
	})

	return nil
}
