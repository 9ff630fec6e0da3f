package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"dropsync/internal/logger"
	"dropsync/internal/services/shopify"
	"dropsync/internal/services/supplier"
	"dropsync/internal/syncer"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	controller *syncer.Controller
	logger     *logger.Logger
}

func NewSyncHandler(controller *syncer.Controller, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		controller: controller,
		logger:     logger,
	}
}

// Trigger starts a batch operation synchronously and returns its summary.
// Runs are long; callers that cannot wait should go through the Kafka
// worker instead.
func (h *SyncHandler) Trigger(c *gin.Context) {
	operation := c.Param("operation")
	switch operation {
	case syncer.OpPublishSweep, syncer.OpAudit, syncer.OpRepair:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown operation"})
		return
	}

	dryRun := c.DefaultQuery("dry_run", "true") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	run, err := h.controller.RunOperation(c.Request.Context(), operation, syncer.Options{
		DryRun: dryRun,
		Limit:  limit,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, shopify.ErrPermissionDenied) {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error(), "data": run})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

// Availability runs the country-probe diagnosis for one product.
func (h *SyncHandler) Availability(c *gin.Context) {
	productID := c.Param("id")

	resolution, err := h.controller.DiagnoseAvailability(c.Request.Context(), productID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, supplier.ErrAuthExpired) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"found":    resolution.Found(),
			"listing":  resolution.Listing,
			"attempts": resolution.Attempts,
		},
	})
}
