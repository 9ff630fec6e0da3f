package handlers

import (
	"net/http"
	"strconv"

	"dropsync/internal/logger"
	"dropsync/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RunHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewRunHandler(db *gorm.DB, logger *logger.Logger) *RunHandler {
	return &RunHandler{
		db:     db,
		logger: logger,
	}
}

func (h *RunHandler) List(c *gin.Context) {
	var runs []models.SyncRun

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	query := h.db.Model(&models.SyncRun{})
	if operation := c.Query("operation"); operation != "" {
		query = query.Where("operation = ?", operation)
	}
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}

	var total int64
	query.Count(&total)

	if err := query.Order("started_at DESC").Offset(offset).Limit(limit).Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *RunHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var run models.SyncRun
	if err := h.db.First(&run, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

func (h *RunHandler) Probes(c *gin.Context) {
	productID := c.Param("id")

	var probes []models.ProbeAttempt
	if err := h.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&probes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch probes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": probes})
}
