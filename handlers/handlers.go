// Package handlers exposes the classification API over HTTP.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"civic-ml-pipeline/metrics"
	"civic-ml-pipeline/models"
	"civic-ml-pipeline/service"
)

// Handlers represents the HTTP handlers
type Handlers struct {
	svc *service.Service
}

// NewHandlers creates new HTTP handlers
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// RegisterRoutes attaches the API routes to the router.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v3")
	api.POST("/classify", h.Classify)
	api.POST("/classify-audio", h.ClassifyAudio)
	api.GET("/health", h.HealthCheck)
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "civic-ml-pipeline",
		"mode":    h.svc.Mode(),
	})
}

// Classify handles multi-modal classification requests
func (h *Handlers) Classify(c *gin.Context) {
	start := time.Now()

	var req models.ClassificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ClassifyRequestsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	resp, err := h.svc.Classify(c.Request.Context(), req)
	result := "ok"
	switch {
	case errors.Is(err, service.ErrNoInput):
		result = "bad_request"
		c.JSON(http.StatusBadRequest, gin.H{
			"error": service.ErrNoInput.Error(),
		})
	case err != nil:
		result = "failed"
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Classification failed",
		})
	default:
		c.JSON(http.StatusOK, resp)
	}

	metrics.ClassifyRequestsTotal.WithLabelValues(result).Inc()
	metrics.ClassifyDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// ClassifyAudio handles uploaded audio file classification
func (h *Handlers) ClassifyAudio(c *gin.Context) {
	start := time.Now()

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		metrics.ClassifyRequestsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing audio file",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		metrics.ClassifyRequestsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read audio file",
		})
		return
	}

	resp, err := h.svc.ClassifyAudioUpload(c.Request.Context(), data)
	result := "ok"
	if err != nil {
		result = "failed"
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Audio classification failed",
		})
	} else {
		c.JSON(http.StatusOK, resp)
	}

	metrics.ClassifyRequestsTotal.WithLabelValues(result).Inc()
	metrics.ClassifyDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
