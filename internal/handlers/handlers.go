// Package handlers provides HTTP request handlers
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go-nightsky/internal/domain"
	"go-nightsky/internal/services"

	"github.com/gin-gonic/gin"
)

// SkyCalculator is the sky service as seen by the handlers
type SkyCalculator interface {
	Calculate(ctx context.Context, q services.Query) (*domain.CelestialResponse, error)
	CacheStats() []domain.CacheStats
}

// ConditionsRecorder stores observing conditions for a location
type ConditionsRecorder interface {
	Record(ctx context.Context, obs domain.Observer, report domain.WeatherReport) error
}

// Handler holds all service dependencies
type Handler struct {
	Sky        SkyCalculator
	Conditions ConditionsRecorder
	Logger     *slog.Logger
}

// NewHandler creates a new handler with services
func NewHandler(sky SkyCalculator, conditions ConditionsRecorder, logger *slog.Logger) *Handler {
	return &Handler{Sky: sky, Conditions: conditions, Logger: logger}
}

// Health handles health check requests
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Health{
		Status: "ok",
		Now:    time.Now().UTC(),
	})
}

// Calculate handles sky queries
func (h *Handler) Calculate(c *gin.Context) {
	q, err := services.ParseQuery(c.Query("lat"), c.Query("lon"), c.Query("time"))
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, domain.ErrorResponse("VALIDATION", err.Error()))
			return
		}
		h.internalError(c, err)
		return
	}

	resp, err := h.Sky.Calculate(c.Request.Context(), q)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCacheStats handles requests for the result cache counters
func (h *Handler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, domain.SuccessResponse(map[string]interface{}{
		"caches": h.Sky.CacheStats(),
	}))
}

// RecordConditions stores the observing conditions of the grid cell
// holding lat, lon
func (h *Handler) RecordConditions(c *gin.Context) {
	obs, err := services.ParseObserver(c.Query("lat"), c.Query("lon"))
	if err != nil {
		c.JSON(http.StatusBadRequest, domain.ErrorResponse("VALIDATION", err.Error()))
		return
	}
	var report domain.WeatherReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, domain.ErrorResponse("VALIDATION", "invalid body: "+err.Error()))
		return
	}

	err = h.Conditions.Record(c.Request.Context(), obs, report)
	var verr *services.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, domain.SuccessResponse(map[string]interface{}{
			"latitude":  obs.Latitude,
			"longitude": obs.Longitude,
		}))
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, domain.ErrorResponse("VALIDATION", err.Error()))
	case errors.Is(err, services.ErrNoConditionsStore):
		c.JSON(http.StatusServiceUnavailable, domain.ErrorResponse("UNAVAILABLE", err.Error()))
	default:
		h.internalError(c, err)
	}
}

func (h *Handler) internalError(c *gin.Context, err error) {
	h.Logger.Error("request failed",
		"path", c.Request.URL.Path, "query", c.Request.URL.RawQuery, "error", err)
	c.JSON(http.StatusInternalServerError, domain.ErrorResponse("INTERNAL", err.Error()))
}

// SetupRoutes configures all routes
func SetupRoutes(r *gin.Engine, h *Handler) {
	// Health check
	r.GET("/health", h.Health)

	// Sky endpoints
	r.GET("/calculate", h.Calculate)
	r.GET("/cache/stats", h.GetCacheStats)

	// Conditions ingestion
	r.PUT("/conditions", h.RecordConditions)
}
