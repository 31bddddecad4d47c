// Package status serves the operator endpoints: health, Prometheus
// metrics and the report of the last polling tick.
package status

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hl7fileprocessor/internal/ingest"
	"hl7fileprocessor/internal/logger"
)

type ReportSource interface {
	LastReport() (ingest.TickReport, bool)
}

type Handler struct {
	reports ReportSource
	logger  logger.Logger
}

func NewHandler(reports ReportSource, log logger.Logger) *Handler {
	return &Handler{
		reports: reports,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/status", h.GetStatus)
}

// GetStatus returns the last tick report, or 204 before the first tick
// has finished.
func (h *Handler) GetStatus(c *gin.Context) {
	report, ok := h.reports.LastReport()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, report)
}
