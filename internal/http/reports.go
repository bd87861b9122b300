package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/lending/internal/reports"
)

// ReportsController serves the admin dashboard aggregates.
type ReportsController struct {
	reports *reports.Service
}

func NewReportsController(service *reports.Service) *ReportsController {
	return &ReportsController{reports: service}
}

// Stats handles GET /api/admin/reports
func (rc *ReportsController) Stats(c *gin.Context) {
	stats, err := rc.reports.Stats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "library stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Categories handles GET /api/admin/reports/categories
func (rc *ReportsController) Categories(c *gin.Context) {
	rows, err := rc.reports.Categories(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "category report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": rows})
}

// ExternalSources handles GET /api/admin/reports/external-sources
func (rc *ReportsController) ExternalSources(c *gin.Context) {
	sources, err := rc.reports.ExternalSources(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "external sources")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}
