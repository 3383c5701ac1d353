package admin

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dimitarkovachev/seating/internal/export"
	"github.com/dimitarkovachev/seating/internal/seating"
	"github.com/dimitarkovachev/seating/internal/stats"
)

func (h *Handler) GetStats(c *gin.Context) {
	guests, tables, err := h.snapshot(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		respondError(c, eventLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, stats.AggregateWithTables(guests, seating.Occupied(tables)))
}

// GetPool lists the seat-units not yet placed at a table.
func (h *Handler) GetPool(c *gin.Context) {
	guests, tables, err := h.snapshot(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		respondError(c, eventLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, seating.BuildPool(guests, tables))
}

// Export renders the attendance report as JSON (default) or CSV.
func (h *Handler) Export(c *gin.Context) {
	eventID := c.Param("eventId")
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" {
		badRequest(c, fmt.Sprintf("unknown export format %q", format))
		return
	}

	guests, _, err := h.snapshot(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, eventLogger(c), err)
		return
	}
	rows := export.Rows(guests)

	if format == "json" {
		if rows == nil {
			rows = []export.Row{}
		}
		c.JSON(http.StatusOK, rows)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-guests.csv"`, eventID))
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, rows); err != nil {
		eventLogger(c).WithError(err).Error("failed to write csv export")
	}
}
