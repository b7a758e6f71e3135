package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"curator/scheduler"
)

// TriggerScanRequest scopes an on-demand scan.
type TriggerScanRequest struct {
	SourceID       int64  `json:"source_id,omitempty"`
	Force          bool   `json:"force,omitempty"`
	DateRangeStart string `json:"date_range_start,omitempty"`
	DateRangeEnd   string `json:"date_range_end,omitempty"`
}

// RegisterScanRoutes registers scheduler control endpoints.
func RegisterScanRoutes(r *gin.Engine, sched *scheduler.Scheduler) {
	g := r.Group("/api/scan")

	g.POST("/trigger", func(c *gin.Context) {
		var req TriggerScanRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		opts := scheduler.TriggerOptions{SourceID: req.SourceID, Force: req.Force}
		if req.DateRangeStart != "" {
			t, err := time.Parse(time.RFC3339, req.DateRangeStart)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_range_start: " + err.Error()})
				return
			}
			opts.DateRangeStart = &t
		}
		if req.DateRangeEnd != "" {
			t, err := time.Parse(time.RFC3339, req.DateRangeEnd)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_range_end: " + err.Error()})
				return
			}
			opts.DateRangeEnd = &t
		}

		summary, err := sched.TriggerNow(c.Request.Context(), opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	g.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, sched.GetStatus())
	})
}
