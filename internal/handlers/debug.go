package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/telemetry"
)

// RegisterDebugRoutes adds non-production endpoints for exercising the audit
// pipeline end to end.
func RegisterDebugRoutes(router *gin.Engine, audit *telemetry.AuditEmitter) {
	router.POST("/debug/audit-test", func(c *gin.Context) {
		var req struct {
			Level string `json:"level"`
			Text  string `json:"text"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Level == "" {
			req.Level = "info"
		}
		if req.Text == "" {
			req.Text = "audit test event"
		}

		audit.Emit(c.Request.Context(), req.Level, req.Text, requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
	})
}
