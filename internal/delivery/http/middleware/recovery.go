package middleware

import (
	"net/http"

	"skill-sync-backend/internal/delivery/http/response"
	"skill-sync-backend/internal/domain"
	"skill-sync-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into the usual {"error": ...} 500 body
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("Recovered from panic",
			"panic", recovered,
			"path", c.FullPath(),
			"request_id", c.GetString(string(domain.KeyRequestID)),
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
		c.Abort()
	})
}
