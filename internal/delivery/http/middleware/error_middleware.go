package middleware

import (
	"errors"
	"net/http"

	"skill-sync-backend/internal/delivery/http/response"
	"skill-sync-backend/internal/domain"
	"skill-sync-backend/pkg/apperror"
	"skill-sync-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
				logger.Log.Error("Request failed", "error", appErr.Err, "path", c.FullPath(), "request_id", c.GetString(string(domain.KeyRequestID)))
			}
			response.Error(c, appErr.Code, appErr.Message)
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("Internal Server Error", "error", err, "path", c.FullPath(), "request_id", c.GetString(string(domain.KeyRequestID)))
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
	}
}
