package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware lets any origin call the API. Preflight requests are answered
// with 200 and no body; credentials travel in the Authorization header, not
// cookies, so a wildcard origin is acceptable here.
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Authorization",
			"Content-Type",
			"X-Client-Info",
			"Apikey",
			"X-Request-ID",
		},
		ExposeHeaders: []string{
			"Content-Disposition",
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"Retry-After",
		},
		MaxAge:                    24 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	})
}
