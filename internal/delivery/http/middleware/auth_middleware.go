package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"skill-sync-backend/config"
	"skill-sync-backend/internal/delivery/http/response"
	"skill-sync-backend/internal/domain"
	"skill-sync-backend/pkg/apperror"
	"skill-sync-backend/pkg/audit"
	"skill-sync-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware resolves the caller from a Supabase bearer token. Every
// rejection answers 500 "User not authenticated", the contract the frontend
// already handles, and happens before any handler or platform call runs.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, auditLog *audit.Logger) gin.HandlerFunc {
	if auditLog == nil {
		auditLog = audit.Default()
	}

	reject := func(c *gin.Context, reason string) {
		auditLog.LogAuthRejected(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), reason)
		response.Error(c, http.StatusInternalServerError, apperror.MsgUnauthenticated)
		c.Abort()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			reject(c, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			reject(c, "missing bearer token")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				// HS256 - Use Secret
				if cfg.SupabaseJWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
				}
				return []byte(cfg.SupabaseJWTSecret), nil
			}

			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				// RS256 - Use JWKS
				if jwksProvider == nil {
					return nil, fmt.Errorf("RS256 token received but SUPABASE_URL is not configured")
				}
				return jwksProvider.KeyFunc(token)
			}

			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})
		if err != nil || !token.Valid {
			reason := "invalid token"
			if err != nil {
				reason = err.Error()
			}
			reject(c, reason)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			reject(c, "invalid claims")
			return
		}

		// Extract Supabase standard claims
		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			reject(c, "token has no subject")
			return
		}

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)

		c.Next()
	}
}
