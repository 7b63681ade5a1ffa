package v1

import (
	"fmt"
	"net/http"
	"strings"

	"skill-sync-backend/internal/delivery/http/response"
	"skill-sync-backend/internal/domain"
	"skill-sync-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SkillPlatformHandler struct {
	skillPlatformUC domain.SkillPlatformUsecase
}

// NewSkillPlatformHandler registers the skill platform routes. The sync route
// gets its own middleware chain (rate limiting) on top of auth.
func NewSkillPlatformHandler(protected *gin.RouterGroup, skillPlatformUC domain.SkillPlatformUsecase, syncMiddleware ...gin.HandlerFunc) {
	handler := &SkillPlatformHandler{
		skillPlatformUC: skillPlatformUC,
	}

	platforms := protected.Group("/skill-platforms")
	{
		platforms.POST("/sync", append(syncMiddleware, handler.SyncPlatform)...)
		platforms.GET("", handler.ListConnections)
		platforms.GET("/supported", handler.SupportedPlatforms)
		platforms.GET("/certifications", handler.ListCertifications)
		platforms.GET("/certifications/export", handler.ExportCertifications)
		platforms.DELETE("/:platform", handler.DisconnectPlatform)
	}
}

// SyncPlatform verifies an external profile and stores derived certifications.
// Responds with the bare SyncResult, not the Response envelope.
func (h *SkillPlatformHandler) SyncPlatform(c *gin.Context) {
	var req domain.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("invalid request body"))
		return
	}

	result, err := h.skillPlatformUC.SyncPlatform(c.Request.Context(), c.GetString(string(domain.KeyUserID)), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SkillPlatformHandler) ListConnections(c *gin.Context) {
	conns, err := h.skillPlatformUC.ListConnections(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Platform connections retrieved", conns)
}

func (h *SkillPlatformHandler) ListCertifications(c *gin.Context) {
	certs, err := h.skillPlatformUC.ListCertifications(
		c.Request.Context(),
		c.GetString(string(domain.KeyUserID)),
		c.Query("platform"),
	)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Certifications retrieved", certs)
}

func (h *SkillPlatformHandler) DisconnectPlatform(c *gin.Context) {
	err := h.skillPlatformUC.DisconnectPlatform(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("platform"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Platform disconnected", nil)
}

// ExportCertifications streams an xlsx or csv attachment
func (h *SkillPlatformHandler) ExportCertifications(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	data, filename, err := h.skillPlatformUC.ExportCertifications(c.Request.Context(), c.GetString(string(domain.KeyUserID)), format)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if strings.HasSuffix(filename, ".csv") {
		contentType = "text/csv; charset=utf-8"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *SkillPlatformHandler) SupportedPlatforms(c *gin.Context) {
	response.Success(c, http.StatusOK, "Supported platforms", h.skillPlatformUC.SupportedPlatforms())
}
