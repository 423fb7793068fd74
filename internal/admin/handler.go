// Package admin exposes the operator surface: enabled-provider status and
// manual localization upserts. All routes sit behind the auth middleware.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediascout/internal/locale"
	"mediascout/internal/localization"
	"mediascout/internal/provider"
	"mediascout/pkg/models"
)

type Handler struct {
	Registry      *provider.Registry
	Localizations *localization.Repo
}

func NewHandler(registry *provider.Registry, localizations *localization.Repo) *Handler {
	return &Handler{Registry: registry, Localizations: localizations}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers", h.providers)
	rg.POST("/localizations", h.upsertLocalization)
}

func (h *Handler) providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.Registry.Providers()})
}

func (h *Handler) upsertLocalization(c *gin.Context) {
	var rec models.LocalizedText
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !locale.Supported(rec.Locale) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported locale"})
		return
	}

	if err := h.Localizations.Upsert(c.Request.Context(), rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upsert failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
