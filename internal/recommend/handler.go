package recommend

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mediascout/internal/provider"
	"mediascout/pkg/models"
)

type Handler struct {
	Pipeline *Pipeline
	Registry *provider.Registry
}

func NewHandler(pipeline *Pipeline, registry *provider.Registry) *Handler {
	return &Handler{Pipeline: pipeline, Registry: registry}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/recommendations", h.recommendations) // GET /recommendations?q=&type=&locale=&limit=
	rg.GET("/suggest", h.suggest)                 // GET /suggest?q=&type=&limit=
}

// recommendations runs the full pipeline. A panic anywhere past the fan-out
// is the one failure class that may reach this boundary; it is logged and
// converted into a degraded empty response instead of killing the process.
func (h *Handler) recommendations(c *gin.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[recommend] pipeline panic: %v", rec)
			c.JSON(http.StatusInternalServerError, gin.H{
				"items": []models.RecommendationItem{},
				"error": "recommendations unavailable",
			})
		}
	}()

	req := Request{
		Query:  c.Query("q"),
		Locale: c.Query("locale"),
		Limit:  parseInt(c.Query("limit"), DefaultLimit),
		Type:   models.ParseMediaType(c.Query("type")),
	}

	result, err := h.Pipeline.Build(c.Request.Context(), req)
	if err != nil {
		log.Printf("[recommend] build failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"items": []models.RecommendationItem{},
			"error": "recommendations unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// suggest is the autocomplete endpoint. It never answers with an error for
// short queries or upstream trouble; the registry already degrades those to
// an empty set.
func (h *Handler) suggest(c *gin.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[recommend] suggest panic: %v", rec)
			c.JSON(http.StatusInternalServerError, gin.H{"suggestions": []models.Suggestion{}})
		}
	}()

	suggestions := h.Registry.Suggest(c.Request.Context(), c.Query("q"), provider.SearchOptions{
		Type:  models.ParseMediaType(c.Query("type")),
		Limit: parseInt(c.Query("limit"), 0),
	})

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
