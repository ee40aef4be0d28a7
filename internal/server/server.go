// Package server exposes the aggregation pipeline over HTTP. It is a
// thin collaborator: all data-shape decisions live in the inner
// packages.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"newsdesk/internal/aggregate"
	"newsdesk/internal/feeds"
	"newsdesk/internal/metrics"
	"newsdesk/internal/news"
	"newsdesk/internal/translate"
)

type Server struct {
	svc      *aggregate.Service
	registry *feeds.Registry
	enricher *translate.Enricher
}

// New builds the HTTP layer. enricher may be nil when translation is not
// configured; the translate endpoints then echo input back.
func New(svc *aggregate.Service, registry *feeds.Registry, enricher *translate.Enricher) *Server {
	return &Server{svc: svc, registry: registry, enricher: enricher}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	{
		api.GET("/news", s.getNews)
		api.POST("/translate", s.postTranslate)
		api.GET("/sources", s.getSources)
	}
	r.GET("/health", s.health)
	r.GET("/metrics", s.getMetrics)

	return r
}

func (s *Server) getNews(c *gin.Context) {
	category := c.DefaultQuery("category", s.registry.DefaultCategory())
	translateText := c.Query("translate") == "true" || c.Query("translate") == "1"

	articles, resolved := s.svc.Aggregate(c.Request.Context(), category, translateText)
	if articles == nil {
		articles = []news.Article{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"category": resolved,
		"count":    len(articles),
		"articles": articles,
	})
}

type translateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) postTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	a := news.Article{Title: req.Title, Description: req.Description}
	if s.enricher != nil {
		s.enricher.Enrich(c.Request.Context(), &a)
	}

	// Failures fall back to the original text inside the enricher, so
	// this endpoint always succeeds.
	c.JSON(http.StatusOK, gin.H{
		"success":                true,
		"translated_title":       a.Title,
		"translated_description": a.Description,
	})
}

func (s *Server) getSources(c *gin.Context) {
	type categoryInfo struct {
		Name    string         `json:"name"`
		Sources []feeds.Source `json:"sources"`
	}

	var categories []categoryInfo
	for _, name := range s.registry.Categories() {
		sources, _ := s.registry.Resolve(name)
		categories = append(categories, categoryInfo{Name: name, Sources: sources})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"default":    s.registry.DefaultCategory(),
		"categories": categories,
	})
}

func (s *Server) health(c *gin.Context) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if !stats["is_healthy"].(bool) {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Global.GetStats())
}
