package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/neoforge-dev/synapse-sub010/internal/alert"
	"github.com/neoforge-dev/synapse-sub010/internal/auth"
	"github.com/neoforge-dev/synapse-sub010/internal/metrics"
)

// Server is the thin read surface over the monitoring core plus rule
// management. All handlers map directly onto engine/registry queries;
// no monitoring state lives here.
type Server struct {
	registry *metrics.Registry
	health   *metrics.Health
	engine   *alert.Engine
	router   *gin.Engine
}

func NewServer(registry *metrics.Registry, health *metrics.Health, engine *alert.Engine, authSecret string) *Server {
	s := &Server{
		registry: registry,
		health:   health,
		engine:   engine,
		router:   gin.Default(),
	}
	s.setupRoutes(authSecret)
	return s
}

func (s *Server) setupRoutes(authSecret string) {
	api := s.router.Group("/api/v1")

	api.GET("/health", s.getHealth)
	api.GET("/performance", s.getPerformance)
	api.GET("/metrics", s.getMetrics)
	api.GET("/alerts/active", s.listActiveAlerts)
	api.GET("/alerts/history", s.getAlertHistory)
	api.GET("/alerts/statistics", s.getAlertStatistics)
	api.GET("/rules", s.listRules)

	protected := api.Group("")
	protected.Use(auth.Middleware([]byte(authSecret)))
	protected.POST("/rules", s.createRule)
	protected.DELETE("/rules/:name", s.deleteRule)
}

func (s *Server) Start(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.health.Summary())
}

func (s *Server) getPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, s.health.Performance())
}

func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"definitions": s.registry.Definitions(),
		"current":     s.registry.SnapshotCurrent(),
	})
}

func (s *Server) listActiveAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ListActiveAlerts())
}

func (s *Server) getAlertHistory(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, s.engine.RecentEvents(limit))
}

func (s *Server) getAlertStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Statistics())
}

func (s *Server) listRules(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ListRules())
}

func (s *Server) createRule(c *gin.Context) {
	var spec alert.RuleSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.engine.RegisterRule(spec.ToRule()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": spec.Name})
}

func (s *Server) deleteRule(c *gin.Context) {
	s.engine.RemoveRule(c.Param("name"))
	c.Status(http.StatusNoContent)
}
