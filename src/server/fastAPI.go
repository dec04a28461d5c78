package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"unblocker/src/interfaces"
	"unblocker/src/logger"
	"unblocker/src/models"
	"unblocker/src/stats"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	http   *http.Server

	proxy    interfaces.IProxyService
	visitors *stats.VisitorStats
	hub      *Hub

	startedAt time.Time
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(cfg *models.MConfig, proxy interfaces.IProxyService, visitors *stats.VisitorStats, hub *Hub, logger *logger.Logger) *FastAPIServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FastAPIServer{
		Config:    cfg,
		Logger:    logger,
		engine:    gin.New(),
		proxy:     proxy,
		visitors:  visitors,
		hub:       hub,
		startedAt: time.Now(),
	}

	s.engine.Use(gin.Recovery(), requestLogger(logger), cors())
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	api := s.engine.Group("/api")

	api.POST("/proxy", s.postProxy)
	api.GET("/proxy/methods", s.getMethods)
	api.GET("/proxy/history", s.getHistory)
	api.GET("/proxy/stats", s.getMethodStats)

	api.GET("/stats", s.getStats)
	api.POST("/stats/update", s.postStatsUpdate)
	api.GET("/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.hub.handleWebSocket)
}

// Handler exposes the router, mainly for tests
func (s *FastAPIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FastAPIServer) Start() error {
	s.Logger.Info("Starting API server on %s", s.http.Addr)

	if err := s.hub.Start(); err != nil {
		return err
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	return s.http.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// Proxy handlers
// -----------------------------------------------------------------------------

type proxyRequest struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

func (s *FastAPIServer) postProxy(c *gin.Context) {
	var req proxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"reason":  "InvalidRequest",
			"error":   err.Error(),
		})
		return
	}

	resp, err := s.proxy.Unblock(c.Request.Context(), req.URL, req.Method)
	if resp == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fmt.Sprint(err)})
		return
	}
	c.JSON(statusFor(resp.Reason), resp)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"methods":          s.proxy.Methods(),
		"fallbackSettings": s.proxy.FallbackSettings(),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHistory(c *gin.Context) {
	limit, err := queryLimit(c, s.Config.Proxy.HistorySize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	history, err := s.proxy.History(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if history == nil {
		history = []models.MAttemptRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history, "count": len(history)})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getMethodStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": s.proxy.MethodStats()})
}

// -----------------------------------------------------------------------------
// Visitor stats handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getStats(c *gin.Context) {
	v := s.visitors.Read()
	c.JSON(http.StatusOK, gin.H{
		"online": v.Online,
		"peak":   v.Peak,
		"total":  v.Total,
	})
}

// -----------------------------------------------------------------------------

type statsUpdate struct {
	Peak  *int `json:"peak"`
	Total *int `json:"total"`
}

func (s *FastAPIServer) postStatsUpdate(c *gin.Context) {
	var req statsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	updated, err := s.visitors.Update(req.Peak, req.Total)
	if err != nil {
		// counters changed in memory, only persistence failed
		s.Logger.Error("Failed to persist visitor stats: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": updated})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":      time.Since(s.startedAt).Seconds(),
		"connections": s.hub.Connections(),
		"service":     s.proxy.Status(),
	})
}
