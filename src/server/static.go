package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"unblocker/src/logger"
	"unblocker/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// StaticServer
// -----------------------------------------------------------------------------

// StaticServer serves the portal pages from StaticDir, falling back to
// index.html, or redirects every request when a redirect base is set.
type StaticServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	http   *http.Server
}

func NewStaticServer(cfg *models.MConfig, log *logger.Logger) *StaticServer {
	s := &StaticServer{
		Config: cfg,
		Logger: log,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger(log))

	if cfg.Redirect != "" {
		s.engine.NoRoute(s.redirect)
	} else {
		s.engine.NoRoute(s.serveFile)
	}

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.StaticPort),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *StaticServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------

func (s *StaticServer) Start() error {
	if s.Config.Redirect != "" {
		s.Logger.Info("Starting static server on http://%s, redirecting to %s", s.http.Addr, s.Config.Redirect)
	} else {
		s.Logger.Info("Starting static server on http://%s serving %s", s.http.Addr, s.Config.StaticDir)
	}

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *StaticServer) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func (s *StaticServer) serveFile(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}

	// path.Clean on a rooted path cannot climb above StaticDir
	rel := path.Clean("/" + c.Request.URL.Path)
	file := filepath.Join(s.Config.StaticDir, filepath.FromSlash(rel))

	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}

	index := filepath.Join(s.Config.StaticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.File(index)
}

// -----------------------------------------------------------------------------

func (s *StaticServer) redirect(c *gin.Context) {
	target := strings.TrimSuffix(s.Config.Redirect, "/") + c.Request.URL.RequestURI()
	escaped := html.EscapeString(target)

	c.Header("Location", target)
	c.Data(http.StatusFound, "text/html; charset=utf-8", []byte(
		"<!DOCTYPE html><html><head><title>Redirecting...</title>"+
			`<meta http-equiv="refresh" content="0; url=`+escaped+`"></head>`+
			`<body><p>Redirecting to <a href="`+escaped+`">`+escaped+"</a>...</p></body></html>"))
}
