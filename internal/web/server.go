// Package web serves a built output directory as a local read-only preview with a JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/outwriter"
	"github.com/huangsam/repodex/schema"
	"github.com/sirupsen/logrus"
)

// Server exposes the index of one output directory.
type Server struct {
	outDir string
	reader *outwriter.IndexReader
}

// NewServer returns a server over outDir.
func NewServer(outDir string) *Server {
	return &Server{outDir: outDir, reader: outwriter.NewIndexReader(outDir)}
}

// SetupRouter registers the API routes. Any other GET is served from the output directory.
func (s *Server) SetupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	api.GET("/manifest", s.Manifest)
	api.GET("/facets", s.Facets)
	api.GET("/shards/:name", s.Shard)
	api.GET("/projects/:slug", s.Project)
	api.GET("/search", s.Search)

	files := http.FileServer(http.Dir(s.outDir))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "read-only preview"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
	return r
}

// requestLogger logs each request at debug level through the shared logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		contract.Logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	}
}

// respond writes v, or maps a reader error to 404 or 500.
func respond(c *gin.Context, v any, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, v)
	case errors.Is(err, outwriter.ErrArtifactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		contract.LogWarn("Failed to read index artifact", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read index"})
	}
}

// Manifest returns manifest.json.
func (s *Server) Manifest(c *gin.Context) {
	m, err := s.reader.Manifest()
	respond(c, m, err)
}

// Facets returns facets.json.
func (s *Server) Facets(c *gin.Context) {
	f, err := s.reader.Facets()
	respond(c, f, err)
}

// Shard returns one shard by name.
func (s *Server) Shard(c *gin.Context) {
	shard, err := s.reader.Shard(c.Param("name"))
	respond(c, shard, err)
}

// Project returns the detail record of a slug.
func (s *Server) Project(c *gin.Context) {
	d, err := s.reader.Detail(c.Param("slug"))
	respond(c, d, err)
}

// Search filters index items by q, tag, source and health_label.
func (s *Server) Search(c *gin.Context) {
	limit := contract.DefaultResultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > contract.MaxResultLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	items, err := s.reader.Search(outwriter.SearchQuery{
		Text:        c.Query("q"),
		Tag:         c.Query("tag"),
		Source:      schema.Source(c.Query("source")),
		HealthLabel: schema.HealthLabel(c.Query("health_label")),
		Limit:       limit,
	})
	respond(c, gin.H{"count": len(items), "items": items}, err)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		contract.LogInfo("Serving preview", logrus.Fields{"addr": addr, "dir": s.outDir})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
