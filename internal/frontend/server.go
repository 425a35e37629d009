// Package frontend serves the chat page. The page is a single embedded HTML
// template whose JavaScript talks to the backend API directly, so this server
// only renders the template and reports backend reachability.
package frontend

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mcp-chatbot/internal/config"
)

//go:embed index.html.tmpl
var pageFS embed.FS

// Server renders the chat page and probes the backend.
type Server struct {
	cfg  *config.Frontend
	page *template.Template
	http *http.Client
	log  *zap.Logger
}

// New creates a frontend Server.
func New(cfg *config.Frontend, log *zap.Logger) (*Server, error) {
	page, err := template.ParseFS(pageFS, "index.html.tmpl")
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:  cfg,
		page: page,
		http: &http.Client{Timeout: 5 * time.Second},
		log:  log,
	}, nil
}

// Router builds the gin engine serving the chat page.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/", s.indexHandler)
	r.GET("/healthz", s.healthHandler)
	return r
}

func (s *Server) indexHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(c.Writer, gin.H{"BackendURL": s.cfg.BackendURL}); err != nil {
		s.log.Error("Failed to render chat page", zap.Error(err))
	}
}

// healthHandler reports whether the backend answers its ping endpoint.
func (s *Server) healthHandler(c *gin.Context) {
	resp, err := s.http.Get(s.cfg.BackendURL + "/ping")
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"backend": "unreachable",
			"error":   err.Error(),
		})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"backend": resp.Status,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": "reachable",
	})
}
