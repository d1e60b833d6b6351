package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/rezonia/nfe-converter/internal/catalog"
)

const (
	defaultCacheSize   = 32
	defaultUploadBytes = 64 << 20
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool

	// Selections used when a request does not name its fields
	HeaderFields []string
	ItemFields   []string
	Format       bool
	Summary      bool

	// FilePrefix names downloaded workbooks
	FilePrefix     string
	CacheSize      int
	MaxUploadBytes int64
}

// Server represents the HTTP API server
type Server struct {
	config  *Config
	router  *gin.Engine
	catalog *catalog.Catalog
	logger  *zap.Logger
	jobs    *lru.Cache[string, *job]
	now     func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog replaces the field catalog
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithClock overrides the time source used for file names
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates a new API server
func NewServer(config *Config, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:  config,
		router:  router,
		catalog: catalog.Default(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	size := config.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	s.jobs, _ = lru.NewWithEvict[string, *job](size, func(id string, _ *job) {
		s.logger.Debug("conversion evicted", zap.String("id", id))
	})

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/fields", s.handleFields)

		v1.POST("/extract", s.handleExtract)
		v1.POST("/convert", s.handleConvert)
		v1.GET("/convert/:id", s.handleJob)
		v1.GET("/convert/:id/download", s.handleDownload)

		v1.POST("/validate", s.handleValidate)
		v1.POST("/info", s.handleInfo)
	}
}

// HTTPServer returns a configured *http.Server for callers that manage shutdown
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) uploadLimit() int64 {
	if s.config.MaxUploadBytes > 0 {
		return s.config.MaxUploadBytes
	}
	return defaultUploadBytes
}
