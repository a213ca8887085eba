package ui

import (
	"net/http"

	"gotally/app"
	"gotally/internal"
	"gotally/internal/session"
	"gotally/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Services bundles the application services the server exposes
type Services struct {
	Datasets      *app.DatasetService
	Configuration *app.ConfigurationService
	Dashboard     *app.DashboardService
	Analysis      *app.AnalysisService
	Query         *app.QueryService
}

// Server represents the JSON API for the dashboard
type Server struct {
	router   *gin.Engine
	services Services
	session  *session.Session
	logger   *internal.Logger
}

// NewServer creates a new web server instance bound to a single user session
func NewServer(services Services, sess *session.Session, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if sess == nil {
		sess = session.New()
	}

	s := &Server{
		router:   gin.New(),
		services: services,
		session:  sess,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
	if s.services.Datasets != nil {
		s.router.Use(middleware.EnsureDataset(s.services.Datasets, s.session, s.logger))
	}
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/dataset", s.handleDatasetInfo)
		api.POST("/dataset", s.handleDatasetUpload)
		api.POST("/dataset/sheets", s.handleDatasetSheets)

		api.GET("/config", s.handleConfigGet)
		api.PUT("/config", s.handleConfigPut)
		api.DELETE("/config", s.handleConfigDelete)

		api.GET("/dashboard/choices", s.handleDashboardChoices)
		api.POST("/dashboard", s.handleDashboard)
		api.POST("/dashboard/report", s.handleDashboardReport)

		api.GET("/analysis/options", s.handleAnalysisOptions)
		api.POST("/analysis", s.handleAnalysis)

		api.POST("/query", s.handleQuery)
		api.GET("/query/describe", s.handleDescribe)
	}
}

// Handler exposes the router for tests and custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting gotally API on http://%s", addr)
	return s.router.Run(addr)
}
