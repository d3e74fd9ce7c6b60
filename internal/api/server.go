// Package api wires the HTTP surface: routing, middleware and the
// translation between transport and the service layer.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"taskdeck/internal/api/auth"
	"taskdeck/internal/api/middleware"
	"taskdeck/internal/config"
	"taskdeck/internal/repository"
	"taskdeck/internal/service"
	"taskdeck/internal/storage"
)

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	db     *gorm.DB
	router *gin.Engine

	auth      *auth.Handler
	lists     *service.ListService
	tasks     *service.TaskService
	order     *service.OrderService
	search    *service.SearchService
	retention *service.RetentionService
}

// NewServer opens the database, runs migrations and assembles the
// whole application.
func NewServer(cfg config.Config, logger *slog.Logger, mailer auth.Mailer) (*Server, error) {
	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewDiskStore(cfg.StorageDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	return NewServerWithDB(cfg, logger, db, store, mailer), nil
}

// NewServerWithDB assembles the server on an already open database.
func NewServerWithDB(cfg config.Config, logger *slog.Logger, db *gorm.DB, store storage.Store, mailer auth.Mailer) *Server {
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	taskSvc := service.NewTaskService(taskRepo, listRepo, store, logger)

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		auth:      auth.NewHandler(userRepo, mailer, cfg.JWTSecret, cfg.TokenTTL, logger),
		lists:     service.NewListService(listRepo),
		tasks:     taskSvc,
		order:     service.NewOrderService(taskRepo),
		search:    service.NewSearchService(taskRepo, listRepo, store),
		retention: service.NewRetentionService(taskSvc, cfg.Retention, logger),
	}

	if cfg.Env == "local" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.Metrics())
	s.router = r
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.Static("/storage", s.cfg.StorageDir)

	api := s.router.Group("/api")
	api.POST("/register", s.auth.Register)
	api.POST("/login", s.auth.Login)
	api.POST("/email/verify", s.auth.VerifyEmail)

	authed := api.Group("")
	authed.Use(middleware.Auth(s.cfg.JWTSecret))

	authed.POST("/logout", s.auth.Logout)

	authed.GET("/task-lists", s.handleListTaskLists)
	authed.POST("/task-lists", s.handleCreateTaskList)
	authed.PUT("/task-lists/:id", s.handleUpdateTaskList)
	authed.DELETE("/task-lists/:id", s.handleDeleteTaskList)

	authed.GET("/tasks", s.handleListTasks)
	authed.POST("/tasks", s.handleCreateTask)
	authed.GET("/tasks/search", s.handleSearchTasks)
	authed.POST("/tasks/reorder", s.handleReorderTasks)
	authed.GET("/tasks/:id", s.handleGetTask)
	authed.PUT("/tasks/:id", s.handleUpdateTask)
	authed.DELETE("/tasks/:id", s.handleDeleteTask)
	authed.POST("/tasks/:id/restore", s.handleRestoreTask)
	authed.POST("/tasks/:id/complete", s.handleCompleteTask)
	authed.POST("/tasks/:id/open", s.handleReopenTask)
}

// Router exposes the handler for tests and for the HTTP server.
func (s *Server) Router() http.Handler { return s.router }

// Retention exposes the sweep service so main can schedule it.
func (s *Server) Retention() *service.RetentionService { return s.retention }

// Auth exposes the auth handler, mainly so tests can mint tokens.
func (s *Server) Auth() *auth.Handler { return s.auth }

func (s *Server) handleHealthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Close releases the database pool.
func (s *Server) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
