package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/todo/internal/progress"
	"github.com/balkashynov/todo/internal/store"
)

// Options configures the HTTP API
type Options struct {
	Policy  progress.Policy
	Logger  *log.Logger
	Verbose bool // adds gin's request logger
}

// Server is the JSON API over a task store
type Server struct {
	store  *store.Store
	policy progress.Policy
	logger *log.Logger
	router *gin.Engine
	now    func() time.Time
}

// NewServer creates a new API server
func NewServer(s *store.Store, opts Options) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.Verbose {
		router.Use(gin.Logger())
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	policy := opts.Policy
	if policy == "" {
		policy = progress.PolicyTasks
	}

	srv := &Server{
		store:  s,
		policy: policy,
		logger: logger,
		router: router,
		now:    time.Now,
	}

	api := router.Group("/api")
	{
		api.GET("/tasks", srv.handleList)
		api.POST("/tasks", srv.handleCreate)
		api.DELETE("/tasks", srv.handleClear)
		api.POST("/tasks/reorder", srv.handleReorder)
		api.GET("/tasks/:id", srv.handleGet)
		api.PATCH("/tasks/:id", srv.handleUpdate)
		api.DELETE("/tasks/:id", srv.handleDelete)
		api.POST("/tasks/:id/subtasks", srv.handleAddSubtask)
		api.PATCH("/tasks/:id/subtasks/:index", srv.handleUpdateSubtask)
		api.DELETE("/tasks/:id/subtasks/:index", srv.handleDeleteSubtask)
		api.GET("/progress", srv.handleProgress)
		api.GET("/export/:format", srv.handleExport)
		api.POST("/import", srv.handleImport)
		api.POST("/chat", srv.handleChat)
	}

	return srv
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Println("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
