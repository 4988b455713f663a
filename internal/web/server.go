// Package web serves the task plan as a JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ramanasai/amal/internal/app"
	"github.com/ramanasai/amal/internal/tracker"
)

const maxImportSize = 8 << 20 // 8MB

// Server is the amal API server
type Server struct {
	ctrl   *app.Controller
	router *gin.Engine
	newID  func() string
}

type Option func(*Server)

// WithIDs overrides id generation for created tasks and subtasks.
func WithIDs(newID func() string) Option {
	return func(s *Server) { s.newID = newID }
}

// NewServer creates a new API server over ctrl
func NewServer(ctrl *app.Controller, opts ...Option) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		ctrl:   ctrl,
		router: router,
		newID:  tracker.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}

	api := router.Group("/api")
	{
		api.GET("/days", s.handleDays)
		api.GET("/stats", s.handleStats)
		api.GET("/export", s.handleExport)
		api.POST("/import", s.handleImport)

		day := api.Group("/days/:day", s.requireDay)
		day.GET("/tasks", s.handleListTasks)
		day.POST("/tasks", s.handleCreateTask)
		day.PATCH("/tasks/:id", s.handleUpdateTask)
		day.DELETE("/tasks/:id", s.handleDeleteTask)
		day.POST("/tasks/:id/copy", s.handleCopyTask)
		day.POST("/tasks/:id/move", s.handleMoveTask)
		day.POST("/tasks/:id/session", s.handleSession)
		day.POST("/tasks/:id/subtasks", s.handleCreateSubTask)
		day.PATCH("/tasks/:id/subtasks/:sub", s.handleUpdateSubTask)
		day.DELETE("/tasks/:id/subtasks/:sub", s.handleDeleteSubTask)
		day.POST("/tasks/:id/subtasks/:sub/move", s.handleMoveSubTask)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
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

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrTaskActive):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrTargetOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tracker.ErrInvalidImport),
		errors.Is(err, tracker.ErrInvalidDay),
		errors.Is(err, tracker.ErrInvalidStatus),
		errors.Is(err, tracker.ErrInvalidStamp),
		errors.Is(err, tracker.ErrUnknownCategory):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func ok(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
	})
}
