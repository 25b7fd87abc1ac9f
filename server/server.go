package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/customeros/mailagent/api"
	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/internal/cron"
)

type Server struct {
	*Runtime
	httpServer  *http.Server
	router      *gin.Engine
	cronManager *cron.CronManager
}

func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := NewRuntime(cfg)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	return &Server{
		Runtime:     rt,
		router:      router,
		cronManager: cron.NewCronManager(cfg, rt.Log, rt.Services.CommandDispatcher),
		httpServer: &http.Server{
			Addr:              ":" + cfg.AppConfig.APIPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		span := opentracing.GlobalTracer().StartSpan(
			fmt.Sprintf("panic.%s", name),
		)
		defer span.Finish()

		ext.Error.Set(span, true)
		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)

		s.Log.Errorf("Panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) Run() error {
	defer s.Close()

	api.RegisterRoutes(s.router, s.Services, s.Config.AppConfig.APIKey)

	if err := s.cronManager.Start(); err != nil {
		return err
	}

	go s.wrapGoroutine("http_server", func() {
		s.Log.Infof("Starting HTTP server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.Errorf("HTTP server error: %v", err)
		}
	})
	s.Log.Info("Mailagent is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	defer s.recoverWithJaeger("shutdown")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	s.Log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.Log.Errorf("HTTP server shutdown error: %v", err)
	} else {
		s.Log.Info("HTTP server shut down successfully")
	}

	s.cronManager.Stop()

	return nil
}
