package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pagemonk/api/handlers"
	"pagemonk/api/routes"
	"pagemonk/config"
	"pagemonk/internal/app"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/queue"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config", logger.Error(err))
	}

	application, err := app.Build(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to build services", logger.Error(err))
	}
	defer application.Close()

	var q queue.Queue
	if cfg.Queue.Enabled {
		asynqQueue, err := queue.NewAsynqQueue(&cfg.Queue.Queue)
		if err != nil {
			log.Fatal("Failed to connect to queue", logger.Error(err))
		}
		defer asynqQueue.Close()
		q = asynqQueue
	}

	h := handlers.NewHandlers(application.DocumentService, application.SchemaService, q, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server starting", logger.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
