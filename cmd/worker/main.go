package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"pagemonk/config"
	"pagemonk/internal/app"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
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
		log.Error("Failed to build services", logger.Error(err))
		os.Exit(1)
	}
	defer application.Close()

	documentWorker, err := worker.NewDocumentWorker(&cfg.Queue.Worker, application.DocumentService, log)
	if err != nil {
		log.Error("Failed to create document worker", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := documentWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	documentWorker.Stop()
	log.Info("Worker stopped")
}
