package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/yt-scribe/config"
	"github.com/nijaru/yt-scribe/handlers"
	"github.com/nijaru/yt-scribe/logger"
	"github.com/nijaru/yt-scribe/media"
	"github.com/nijaru/yt-scribe/session"
	"github.com/sashabaranov/go-openai"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.LogDir, cfg.LogLevel, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Provider clients are built per key by the session
	sess := session.New(func(apiKey string) session.Provider {
		clientCfg := openai.DefaultConfig(apiKey)
		if cfg.AI.BaseURL != "" {
			clientCfg.BaseURL = cfg.AI.BaseURL
		}
		return openai.NewClientWithConfig(clientCfg)
	}, session.Models{
		Transcription: cfg.AI.TranscriptionModel,
		Chat:          cfg.AI.ChatModel,
		Image:         cfg.AI.ImageModel,
	}, appLogger)

	// Media pipeline
	runner := media.NewExecRunner(appLogger)
	extractor := media.NewExtractor(
		media.NewYtDlp(cfg.Media.YtDlpPath, runner),
		media.NewFFmpeg(cfg.Media.FFmpegPath, runner),
		cfg.Media.DownloadDir,
		appLogger,
	)

	sweeper, err := media.NewSweeper(cfg.Media.CleanupSchedule, cfg.Media.StaleAfter, appLogger,
		cfg.Media.DownloadDir, cfg.Media.UploadDir)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to schedule cleanup")
	}
	sweeper.Start()

	server := handlers.NewServer(cfg,
		handlers.WithSession(sess),
		handlers.WithExtractor(extractor),
		handlers.WithLogger(appLogger),
	)

	serverErrors := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		appLogger.WithError(err).Fatal("Server error")
	case sig := <-shutdown:
		appLogger.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Server shutdown error")
	}

	select {
	case <-sweeper.Stop().Done():
	case <-ctx.Done():
	}
	appLogger.Info("Server stopped")
}
