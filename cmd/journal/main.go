package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mood-journal/config"
	"mood-journal/internal/api"
	"mood-journal/internal/application"
	"mood-journal/internal/infra/assemblyai"
	"mood-journal/internal/infra/audio"
	"mood-journal/internal/infra/fitbit"
	"mood-journal/internal/infra/openai"
	"mood-journal/internal/infra/pushover"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// API keys may live in a .env file instead of the yaml.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	recorder := audio.NewRecorder(
		cfg.Audio.SampleRate,
		cfg.Audio.FramesPerBuffer,
		cfg.Audio.OutputFile,
		audio.OpenMicrophone,
		logger,
	)

	transcriber := assemblyai.NewClient(cfg.AssemblyAI.APIKey, logger)
	fitnessClient := fitbit.NewClient(cfg.Fitbit.AccessToken, parseTimeout(cfg.Fitbit.Timeout, logger), logger)
	recommender := openai.NewRecommender(cfg.OpenAI.APIKey, cfg.OpenAI.Model, parseTimeout(cfg.OpenAI.Timeout, logger), logger)

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	journal := application.NewJournal(
		recorder,
		transcriber,
		fitnessClient,
		recommender,
		notifier,
		logger,
	)

	server := api.NewServer(cfg.Server.Addr, cfg.Server.AllowedOrigin, journal, logger)

	logger.Info("starting mood journal",
		"addr", cfg.Server.Addr,
		"sample_rate", cfg.Audio.SampleRate,
	)

	if err := server.Start(ctx); err != nil {
		logger.Error("starting server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		logger.Error("stopping server", "error", err)
		os.Exit(1)
	}
}

func parseTimeout(value string, logger *slog.Logger) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("invalid timeout, using default", "error", err, "value", value)
		return 30 * time.Second
	}
	return d
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
